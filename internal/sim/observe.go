// Package sim runs headless snake episodes for policy evaluation and for
// producing training transitions.
package sim

import "github.com/vovakirdan/gridsnake/internal/games/snake"

// CellKind classifies a grid cell in an observation.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellBody
	CellHead
	CellApple
)

// Observation is what a policy sees before choosing its input.
type Observation struct {
	Tick     int                              `json:"tick"`
	Head     snake.Point                      `json:"head"`
	Apple    snake.Point                      `json:"apple"`
	Velocity snake.Velocity                   `json:"velocity"`
	Length   int                              `json:"length"`
	Grid     [snake.Rows][snake.Cols]CellKind `json:"grid"`
}

// Observe captures the state of s as an observation.
func Observe(s *snake.GameState, tick int) Observation {
	obs := Observation{
		Tick:     tick,
		Head:     s.Head(),
		Apple:    s.Apple(),
		Velocity: s.Velocity(),
		Length:   s.Length(),
	}
	obs.Grid[obs.Apple.Y][obs.Apple.X] = CellApple
	for i, p := range s.Body() {
		kind := CellBody
		if i == 0 {
			kind = CellHead
		}
		obs.Grid[p.Y][p.X] = kind
	}
	return obs
}

// At returns the kind of cell p.
func (o Observation) At(p snake.Point) CellKind {
	return o.Grid[p.Y][p.X]
}

// Blocked reports whether moving the head onto p would collide.
func (o Observation) Blocked(p snake.Point) bool {
	k := o.At(p)
	return k == CellBody || k == CellHead
}
