package snake

import "github.com/vovakirdan/gridsnake/internal/core"

// Grid dimensions are fixed; the board is a 16x16 torus.
const (
	Cols     = 16
	Rows     = 16
	Capacity = Rows * Cols // Maximum snake length: every cell occupied
)

// Point represents a cell on the grid.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Velocity is a per-tick displacement with each component in {-1, 0, 1}.
type Velocity struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Zero reports whether the velocity carries no movement.
func (v Velocity) Zero() bool {
	return v.X == 0 && v.Y == 0
}

// String returns a compass name for the velocity.
func (v Velocity) String() string {
	switch v {
	case Velocity{0, -1}:
		return "up"
	case Velocity{0, 1}:
		return "down"
	case Velocity{-1, 0}:
		return "left"
	case Velocity{1, 0}:
		return "right"
	case Velocity{}:
		return "none"
	default:
		return "unknown"
	}
}

// Add moves p by v and wraps the result onto the torus.
func (p Point) Add(v Velocity) Point {
	return Point{
		X: core.Wrap(p.X+v.X, Cols),
		Y: core.Wrap(p.Y+v.Y, Rows),
	}
}

// Center returns the starting cell of every game.
func Center() Point {
	return Point{X: Cols / 2, Y: Rows / 2}
}
