package snake

// Source is the random source used to place apples.
// *math/rand.Rand satisfies it; tests may supply scripted sources.
type Source interface {
	Intn(n int) int
}

// Segment is one slot of the snake's fixed-capacity body.
type Segment struct {
	Pos      Point
	Occupied bool
}

// TickEvent describes what a call to AdvanceTick did.
type TickEvent int

const (
	EventIgnored  TickEvent = iota // State was already terminal; nothing changed
	EventMoved                     // Snake moved one cell
	EventAte                       // Snake moved onto the apple and grew
	EventCollided                  // Candidate head hit the body; game over
	EventFilled                    // Snake grew to fill the whole grid; game over
)

// String returns a short name for the event.
func (e TickEvent) String() string {
	switch e {
	case EventIgnored:
		return "ignored"
	case EventMoved:
		return "moved"
	case EventAte:
		return "ate"
	case EventCollided:
		return "collided"
	case EventFilled:
		return "filled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the event ended the game.
func (e TickEvent) Terminal() bool {
	return e == EventCollided || e == EventFilled
}

// GameState is the canonical snake/apple/velocity/liveness state.
//
// The body lives in a preallocated array of Capacity slots. Slots below length
// are occupied, the rest are placeholders; growth flips one flag and never
// allocates. A GameState is owned by a single goroutine.
type GameState struct {
	segments [Capacity]Segment
	length   int
	apple    Point
	velocity Velocity
	alive    bool
	rng      Source
}

// NewGameState returns an initialized game using rng for apple placement.
func NewGameState(rng Source) *GameState {
	s := &GameState{}
	s.Initialize(rng)
	return s
}

// Initialize resets the state to the start of a game: a one-cell snake at the
// grid center drifting down, and a freshly spawned apple.
func (s *GameState) Initialize(rng Source) {
	s.rng = rng

	start := Center()
	for i := range s.segments {
		s.segments[i] = Segment{Pos: start}
	}
	s.segments[0].Occupied = true
	s.length = 1
	s.velocity = Velocity{X: 0, Y: 1}
	s.alive = true

	s.spawnApple()
}

// AdvanceTick applies one logic tick using the raw directional input.
//
// Either the full move applies (shift, possible growth, possible new apple) or
// liveness drops and positions are left untouched. Ticks on a finished game
// are ignored.
func (s *GameState) AdvanceTick(in Input) TickEvent {
	if !s.alive {
		return EventIgnored
	}

	s.velocity = ResolveDirection(in, s.velocity)
	next := s.segments[0].Pos.Add(s.velocity)

	// The tail still counts here: it has not vacated its cell yet.
	if s.Occupied(next) {
		s.alive = false
		return EventCollided
	}

	// Shift from the back so each slot reads its predecessor before it is
	// overwritten. Slot length is included so a segment activated by growth
	// appears where the tail just was.
	last := s.length
	if last > Capacity-1 {
		last = Capacity - 1
	}
	for i := last; i > 0; i-- {
		s.segments[i].Pos = s.segments[i-1].Pos
	}
	s.segments[0].Pos = next

	if next != s.apple {
		return EventMoved
	}

	s.segments[s.length].Occupied = true
	s.length++

	if s.length == Capacity {
		s.alive = false
		return EventFilled
	}

	s.spawnApple()
	return EventAte
}

// Occupied reports whether p coincides with any occupied segment.
// Linear scan over the whole array; capacity is a small constant.
func (s *GameState) Occupied(p Point) bool {
	for i := range s.segments {
		if s.segments[i].Occupied && s.segments[i].Pos == p {
			return true
		}
	}
	return false
}

// spawnApple places the apple uniformly over free cells by rejection sampling.
// Callers must ensure length < Capacity, otherwise no free cell exists.
func (s *GameState) spawnApple() {
	for {
		p := Point{
			X: s.rng.Intn(Cols),
			Y: s.rng.Intn(Rows),
		}
		if !s.Occupied(p) {
			s.apple = p
			return
		}
	}
}

// IsAlive reports whether the game still accepts ticks.
func (s *GameState) IsAlive() bool {
	return s.alive
}

// Won reports whether the game ended by filling the grid.
func (s *GameState) Won() bool {
	return s.length == Capacity
}

// Length returns the number of occupied segments.
func (s *GameState) Length() int {
	return s.length
}

// Head returns the head position.
func (s *GameState) Head() Point {
	return s.segments[0].Pos
}

// Apple returns the apple position.
func (s *GameState) Apple() Point {
	return s.apple
}

// Velocity returns the last applied direction.
func (s *GameState) Velocity() Velocity {
	return s.velocity
}

// Body returns a copy of the occupied positions, head first.
func (s *GameState) Body() []Point {
	body := make([]Point, s.length)
	for i := range body {
		body[i] = s.segments[i].Pos
	}
	return body
}

// Segment returns slot i of the body array, occupied or not.
func (s *GameState) Segment(i int) Segment {
	return s.segments[i]
}
