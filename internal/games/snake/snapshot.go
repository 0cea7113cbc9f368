package snake

// GameStateType represents the current game state.
type GameStateType string

const (
	StatePlaying     GameStateType = "playing"
	StatePaused      GameStateType = "paused"
	StateGameOver    GameStateType = "game_over"
	StateWin         GameStateType = "win"
	StatePausedSmall GameStateType = "paused_small_window"
)

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Frame     uint64
	Tick      uint64
	Length    int
	HeadX     int
	HeadY     int
	Velocity  Velocity
	AppleX    int
	AppleY    int
	LastEvent TickEvent
	State     GameStateType
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	state := StatePlaying
	switch {
	case g.tooSmall:
		state = StatePausedSmall
	case g.state.Won():
		state = StateWin
	case !g.state.IsAlive():
		state = StateGameOver
	case g.paused:
		state = StatePaused
	}

	head, apple := g.state.Head(), g.state.Apple()
	return Snapshot{
		Frame:     g.frame,
		Tick:      g.tick,
		Length:    g.state.Length(),
		HeadX:     head.X,
		HeadY:     head.Y,
		Velocity:  g.state.Velocity(),
		AppleX:    apple.X,
		AppleY:    apple.Y,
		LastEvent: g.lastEvent,
		State:     state,
	}
}
