package core

// RuntimeConfig contains configuration passed to games at initialization.
// Games use this to lay out their board and for deterministic simulation.
type RuntimeConfig struct {
	ScreenW       int   // Screen width in characters
	ScreenH       int   // Screen height in characters
	TickRate      int   // Frames per second driven by the platform (default 60)
	FramesPerTick int   // Frames between two game logic ticks (default 10)
	CellW         int   // Characters per grid cell horizontally
	CellH         int   // Characters per grid cell vertically
	Seed          int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:       80,
		ScreenH:       24,
		TickRate:      60,
		FramesPerTick: 10,
		CellW:         2,
		CellH:         1,
		Seed:          0, // 0 means use current time in platform layer
	}
}

// GameState represents the current state of a game.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Score    int  // Current score
	GameOver bool // Whether the game has ended
	Won      bool // Whether the game ended by filling the board
	Paused   bool // Whether the game is paused
}

// StepResult is returned by Game.Step() after each frame.
type StepResult struct {
	State GameState
	// Ticked is true when this frame ran a game logic tick.
	Ticked bool
}
