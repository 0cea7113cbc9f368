package snake

import "github.com/vovakirdan/gridsnake/internal/core"

// Input is the raw directional state sampled once per tick.
// The four signals are independent; any combination may be pressed.
type Input struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// InputFromFrame extracts the directional signals from a platform input frame.
func InputFromFrame(f core.InputFrame) Input {
	return Input{
		Up:    f.Has(core.ActionUp),
		Down:  f.Has(core.ActionDown),
		Left:  f.Has(core.ActionLeft),
		Right: f.Has(core.ActionRight),
	}
}

// InputFor returns the single-key input that requests velocity v.
func InputFor(v Velocity) Input {
	return Input{
		Up:    v.Y < 0,
		Down:  v.Y > 0,
		Left:  v.X < 0,
		Right: v.X > 0,
	}
}

// ResolveDirection turns raw input into the velocity for the next tick.
//
// Horizontal input wins: when right-left is nonzero, vertical keys are ignored
// for this tick. When nothing resolves (no keys, or only opposing keys), the
// previous velocity is kept so the snake never stops.
func ResolveDirection(in Input, prev Velocity) Velocity {
	var v Velocity
	if in.Right {
		v.X++
	}
	if in.Left {
		v.X--
	}

	if v.X == 0 {
		if in.Up {
			v.Y--
		}
		if in.Down {
			v.Y++
		}
	}

	if v.Zero() {
		return prev
	}
	return v
}
