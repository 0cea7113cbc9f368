// Package agents provides the built-in scripted policies. Importing it
// registers them with the policy registry.
package agents

import (
	"math/rand"

	"github.com/vovakirdan/gridsnake/internal/core"
	"github.com/vovakirdan/gridsnake/internal/games/snake"
	"github.com/vovakirdan/gridsnake/internal/registry"
	"github.com/vovakirdan/gridsnake/internal/sim"
)

func init() {
	registry.Register("idle", "never presses a key; drifts along the current velocity",
		func(int64) sim.Policy { return Idle{} })
	registry.Register("random", "presses one uniformly random direction each tick",
		func(seed int64) sim.Policy { return NewRandom(seed) })
	registry.Register("greedy", "moves toward the apple, avoiding cells the snake occupies",
		func(int64) sim.Policy { return Greedy{} })
}

// directions in the order policies consider them.
var directions = []snake.Velocity{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

// Idle never presses anything.
type Idle struct{}

// Name returns "idle".
func (Idle) Name() string { return "idle" }

// Act returns an input with no key pressed.
func (Idle) Act(sim.Observation) snake.Input { return snake.Input{} }

// Random presses a single direction chosen uniformly each tick.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a random policy drawing from seed.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

// Name returns "random".
func (r *Random) Name() string { return "random" }

// Act presses one direction drawn from the policy's source.
func (r *Random) Act(sim.Observation) snake.Input {
	return snake.InputFor(directions[r.rng.Intn(len(directions))])
}

// Greedy steps to the free neighbour closest to the apple on the torus.
// Ties prefer the current velocity, then the order of directions. When every
// neighbour is blocked it keeps going straight.
type Greedy struct{}

// Name returns "greedy".
func (Greedy) Name() string { return "greedy" }

// Act presses the direction of the free neighbour nearest the apple.
func (Greedy) Act(obs sim.Observation) snake.Input {
	best := obs.Velocity
	bestDist := -1

	consider := func(v snake.Velocity) {
		next := obs.Head.Add(v)
		if obs.Blocked(next) {
			return
		}
		d := torusDistance(next, obs.Apple)
		if bestDist < 0 || d < bestDist {
			best, bestDist = v, d
		}
	}

	if !obs.Velocity.Zero() {
		consider(obs.Velocity)
	}
	for _, v := range directions {
		consider(v)
	}
	return snake.InputFor(best)
}

func torusDistance(a, b snake.Point) int {
	dx := core.Abs(a.X - b.X)
	dy := core.Abs(a.Y - b.Y)
	return core.Min(dx, snake.Cols-dx) + core.Min(dy, snake.Rows-dy)
}
