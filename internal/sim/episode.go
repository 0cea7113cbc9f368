package sim

import (
	"context"
	"math/rand"
	"time"

	"github.com/vovakirdan/gridsnake/internal/games/snake"
)

// Rewards emitted per transition.
const (
	RewardApple  = 1.0
	RewardDeath  = -1.0
	RewardFilled = 1.0 // Paid on top of RewardApple for the final apple
)

// Policy chooses the input for each tick of an episode.
type Policy interface {
	Name() string
	Act(obs Observation) snake.Input
}

// Outcome is how an episode finished.
type Outcome string

const (
	OutcomeDied      Outcome = "died"
	OutcomeFilled    Outcome = "filled"
	OutcomeTruncated Outcome = "truncated"
)

// Transition is one (observation, action, reward, next observation) step.
type Transition struct {
	RunID   string      `json:"run_id,omitempty"`
	Episode int         `json:"episode"`
	Tick    int         `json:"tick"`
	Obs     Observation `json:"obs"`
	Action  snake.Input `json:"action"`
	Event   string      `json:"event"`
	Reward  float64     `json:"reward"`
	Next    Observation `json:"next"`
	Done    bool        `json:"done"`
}

// EpisodeResult summarizes a finished episode.
type EpisodeResult struct {
	RunID    string    `json:"run_id,omitempty"`
	Episode  int       `json:"episode"`
	Policy   string    `json:"policy"`
	Seed     int64     `json:"seed"`
	Length   int       `json:"length"`
	Ticks    int       `json:"ticks"`
	Outcome  Outcome   `json:"outcome"`
	Reward   float64   `json:"reward"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// Reward returns the reward for a tick event.
func Reward(ev snake.TickEvent) float64 {
	switch ev {
	case snake.EventAte:
		return RewardApple
	case snake.EventFilled:
		return RewardApple + RewardFilled
	case snake.EventCollided:
		return RewardDeath
	default:
		return 0
	}
}

// Episode identifies an episode within a run.
type Episode struct {
	RunID string
	Index int
	Seed  int64
}

// RunEpisode plays one game with p until it ends, maxTicks is reached
// (maxTicks <= 0 means no limit), or ctx is cancelled. c may be nil.
func RunEpisode(ctx context.Context, p Policy, ep Episode, maxTicks int, c Collector) (EpisodeResult, error) {
	res := EpisodeResult{
		RunID:   ep.RunID,
		Episode: ep.Index,
		Policy:  p.Name(),
		Seed:    ep.Seed,
		Started: time.Now(),
	}

	state := snake.NewGameState(rand.New(rand.NewSource(ep.Seed)))
	obs := Observe(state, 0)

	for state.IsAlive() {
		if maxTicks > 0 && res.Ticks >= maxTicks {
			res.Outcome = OutcomeTruncated
			break
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		action := p.Act(obs)
		ev := state.AdvanceTick(action)
		res.Ticks++

		reward := Reward(ev)
		res.Reward += reward
		next := Observe(state, res.Ticks)

		if c != nil {
			c.OnTransition(Transition{
				RunID:   ep.RunID,
				Episode: ep.Index,
				Tick:    res.Ticks,
				Obs:     obs,
				Action:  action,
				Event:   ev.String(),
				Reward:  reward,
				Next:    next,
				Done:    ev.Terminal(),
			})
		}
		obs = next
	}

	if !state.IsAlive() {
		res.Outcome = OutcomeDied
		if state.Won() {
			res.Outcome = OutcomeFilled
		}
	}
	res.Length = state.Length()
	res.Finished = time.Now()

	if c != nil {
		c.OnEpisodeEnd(res)
	}
	return res, nil
}
