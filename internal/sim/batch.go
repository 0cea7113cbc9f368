package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PolicyFactory builds a fresh policy for one episode.
type PolicyFactory func(seed int64) (Policy, error)

// Batch runs many independent episodes across a bounded worker pool.
type Batch struct {
	RunID     string
	Episodes  int
	Workers   int
	BaseSeed  int64
	MaxTicks  int
	NewPolicy PolicyFactory
	Collector Collector
	Sink      ResultSink
	Logger    *log.Logger
}

// Run plays every episode and returns the results ordered by episode index.
// Episode i is seeded with BaseSeed+i, so a batch is reproducible regardless
// of worker count.
func (b *Batch) Run(ctx context.Context) ([]EpisodeResult, error) {
	if b.Episodes <= 0 {
		return nil, fmt.Errorf("sim: episodes must be positive, got %d", b.Episodes)
	}
	if b.NewPolicy == nil {
		return nil, errors.New("sim: no policy factory")
	}
	if b.RunID == "" {
		b.RunID = uuid.NewString()
	}
	workers := b.Workers
	if workers <= 0 {
		workers = 1
	}
	logger := b.Logger
	if logger == nil {
		logger = log.Default()
	}

	results := make([]EpisodeResult, b.Episodes)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < b.Episodes; i++ {
		ep := Episode{RunID: b.RunID, Index: i, Seed: b.BaseSeed + int64(i)}
		g.Go(func() error {
			p, err := b.NewPolicy(ep.Seed)
			if err != nil {
				return fmt.Errorf("sim: episode %d: %w", ep.Index, err)
			}
			r, err := RunEpisode(gctx, p, ep, b.MaxTicks, b.Collector)
			if err != nil {
				return fmt.Errorf("sim: episode %d: %w", ep.Index, err)
			}
			results[ep.Index] = r
			logger.Debug("episode finished", "episode", ep.Index, "seed", ep.Seed,
				"length", r.Length, "ticks", r.Ticks, "outcome", r.Outcome)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Saved after the pool drains so the sink sees a single writer.
	if b.Sink != nil {
		for _, r := range results {
			if err := b.Sink.SaveResult(r); err != nil {
				return results, fmt.Errorf("sim: save episode %d: %w", r.Episode, err)
			}
		}
	}

	s := Summarize(results)
	logger.Info("run finished", "run", b.RunID, "episodes", s.Episodes,
		"best", s.BestLength, "mean_length", fmt.Sprintf("%.2f", s.MeanLength))
	return results, nil
}
