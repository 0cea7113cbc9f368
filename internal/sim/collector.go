package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Collector receives transitions and episode results as they are produced.
// Implementations used with Batch must be safe for concurrent use.
type Collector interface {
	OnTransition(t Transition)
	OnEpisodeEnd(r EpisodeResult)
}

// ResultSink persists finished episodes.
type ResultSink interface {
	SaveResult(r EpisodeResult) error
}

// JSONLCollector writes one JSON object per transition.
type JSONLCollector struct {
	mu  sync.Mutex
	enc *json.Encoder
	err error
	n   int
}

// NewJSONLCollector creates a collector writing to w.
func NewJSONLCollector(w io.Writer) *JSONLCollector {
	return &JSONLCollector{enc: json.NewEncoder(w)}
}

// OnTransition encodes t as a single line.
func (c *JSONLCollector) OnTransition(t Transition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return
	}
	if err := c.enc.Encode(t); err != nil {
		c.err = fmt.Errorf("sim: encode transition: %w", err)
		return
	}
	c.n++
}

// OnEpisodeEnd is a no-op; results are reported separately.
func (c *JSONLCollector) OnEpisodeEnd(EpisodeResult) {}

// Err returns the first write error, if any.
func (c *JSONLCollector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Written returns the number of transitions written.
func (c *JSONLCollector) Written() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Summary aggregates a set of episode results.
type Summary struct {
	Episodes   int
	Died       int
	Filled     int
	Truncated  int
	BestLength int
	MeanLength float64
	MeanTicks  float64
	MeanReward float64
}

// Summarize aggregates results.
func Summarize(results []EpisodeResult) Summary {
	var s StatsCollector
	for _, r := range results {
		s.OnEpisodeEnd(r)
	}
	return s.Summary()
}

// StatsCollector accumulates per-episode statistics.
type StatsCollector struct {
	mu          sync.Mutex
	sum         Summary
	totalLength int
	totalTicks  int
	totalReward float64
}

// OnTransition is a no-op.
func (s *StatsCollector) OnTransition(Transition) {}

// OnEpisodeEnd records r.
func (s *StatsCollector) OnEpisodeEnd(r EpisodeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sum.Episodes++
	switch r.Outcome {
	case OutcomeDied:
		s.sum.Died++
	case OutcomeFilled:
		s.sum.Filled++
	case OutcomeTruncated:
		s.sum.Truncated++
	}
	if r.Length > s.sum.BestLength {
		s.sum.BestLength = r.Length
	}
	s.totalLength += r.Length
	s.totalTicks += r.Ticks
	s.totalReward += r.Reward
}

// Summary returns the statistics collected so far.
func (s *StatsCollector) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.sum
	if out.Episodes > 0 {
		n := float64(out.Episodes)
		out.MeanLength = float64(s.totalLength) / n
		out.MeanTicks = float64(s.totalTicks) / n
		out.MeanReward = s.totalReward / n
	}
	return out
}

type multiCollector []Collector

func (m multiCollector) OnTransition(t Transition) {
	for _, c := range m {
		c.OnTransition(t)
	}
}

func (m multiCollector) OnEpisodeEnd(r EpisodeResult) {
	for _, c := range m {
		c.OnEpisodeEnd(r)
	}
}

// Collectors fans out to every non-nil collector in cs.
func Collectors(cs ...Collector) Collector {
	var m multiCollector
	for _, c := range cs {
		if c != nil {
			m = append(m, c)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}
