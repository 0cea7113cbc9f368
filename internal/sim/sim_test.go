package sim

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/vovakirdan/gridsnake/internal/games/snake"
)

type scriptedSource struct {
	vals []int
	i    int
}

func (s *scriptedSource) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)] % n
	s.i++
	return v
}

type idlePolicy struct{}

func (idlePolicy) Name() string { return "idle" }
func (idlePolicy) Act(Observation) snake.Input { return snake.Input{} }

type randomPolicy struct{ rng *rand.Rand }

func (p *randomPolicy) Name() string { return "random" }

func (p *randomPolicy) Act(Observation) snake.Input {
	switch p.rng.Intn(4) {
	case 0:
		return snake.Input{Up: true}
	case 1:
		return snake.Input{Down: true}
	case 2:
		return snake.Input{Left: true}
	default:
		return snake.Input{Right: true}
	}
}

func newRandomPolicy(seed int64) (Policy, error) {
	return &randomPolicy{rng: rand.New(rand.NewSource(seed))}, nil
}

type recorder struct {
	mu          sync.Mutex
	transitions []Transition
	results     []EpisodeResult
}

func (r *recorder) OnTransition(t Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, t)
}

func (r *recorder) OnEpisodeEnd(res EpisodeResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

type memorySink struct {
	saved []EpisodeResult
	err   error
}

func (m *memorySink) SaveResult(r EpisodeResult) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, r)
	return nil
}

func TestObserve(t *testing.T) {
	s := snake.NewGameState(&scriptedSource{vals: []int{3, 4}})
	obs := Observe(s, 7)

	if obs.Tick != 7 {
		t.Errorf("Tick = %d, want 7", obs.Tick)
	}
	if obs.Head != (snake.Point{X: 8, Y: 8}) {
		t.Errorf("Head = %+v, want (8,8)", obs.Head)
	}
	if obs.Apple != (snake.Point{X: 3, Y: 4}) {
		t.Errorf("Apple = %+v, want (3,4)", obs.Apple)
	}
	if obs.Length != 1 {
		t.Errorf("Length = %d, want 1", obs.Length)
	}
	if obs.Grid[8][8] != CellHead {
		t.Errorf("head cell = %d, want CellHead", obs.Grid[8][8])
	}
	if obs.Grid[4][3] != CellApple {
		t.Errorf("apple cell = %d, want CellApple", obs.Grid[4][3])
	}
	if !obs.Blocked(snake.Point{X: 8, Y: 8}) {
		t.Error("head cell should be blocked")
	}
	if obs.Blocked(snake.Point{X: 3, Y: 4}) {
		t.Error("apple cell should not be blocked")
	}

	var cells int
	for y := range obs.Grid {
		for x := range obs.Grid[y] {
			if obs.Grid[y][x] != CellEmpty {
				cells++
			}
		}
	}
	if cells != 2 {
		t.Errorf("non-empty cells = %d, want 2", cells)
	}
}

func TestReward(t *testing.T) {
	tests := []struct {
		ev   snake.TickEvent
		want float64
	}{
		{snake.EventMoved, 0},
		{snake.EventIgnored, 0},
		{snake.EventAte, RewardApple},
		{snake.EventFilled, RewardApple + RewardFilled},
		{snake.EventCollided, RewardDeath},
	}
	for _, tt := range tests {
		t.Run(tt.ev.String(), func(t *testing.T) {
			if got := Reward(tt.ev); got != tt.want {
				t.Errorf("Reward(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestRunEpisodeTruncates(t *testing.T) {
	rec := &recorder{}
	res, err := RunEpisode(context.Background(), idlePolicy{}, Episode{Index: 3, Seed: 1}, 50, rec)
	if err != nil {
		t.Fatalf("RunEpisode: %v", err)
	}
	if res.Outcome != OutcomeTruncated {
		t.Errorf("Outcome = %q, want %q", res.Outcome, OutcomeTruncated)
	}
	if res.Ticks != 50 {
		t.Errorf("Ticks = %d, want 50", res.Ticks)
	}
	if res.Episode != 3 || res.Policy != "idle" {
		t.Errorf("result identity = (%d, %q)", res.Episode, res.Policy)
	}
	if len(rec.transitions) != 50 {
		t.Fatalf("transitions = %d, want 50", len(rec.transitions))
	}
	if len(rec.results) != 1 {
		t.Errorf("episode end callbacks = %d, want 1", len(rec.results))
	}

	// Idle input keeps the initial downward drift.
	for i, tr := range rec.transitions {
		if tr.Tick != i+1 {
			t.Fatalf("transition %d has tick %d", i, tr.Tick)
		}
		if tr.Next.Velocity != (snake.Velocity{X: 0, Y: 1}) {
			t.Fatalf("tick %d velocity = %v, want down", tr.Tick, tr.Next.Velocity)
		}
		if i > 0 && rec.transitions[i-1].Next != tr.Obs {
			t.Fatalf("tick %d observation does not chain from the previous step", tr.Tick)
		}
	}
}

func TestRunEpisodeConsistency(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rec := &recorder{}
		p, _ := newRandomPolicy(seed)
		res, err := RunEpisode(context.Background(), p, Episode{Seed: seed}, 2000, rec)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		var reward float64
		apples := 0
		for i, tr := range rec.transitions {
			reward += tr.Reward
			if tr.Event == snake.EventAte.String() || tr.Event == snake.EventFilled.String() {
				apples++
			}
			last := i == len(rec.transitions)-1
			if tr.Done && !last {
				t.Fatalf("seed %d: done before the last transition", seed)
			}
		}
		if reward != res.Reward {
			t.Errorf("seed %d: reward sum %v, result %v", seed, reward, res.Reward)
		}
		if res.Length != 1+apples {
			t.Errorf("seed %d: length %d, apples eaten %d", seed, res.Length, apples)
		}
		if res.Ticks != len(rec.transitions) {
			t.Errorf("seed %d: ticks %d, transitions %d", seed, res.Ticks, len(rec.transitions))
		}
		if res.Outcome == OutcomeDied {
			lastTr := rec.transitions[len(rec.transitions)-1]
			if !lastTr.Done || lastTr.Reward != RewardDeath {
				t.Errorf("seed %d: died but last transition = %+v", seed, lastTr)
			}
		}
	}
}

func TestRunEpisodeDeterministic(t *testing.T) {
	run := func() (EpisodeResult, []Transition) {
		rec := &recorder{}
		p, _ := newRandomPolicy(42)
		res, err := RunEpisode(context.Background(), p, Episode{Seed: 42}, 500, rec)
		if err != nil {
			t.Fatalf("RunEpisode: %v", err)
		}
		return res, rec.transitions
	}

	a, ta := run()
	b, tb := run()
	if a.Length != b.Length || a.Ticks != b.Ticks || a.Outcome != b.Outcome || a.Reward != b.Reward {
		t.Fatalf("results differ: %+v vs %+v", a, b)
	}
	for i := range ta {
		if ta[i] != tb[i] {
			t.Fatalf("transition %d differs", i)
		}
	}
}

func TestRunEpisodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunEpisode(ctx, idlePolicy{}, Episode{Seed: 1}, 0, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestJSONLCollector(t *testing.T) {
	var buf bytes.Buffer
	c := NewJSONLCollector(&buf)

	if _, err := RunEpisode(context.Background(), idlePolicy{}, Episode{RunID: "run-1", Seed: 9}, 5, c); err != nil {
		t.Fatalf("RunEpisode: %v", err)
	}
	if err := c.Err(); err != nil {
		t.Fatalf("collector error: %v", err)
	}
	if c.Written() != 5 {
		t.Errorf("Written() = %d, want 5", c.Written())
	}

	sc := bufio.NewScanner(&buf)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lines := 0
	for sc.Scan() {
		var tr Transition
		if err := json.Unmarshal(sc.Bytes(), &tr); err != nil {
			t.Fatalf("line %d: %v", lines+1, err)
		}
		lines++
		if tr.Tick != lines {
			t.Errorf("line %d tick = %d", lines, tr.Tick)
		}
		if tr.RunID != "run-1" {
			t.Errorf("line %d run id = %q", lines, tr.RunID)
		}
	}
	if lines != 5 {
		t.Errorf("lines = %d, want 5", lines)
	}
}

func TestSummarize(t *testing.T) {
	results := []EpisodeResult{
		{Length: 4, Ticks: 100, Outcome: OutcomeDied, Reward: 2},
		{Length: 10, Ticks: 300, Outcome: OutcomeTruncated, Reward: 9},
		{Length: 256, Ticks: 5000, Outcome: OutcomeFilled, Reward: 256},
	}
	s := Summarize(results)

	if s.Episodes != 3 || s.Died != 1 || s.Truncated != 1 || s.Filled != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.BestLength != 256 {
		t.Errorf("BestLength = %d, want 256", s.BestLength)
	}
	if s.MeanLength != 90 {
		t.Errorf("MeanLength = %v, want 90", s.MeanLength)
	}
	if s.MeanTicks != 1800 {
		t.Errorf("MeanTicks = %v, want 1800", s.MeanTicks)
	}

	if empty := Summarize(nil); empty != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", empty)
	}
}

func TestCollectors(t *testing.T) {
	if Collectors(nil, nil) != nil {
		t.Error("Collectors of nils should be nil")
	}

	a, b := &recorder{}, &recorder{}
	c := Collectors(a, nil, b)
	c.OnTransition(Transition{Tick: 1})
	c.OnEpisodeEnd(EpisodeResult{Episode: 2})

	for _, r := range []*recorder{a, b} {
		if len(r.transitions) != 1 || len(r.results) != 1 {
			t.Errorf("recorder got %d transitions, %d results", len(r.transitions), len(r.results))
		}
	}
}

func TestBatchRun(t *testing.T) {
	sink := &memorySink{}
	stats := &StatsCollector{}
	b := &Batch{
		Episodes:  12,
		Workers:   4,
		BaseSeed:  100,
		MaxTicks:  300,
		NewPolicy: newRandomPolicy,
		Collector: stats,
		Sink:      sink,
	}

	results, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if b.RunID == "" {
		t.Error("RunID should be assigned")
	}
	if len(results) != 12 {
		t.Fatalf("results = %d, want 12", len(results))
	}
	for i, r := range results {
		if r.Episode != i || r.Seed != 100+int64(i) {
			t.Errorf("result %d = episode %d seed %d", i, r.Episode, r.Seed)
		}
		if r.RunID != b.RunID {
			t.Errorf("result %d run id = %q, want %q", i, r.RunID, b.RunID)
		}
	}
	if len(sink.saved) != 12 {
		t.Errorf("saved = %d, want 12", len(sink.saved))
	}
	if got := stats.Summary().Episodes; got != 12 {
		t.Errorf("stats episodes = %d, want 12", got)
	}

	// Worker count must not change the outcome of any episode.
	serial := &Batch{RunID: b.RunID, Episodes: 12, Workers: 1, BaseSeed: 100, MaxTicks: 300, NewPolicy: newRandomPolicy}
	again, err := serial.Run(context.Background())
	if err != nil {
		t.Fatalf("serial Run: %v", err)
	}
	for i := range results {
		x, y := results[i], again[i]
		if x.Length != y.Length || x.Ticks != y.Ticks || x.Outcome != y.Outcome {
			t.Errorf("episode %d differs between worker counts: %+v vs %+v", i, x, y)
		}
	}
}

func TestBatchErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := (&Batch{Episodes: 0, NewPolicy: newRandomPolicy}).Run(ctx); err == nil {
		t.Error("expected error for zero episodes")
	}
	if _, err := (&Batch{Episodes: 1}).Run(ctx); err == nil {
		t.Error("expected error without a policy factory")
	}

	boom := errors.New("boom")
	failing := func(int64) (Policy, error) { return nil, boom }
	if _, err := (&Batch{Episodes: 3, Workers: 2, NewPolicy: failing}).Run(ctx); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}

	sink := &memorySink{err: boom}
	_, err := (&Batch{Episodes: 2, MaxTicks: 10, NewPolicy: newRandomPolicy, Sink: sink}).Run(ctx)
	if !errors.Is(err, boom) {
		t.Errorf("sink err = %v, want boom", err)
	}
}
