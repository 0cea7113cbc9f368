package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/gridsnake/internal/games/snake"
	"github.com/vovakirdan/gridsnake/internal/sim"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func save(t *testing.T, store *Store, e Episode) {
	t.Helper()
	if e.Outcome == "" {
		e.Outcome = string(sim.OutcomeDied)
	}
	if _, err := store.SaveEpisode(e); err != nil {
		t.Fatalf("SaveEpisode() failed: %v", err)
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	save(t, store, Episode{Source: SourceHuman, Length: 10, Ticks: 300})
	save(t, store, Episode{Source: SourceHuman, Length: 5, Ticks: 120})
	save(t, store, Episode{Source: SourceHuman, Length: 20, Ticks: 900, Seed: 42})
	save(t, store, Episode{Source: "greedy", Length: 50, Ticks: 2000})

	episodes, err := store.TopEpisodes(SourceHuman, 10)
	if err != nil {
		t.Fatalf("TopEpisodes() failed: %v", err)
	}
	if len(episodes) != 3 {
		t.Fatalf("Expected 3 episodes, got %d", len(episodes))
	}

	if episodes[0].Length != 20 || episodes[1].Length != 10 || episodes[2].Length != 5 {
		t.Errorf("Episodes not sorted by length: %+v", episodes)
	}
	if episodes[0].Seed != 42 || episodes[0].Ticks != 900 {
		t.Errorf("Top episode fields not round-tripped: %+v", episodes[0])
	}
	if episodes[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be populated")
	}

	greedy, err := store.TopEpisodes("greedy", 10)
	if err != nil {
		t.Fatalf("TopEpisodes() failed: %v", err)
	}
	if len(greedy) != 1 {
		t.Errorf("Expected 1 greedy episode, got %d", len(greedy))
	}
}

func TestStoreSaveRequiresSource(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.SaveEpisode(Episode{Length: 3}); err == nil {
		t.Error("expected error for missing source")
	}
}

func TestStoreTopEpisodesTieBreak(t *testing.T) {
	store := openTestStore(t)

	save(t, store, Episode{Source: "random", Length: 7, Ticks: 500})
	save(t, store, Episode{Source: "random", Length: 7, Ticks: 100})

	episodes, err := store.TopEpisodes("random", 1)
	if err != nil {
		t.Fatalf("TopEpisodes() failed: %v", err)
	}
	if len(episodes) != 1 || episodes[0].Ticks != 100 {
		t.Errorf("Expected the faster episode first, got %+v", episodes)
	}
}

func TestStoreTopEpisodesLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		save(t, store, Episode{Source: "test", Length: (i + 1) * 10})
	}

	episodes, err := store.TopEpisodes("test", 3)
	if err != nil {
		t.Fatalf("TopEpisodes() failed: %v", err)
	}
	if len(episodes) != 3 {
		t.Fatalf("Expected 3 episodes with limit, got %d", len(episodes))
	}
	if episodes[0].Length != 50 || episodes[1].Length != 40 || episodes[2].Length != 30 {
		t.Errorf("Episodes not in expected order: %+v", episodes)
	}
}

func TestStoreBestLength(t *testing.T) {
	store := openTestStore(t)

	best, err := store.BestLength(SourceHuman)
	if err != nil {
		t.Fatalf("BestLength() failed: %v", err)
	}
	if best != 0 {
		t.Errorf("Expected 0 for empty source, got %d", best)
	}

	save(t, store, Episode{Source: SourceHuman, Length: 4})
	save(t, store, Episode{Source: SourceHuman, Length: 12})
	save(t, store, Episode{Source: SourceHuman, Length: 9})

	best, err = store.BestLength(SourceHuman)
	if err != nil {
		t.Fatalf("BestLength() failed: %v", err)
	}
	if best != 12 {
		t.Errorf("Expected best length 12, got %d", best)
	}
}

func TestStoreClearEpisodes(t *testing.T) {
	store := openTestStore(t)

	save(t, store, Episode{Source: SourceHuman, Length: 3})
	save(t, store, Episode{Source: SourceHuman, Length: 4})
	save(t, store, Episode{Source: "greedy", Length: 30})

	if err := store.ClearEpisodes(SourceHuman); err != nil {
		t.Fatalf("ClearEpisodes() failed: %v", err)
	}

	human, _ := store.TopEpisodes(SourceHuman, 10)
	if len(human) != 0 {
		t.Errorf("Expected 0 human episodes after clear, got %d", len(human))
	}

	greedy, _ := store.TopEpisodes("greedy", 10)
	if len(greedy) != 1 {
		t.Errorf("Greedy episodes should not be affected by clearing human")
	}
}

func TestStoreAllEpisodes(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 20; i++ {
		save(t, store, Episode{Source: "test", Length: i + 1})
	}

	episodes, err := store.AllEpisodes("test")
	if err != nil {
		t.Fatalf("AllEpisodes() failed: %v", err)
	}
	if len(episodes) != 20 {
		t.Errorf("Expected 20 episodes, got %d", len(episodes))
	}
}

func TestStoreSourcesAndStats(t *testing.T) {
	store := openTestStore(t)

	save(t, store, Episode{Source: "random", Length: 2, Ticks: 10})
	save(t, store, Episode{Source: "random", Length: 4, Ticks: 30})
	save(t, store, Episode{Source: SourceHuman, Length: 256, Ticks: 4000, Outcome: string(sim.OutcomeFilled)})

	sources, err := store.Sources()
	if err != nil {
		t.Fatalf("Sources() failed: %v", err)
	}
	if len(sources) != 2 || sources[0] != SourceHuman || sources[1] != "random" {
		t.Errorf("Sources() = %v", sources)
	}

	st, err := store.Stats("random")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if st.Episodes != 2 || st.BestLength != 4 || st.AvgLength != 3 || st.AvgTicks != 20 || st.Filled != 0 {
		t.Errorf("random stats = %+v", st)
	}

	empty, err := store.Stats("nobody")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if empty.Episodes != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("empty stats = %+v", empty)
	}

	all, err := store.AllStats()
	if err != nil {
		t.Fatalf("AllStats() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("AllStats() returned %d sources", len(all))
	}
	if h := all[SourceHuman]; h == nil || h.Filled != 1 || h.BestLength != snake.Capacity {
		t.Errorf("human stats = %+v", h)
	}
}

func TestStoreAsResultSink(t *testing.T) {
	store := openTestStore(t)

	b := &sim.Batch{
		Episodes: 4,
		Workers:  2,
		BaseSeed: 10,
		MaxTicks: 50,
		NewPolicy: func(int64) (sim.Policy, error) {
			return idle{}, nil
		},
		Sink: store,
	}
	if _, err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	episodes, err := store.RunEpisodes(b.RunID)
	if err != nil {
		t.Fatalf("RunEpisodes() failed: %v", err)
	}
	if len(episodes) != 4 {
		t.Fatalf("Expected 4 stored episodes, got %d", len(episodes))
	}
	for i, e := range episodes {
		if e.Source != "idle" || e.Seed != 10+int64(i) || e.Outcome != string(sim.OutcomeTruncated) {
			t.Errorf("episode %d = %+v", i, e)
		}
	}
}

type idle struct{}

func (idle) Name() string { return "idle" }

func (idle) Act(sim.Observation) snake.Input { return snake.Input{} }

func TestStoreExpandHomePath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
