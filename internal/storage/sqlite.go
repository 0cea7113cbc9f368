// Package storage provides SQLite-based persistence for finished episodes,
// whether played by a human or by a policy.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/gridsnake/internal/sim"
)

// SourceHuman is the source recorded for interactively played games.
const SourceHuman = "human"

// Store manages the SQLite database connection for episode persistence.
type Store struct {
	db *sql.DB
}

// Episode is a single stored game record.
type Episode struct {
	ID        int64
	RunID     string
	Source    string // "human" or a policy name
	Seed      int64
	Length    int
	Ticks     int
	Outcome   string
	Reward    float64
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			length INTEGER NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			reward REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_source ON episodes(source);
		CREATE INDEX IF NOT EXISTS idx_episodes_top ON episodes(source, length DESC);
		CREATE INDEX IF NOT EXISTS idx_episodes_run ON episodes(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveEpisode records a finished episode.
// Returns the ID of the inserted record.
func (s *Store) SaveEpisode(e Episode) (int64, error) {
	if e.Source == "" {
		return 0, errors.New("storage: episode source is required")
	}

	result, err := s.db.Exec(
		`INSERT INTO episodes (run_id, source, seed, length, ticks, outcome, reward)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Source, e.Seed, e.Length, e.Ticks, e.Outcome, e.Reward,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save episode: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// SaveResult implements sim.ResultSink, storing r under its policy name.
func (s *Store) SaveResult(r sim.EpisodeResult) error {
	_, err := s.SaveEpisode(Episode{
		RunID:   r.RunID,
		Source:  r.Policy,
		Seed:    r.Seed,
		Length:  r.Length,
		Ticks:   r.Ticks,
		Outcome: string(r.Outcome),
		Reward:  r.Reward,
	})
	return err
}

var _ sim.ResultSink = (*Store)(nil)

const episodeColumns = `id, run_id, source, seed, length, ticks, outcome, reward, created_at`

// TopEpisodes retrieves the N longest episodes for the given source.
// Ties are broken by fewer ticks, then by age.
func (s *Store) TopEpisodes(source string, limit int) ([]Episode, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+episodeColumns+`
		 FROM episodes
		 WHERE source = ?
		 ORDER BY length DESC, ticks ASC, id ASC
		 LIMIT ?`,
		source, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	return scanEpisodes(rows)
}

// AllEpisodes retrieves all episodes for the given source (no limit).
func (s *Store) AllEpisodes(source string) ([]Episode, error) {
	rows, err := s.db.Query(
		`SELECT `+episodeColumns+`
		 FROM episodes
		 WHERE source = ?
		 ORDER BY length DESC, ticks ASC, id ASC`,
		source,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	return scanEpisodes(rows)
}

// RunEpisodes retrieves every episode recorded under a batch run ID.
func (s *Store) RunEpisodes(runID string) ([]Episode, error) {
	rows, err := s.db.Query(
		`SELECT `+episodeColumns+`
		 FROM episodes
		 WHERE run_id = ?
		 ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return scanEpisodes(rows)
}

func scanEpisodes(rows *sql.Rows) ([]Episode, error) {
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		var createdAt any
		if err := rows.Scan(&e.ID, &e.RunID, &e.Source, &e.Seed, &e.Length,
			&e.Ticks, &e.Outcome, &e.Reward, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		episodes = append(episodes, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return episodes, nil
}

// parseTime handles both time.Time and the string form SQLite may return.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// BestLength returns the longest snake recorded for the given source.
// Returns 0 if no episodes exist.
func (s *Store) BestLength(source string) (int, error) {
	var best sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(length) FROM episodes WHERE source = ?",
		source,
	).Scan(&best)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best length: %w", err)
	}

	if !best.Valid {
		return 0, nil
	}
	return int(best.Int64), nil
}

// ClearEpisodes deletes all episodes for the given source.
func (s *Store) ClearEpisodes(source string) error {
	_, err := s.db.Exec("DELETE FROM episodes WHERE source = ?", source)
	if err != nil {
		return fmt.Errorf("storage: cannot clear episodes: %w", err)
	}
	return nil
}

// Sources lists every source that has at least one episode, sorted by name.
func (s *Store) Sources() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT source FROM episodes ORDER BY source")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("storage: cannot scan source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return sources, nil
}

// SourceStats contains aggregated statistics for one source.
type SourceStats struct {
	Source     string
	Episodes   int
	Filled     int
	BestLength int
	AvgLength  float64
	AvgTicks   float64
	LastPlayed time.Time
}

// Stats retrieves aggregated statistics for a specific source.
func (s *Store) Stats(source string) (*SourceStats, error) {
	stats := &SourceStats{Source: source}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(length), 0),
		        COALESCE(AVG(length), 0),
		        COALESCE(AVG(ticks), 0),
		        MAX(created_at)
		 FROM episodes WHERE source = ?`,
		string(sim.OutcomeFilled), source,
	).Scan(&stats.Episodes, &stats.Filled, &stats.BestLength, &stats.AvgLength, &stats.AvgTicks, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get source stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// AllStats retrieves statistics for every source with recorded episodes.
func (s *Store) AllStats() (map[string]*SourceStats, error) {
	rows, err := s.db.Query(
		`SELECT source, COUNT(*),
		        SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		        MAX(length), AVG(length), AVG(ticks), MAX(created_at)
		 FROM episodes
		 GROUP BY source`,
		string(sim.OutcomeFilled),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all source stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*SourceStats)
	for rows.Next() {
		var st SourceStats
		var lastPlayed any
		if err := rows.Scan(&st.Source, &st.Episodes, &st.Filled, &st.BestLength,
			&st.AvgLength, &st.AvgTicks, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.Source] = &st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}
