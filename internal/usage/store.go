// Package usage persists per-action click statistics. Stats feed the
// ranker: the more an action is executed, the earlier it appears in
// future palettes. The key set only grows and clicks only increase,
// except through an explicit user-initiated Reset.
package usage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"actionnerd/internal/action"
	"actionnerd/internal/logging"
)

// Store is the process-wide usage store. The full mapping is loaded
// once at open and mirrored in memory; every mutation is persisted
// before the cache is updated, so a crash can lose at most the
// in-flight click, never reorder one.
type Store struct {
	mu    sync.Mutex
	db    *sql.DB
	cache action.UsageStats
	path  string
}

// Open initializes the sqlite database at path and loads the stats.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create usage dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.Get(logging.CategoryUsage).Debug("failed to set busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.Get(logging.CategoryUsage).Debug("failed to set journal_mode", zap.Error(err))
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS action_stats (
			action_id TEXT PRIMARY KEY,
			clicks    INTEGER NOT NULL DEFAULT 0,
			last_used INTEGER
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate usage db: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Get(logging.CategoryUsage).Info("usage store opened",
		zap.String("path", path),
		zap.Int("actions", len(s.cache)))
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT action_id, clicks, last_used FROM action_stats`)
	if err != nil {
		return fmt.Errorf("failed to load usage stats: %w", err)
	}
	defer rows.Close()

	cache := make(action.UsageStats)
	for rows.Next() {
		var id string
		var clicks int
		var lastUsed sql.NullInt64
		if err := rows.Scan(&id, &clicks, &lastUsed); err != nil {
			return fmt.Errorf("failed to scan usage row: %w", err)
		}
		st := action.ActionStats{Clicks: clicks}
		if lastUsed.Valid {
			t := time.UnixMilli(lastUsed.Int64)
			st.LastUsed = &t
		}
		cache[id] = st
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate usage rows: %w", err)
	}

	s.mu.Lock()
	s.cache = cache
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current stats. The copy is safe to
// hand to the ranker without further locking.
func (s *Store) Snapshot() action.UsageStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(action.UsageStats, len(s.cache))
	for id, st := range s.cache {
		out[id] = st
	}
	return out
}

// Record increments the click counter for an action and stamps
// last_used. Persist-then-cache: the write must land before the
// in-memory view changes.
func (s *Store) Record(actionID string) error {
	if actionID == "" {
		return fmt.Errorf("empty action id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	_, err := s.db.Exec(`
		INSERT INTO action_stats (action_id, clicks, last_used) VALUES (?, 1, ?)
		ON CONFLICT(action_id) DO UPDATE SET
			clicks = clicks + 1,
			last_used = excluded.last_used`,
		actionID, now.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record usage for %q: %w", actionID, err)
	}

	st := s.cache[actionID]
	st.Clicks++
	st.LastUsed = &now
	s.cache[actionID] = st

	logging.Get(logging.CategoryUsage).Debug("usage recorded",
		zap.String("action_id", actionID),
		zap.Int("clicks", st.Clicks))
	return nil
}

// Reset wipes all statistics. This is the only decrement path and is
// always user-initiated.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM action_stats`); err != nil {
		return fmt.Errorf("failed to reset usage stats: %w", err)
	}
	s.cache = make(action.UsageStats)
	logging.Get(logging.CategoryUsage).Info("usage stats reset")
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
