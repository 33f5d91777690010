// Package history records completed runs in a local SQLite ledger.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoRuns indicates the ledger holds no recorded runs.
var ErrNoRuns = errors.New("no recorded runs")

// Run is one recorded execution.
type Run struct {
	ID        int64
	Path      string // source path, or "-" for inline source
	Hash      string // hex SHA-256 of the source text
	Value     int64  // final value; meaningful only when HasValue
	HasValue  bool
	Trap      string // trap diagnostic, empty when the run completed
	Emitted   int    // output lines written during the run
	StartedAt time.Time
}

// Store is a SQLite-backed run ledger.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the ledger at the given path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		hash TEXT NOT NULL,
		value INTEGER NOT NULL,
		has_value INTEGER NOT NULL,
		trap TEXT NOT NULL,
		emitted INTEGER NOT NULL,
		started_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs table: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// DefaultPath returns the ledger location used when nothing is configured:
// ~/.stax/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(home, ".stax", "history.db"), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record appends a run to the ledger.
func (s *Store) Record(r Run) error {
	hasValue := 0
	if r.HasValue {
		hasValue = 1
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (path, hash, value, has_value, trap, emitted, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Path, r.Hash, r.Value, hasValue, r.Trap, r.Emitted, r.StartedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Recent returns up to n runs, newest first. Returns ErrNoRuns when the
// ledger is empty.
func (s *Store) Recent(n int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, path, hash, value, has_value, trap, emitted, started_at
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var hasValue int
		var startedAt int64
		if err := rows.Scan(&r.ID, &r.Path, &r.Hash, &r.Value, &hasValue, &r.Trap, &r.Emitted, &startedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.HasValue = hasValue != 0
		r.StartedAt = time.Unix(startedAt, 0)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	return runs, nil
}
