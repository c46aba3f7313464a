// FILE: store.go
// Package resultstore provides optional SQLite persistence for parameter-
// sweep runs. The backtest core never touches a database (no file I/O in
// the core; callers persist results externally); this package exists for
// CLI callers (cmd/backtestlab sweep) that want to keep a history of past
// sweeps on disk.
package resultstore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite connection holding sweep run history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
// An empty path opens an in-memory database, useful for tests.
func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open resultstore: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping resultstore: %w", err)
	}

	s := &Store{db: sqlDB}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate resultstore: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

		CREATE TABLE IF NOT EXISTS sweep_runs (
			id           TEXT PRIMARY KEY,
			started_at   TEXT NOT NULL,
			objective    TEXT NOT NULL,
			point_count  INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sweep_points (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES sweep_runs(id),
			task_id     TEXT NOT NULL,
			parameters  TEXT NOT NULL,
			metrics     TEXT NOT NULL,
			objective   REAL NOT NULL,
			success     INTEGER NOT NULL,
			error       TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_sweep_points_run ON sweep_points(run_id);
		CREATE INDEX IF NOT EXISTS idx_sweep_points_objective ON sweep_points(run_id, objective DESC);

		INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`)
	return err
}
