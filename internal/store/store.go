package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades a journal by one user_version step. Steps only add
// indexes or columns; schema.sql always describes version 0.
type migration struct {
	version int
	name    string
	stmt    string
}

var migrations = []migration{
	{1, "index failures by function", `CREATE INDEX IF NOT EXISTS idx_run_failures_function ON run_failures(function)`},
	{2, "index runs by direction and status", `CREATE INDEX IF NOT EXISTS idx_runs_filter ON runs(direction, status, started_at)`},
}

var currentSchemaVersion = migrations[len(migrations)-1].version

// journalPragmas are applied to the single journal connection. The values
// are what the pragmas read back as.
var journalPragmas = []struct{ name, value string }{
	{"journal_mode", "wal"},
	{"synchronous", "1"}, // NORMAL
	{"busy_timeout", "5000"},
	{"foreign_keys", "1"},
}

// Store is the SQLite run journal.
type Store struct {
	db *sql.DB
}

// Open opens the journal at path, creating it when missing, and upgrades
// its schema. ":memory:" gives a private in-memory journal.
//
// The store holds one connection: writers are serialized and an in-memory
// journal stays a single database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := setup(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func setup(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return err
	}
	for _, p := range journalPragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return migrate(db)
}

// migrate applies every migration newer than the journal's user_version,
// each in its own transaction.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		// PRAGMA does not take bound parameters
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: set user_version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}
	return nil
}

// Close closes the journal. Closing a closed or zero Store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
