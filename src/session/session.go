// Package session persists the client's login flag and the name of the most
// recently processed file. State lives in a small SQLite key/value table so it
// survives between invocations, and every reader/writer goes through an
// explicit Store instead of ambient globals.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver.
)

const (
	keyAuthenticated = "authenticated"
	keyProcessedFile = "processed_file"
)

// Store wraps SQLite access for session state.
type Store struct {
	db *sql.DB
}

// Open opens or creates the session database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS session_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`)
	return err
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_state WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("session set %s: %w", key, err)
	}
	return nil
}

// Authenticated reports whether the login flag is set.
func (s *Store) Authenticated(ctx context.Context) (bool, error) {
	v, err := s.get(ctx, keyAuthenticated)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// SetAuthenticated persists the login flag.
func (s *Store) SetAuthenticated(ctx context.Context, on bool) error {
	if !on {
		_, err := s.db.ExecContext(ctx, `DELETE FROM session_state WHERE key = ?`, keyAuthenticated)
		return err
	}
	return s.set(ctx, keyAuthenticated, "true")
}

// ProcessedFile returns the last successfully processed file name, or "".
func (s *Store) ProcessedFile(ctx context.Context) (string, error) {
	return s.get(ctx, keyProcessedFile)
}

// SetProcessedFile records the name of the file the prediction endpoint last
// accepted, for later correlation and display.
func (s *Store) SetProcessedFile(ctx context.Context, name string) error {
	return s.set(ctx, keyProcessedFile, name)
}

// Clear drops all session state (logout, or arrival at the login form).
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_state`)
	return err
}
