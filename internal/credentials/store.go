// Package credentials persists the bearer token the external login flow
// hands us. The token lives in a small sqlite table in the app data
// directory; the FREIGHT_TOKEN environment variable overrides it for
// scripted use.
package credentials

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// EnvToken is the environment override for the stored token.
const EnvToken = "FREIGHT_TOKEN"

// Store reads and writes the bearer token.
type Store struct {
	dbPath string
}

// NewStore creates a store backed by the sqlite file at dbPath.
func NewStore(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS credentials (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating credentials table: %w", err)
	}
	return nil
}

// Token returns the stored bearer token, or "" when none is stored.
// An empty token is not an error here; callers treat it as unauthorized.
func (s *Store) Token() (string, error) {
	if env := os.Getenv(EnvToken); env != "" {
		return env, nil
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := s.ensureSchema(db); err != nil {
		return "", err
	}

	var token string
	err = db.QueryRow("SELECT value FROM credentials WHERE name = 'token'").Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return token, nil
}

// SaveToken stores or replaces the bearer token.
func (s *Store) SaveToken(token string) error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := s.ensureSchema(db); err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO credentials (name, value, updated_at)
		VALUES ('token', ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, token, time.Now())
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// Clear removes the stored token.
func (s *Store) Clear() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := s.ensureSchema(db); err != nil {
		return err
	}

	if _, err := db.Exec("DELETE FROM credentials WHERE name = 'token'"); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	return nil
}
