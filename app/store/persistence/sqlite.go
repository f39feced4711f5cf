package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// SQLite is a storage slot kept as a single row in a slots table. Multiple
// named slots can share one database file.
type SQLite struct {
	db   *sqlx.DB
	name string
}

// NewSQLite opens (or creates) the database and prepares the slots table
func NewSQLite(dbPath, name string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to set WAL mode: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS slots (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to create slots table: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to create slots table: %w", err)
	}

	return &SQLite{db: db, name: name}, nil
}

// Load reads the slot payload, ok=false when the row does not exist
func (s *SQLite) Load() (data []byte, ok bool, err error) {
	err = s.db.Get(&data, "SELECT payload FROM slots WHERE name = ?", s.name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query slot %q: %w", s.name, err)
	}
	return data, true, nil
}

// Save upserts the slot payload
func (s *SQLite) Save(data []byte) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO slots (name, payload, updated_at) VALUES (?, ?, ?)`,
		s.name, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save slot %q: %w", s.name, err)
	}
	return nil
}

// Clear deletes the slot row, clearing an absent slot is fine
func (s *SQLite) Clear() error {
	if _, err := s.db.Exec("DELETE FROM slots WHERE name = ?", s.name); err != nil {
		return fmt.Errorf("failed to clear slot %q: %w", s.name, err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) String() string {
	return fmt.Sprintf("sqlite slot %q", s.name)
}
