package flags

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const flagsSchema = `
CREATE TABLE IF NOT EXISTS flags (
	key        TEXT PRIMARY KEY,
	value      INTEGER NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);`

// SQLiteStore keeps the flags in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create flag dir: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open flag db: %w", err)
	}
	if _, err := db.Exec(flagsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate flag db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) (bool, error) {
	var v bool
	err := s.db.QueryRow(`SELECT value FROM flags WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get flag %s: %w", key, err)
	}
	return v, nil
}

func (s *SQLiteStore) Set(key string, value bool) error {
	_, err := s.db.Exec(
		`INSERT INTO flags (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set flag %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM flags WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete flag %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
