// Package db wraps read-only access to the club's historical match database
// (SQLite) and a small separate store for conversation logs. Only SELECT
// statements are ever issued against the match data; every call takes a
// context and uses a short-lived connection from the pool.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// ErrExecution marks runtime failures of syntactically valid SQL (bad
// references, connectivity loss). These are terminal for a turn; the fix
// loop never retries them.
var ErrExecution = errors.New("query execution failed")

// DB provides read-only query access to the match database.
type DB struct {
	sql  *sql.DB
	path string
}

// Open opens the match database at path. The file must already exist; this
// component never creates or mutates the dataset.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("db: database path not configured")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("db: stat database: %w", err)
	}
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db: open database: %w", err)
	}
	return &DB{sql: handle, path: path}, nil
}

// NewFromHandle wraps an existing database handle. Used by tests.
func NewFromHandle(handle *sql.DB) *DB {
	return &DB{sql: handle}
}

// Close releases the connection pool.
func (d *DB) Close() error {
	return d.sql.Close()
}
