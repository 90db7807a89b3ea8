package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Compile-time interface check.
var _ Source = (*SQLite)(nil)

// SQLite is a Source backed by a SQLite table of credentials. Rows are ordered
// by name within a pool.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite database at the given path and
// initialises the schema. Use ":memory:" for an in-memory database.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("keycycle/source: open sqlite: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS keycycle_keys (
			pool  TEXT NOT NULL,
			name  TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (pool, name)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("keycycle/source: create table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Put stores or replaces the credential called name in pool.
func (s *SQLite) Put(ctx context.Context, pool, name, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO keycycle_keys (pool, name, value) VALUES (?, ?, ?)
		 ON CONFLICT (pool, name) DO UPDATE SET value = excluded.value`,
		pool, name, value,
	)
	if err != nil {
		return fmt.Errorf("keycycle/source: put %s/%s: %w", pool, name, err)
	}
	return nil
}

// Delete removes every credential of pool.
func (s *SQLite) Delete(ctx context.Context, pool string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM keycycle_keys WHERE pool = ?`, pool)
	return err
}

// Keys returns the pool's non-empty credentials ordered by name.
func (s *SQLite) Keys(ctx context.Context, pool string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM keycycle_keys WHERE pool = ? AND value <> '' ORDER BY name`, pool,
	)
	if err != nil {
		return nil, fmt.Errorf("keycycle/source: query %s: %w", pool, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("keycycle/source: scan %s: %w", pool, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Close closes the underlying SQLite database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
