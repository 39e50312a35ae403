// Package history persists prompt history (search patterns, line numbers)
// across runs in a small SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultLimit is the number of entries kept per kind.
const DefaultLimit = 500

// Store is a SQLite-backed history. It is safe for concurrent use.
type Store struct {
	db    *sql.DB
	limit int
	now   func() time.Time
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("history: %s: %w", p, err)
		}
	}
	s := &Store{db: db, limit: DefaultLimit, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			entry TEXT NOT NULL,
			used_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS entries_kind_id ON entries(kind, id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("history: migrate: %w", err)
		}
	}
	return nil
}

// SetLimit changes how many entries are kept per kind.
func (s *Store) SetLimit(n int) {
	if n > 0 {
		s.limit = n
	}
}

// Load returns the entries of kind, oldest first.
func (s *Store) Load(ctx context.Context, kind string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry FROM (
			SELECT id, entry FROM entries WHERE kind = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, kind, s.limit)
	if err != nil {
		return nil, fmt.Errorf("history: load %s: %w", kind, err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: load %s: %w", kind, err)
	}
	return out, nil
}

// Append records entry as the newest of kind. An existing equal entry moves
// to the end instead of repeating.
func (s *Store) Append(ctx context.Context, kind, entry string) error {
	if entry == "" {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE kind = ? AND entry = ?`, kind, entry); err != nil {
		return fmt.Errorf("history: dedupe: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entries(kind, entry, used_at_unixms) VALUES(?, ?, ?)`,
		kind, entry, s.now().UnixMilli()); err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM entries WHERE kind = ? AND id NOT IN (
			SELECT id FROM entries WHERE kind = ? ORDER BY id DESC LIMIT ?
		)`, kind, kind, s.limit); err != nil {
		return fmt.Errorf("history: trim: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
