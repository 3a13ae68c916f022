// Package sqlite provides a single-file session.Store on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/storage/sqlite/migrations"
)

const pragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

// Store persists session snapshots in a SQLite file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the SQLite file at path and applies the
// embedded migrations.
//
// Precondition: path must be non-empty.
// Postcondition: Returns a ready Store or a non-nil error; on error no handle leaks.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path must not be empty")
	}
	db, err := sql.Open("sqlite", filepath.Clean(path)+pragmas)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts the blob for id.
//
// Precondition: id must be non-empty.
func (s *Store) Save(ctx context.Context, id, name string, blob []byte) error {
	if id == "" {
		return errors.New("session id must not be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, name, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		id, name, blob, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", id, err)
	}
	return nil
}

// Load returns the blob for id, or session.ErrNotFound.
func (s *Store) Load(ctx context.Context, id string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM sessions WHERE id = ?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	return blob, nil
}

// List returns every session, newest first.
func (s *Store) List(ctx context.Context) ([]session.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, updated_at FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []session.Summary
	for rows.Next() {
		var (
			sum    session.Summary
			millis int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &millis); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sum.Timestamp = time.UnixMilli(millis).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}
