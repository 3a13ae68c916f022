package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/taleweaver/internal/game/session"
)

// SessionStore persists session snapshots in the sessions table.
type SessionStore struct {
	db *pgxpool.Pool
}

// NewSessionStore creates a SessionStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

// Save upserts the snapshot blob for id.
//
// Precondition: id must be non-empty; blob must be valid JSON.
// Postcondition: updated_at is set to the database clock.
func (s *SessionStore) Save(ctx context.Context, id, name string, blob []byte) error {
	if id == "" {
		return errors.New("session id must not be empty")
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO sessions (id, name, data, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, data = EXCLUDED.data, updated_at = NOW()`,
		id, name, blob,
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", id, err)
	}
	return nil
}

// Load returns the snapshot blob for id.
//
// Postcondition: Returns session.ErrNotFound for an unknown id.
func (s *SessionStore) Load(ctx context.Context, id string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow(ctx, `SELECT data FROM sessions WHERE id = $1`, id).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", session.ErrNotFound, id)
		}
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	return blob, nil
}

// List returns every stored session, newest first.
func (s *SessionStore) List(ctx context.Context) ([]session.Summary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, updated_at FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []session.Summary
	for rows.Next() {
		var sum session.Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes id. Unknown ids are ignored.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}
