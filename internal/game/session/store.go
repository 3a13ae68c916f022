package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a Store for an unknown session id.
var ErrNotFound = errors.New("session not found")

// Summary is one entry of a session listing.
type Summary struct {
	ID        string
	Name      string
	Timestamp time.Time
}

// Store persists snapshot blobs keyed by session id.
type Store interface {
	// Save inserts or replaces the blob for id.
	Save(ctx context.Context, id, name string, blob []byte) error
	// Load returns the blob for id, or ErrNotFound.
	Load(ctx context.Context, id string) ([]byte, error)
	// List returns every session, newest first.
	List(ctx context.Context) ([]Summary, error)
	// Delete removes id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
