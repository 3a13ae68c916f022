// Package memory provides an in-process session.Store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cory-johannsen/taleweaver/internal/game/session"
)

type entry struct {
	name  string
	blob  []byte
	saved time.Time
}

// Store keeps snapshot blobs in a map. All methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]entry), now: time.Now}
}

// Save inserts or replaces the blob for id.
//
// Precondition: id must be non-empty.
// Postcondition: Load(id) returns a copy of blob.
func (s *Store) Save(_ context.Context, id, name string, blob []byte) error {
	if id == "" {
		return fmt.Errorf("memory store: session id must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{name: name, blob: append([]byte(nil), blob...), saved: s.now()}
	return nil
}

// Load returns a copy of the blob for id, or session.ErrNotFound.
func (s *Store) Load(_ context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	return append([]byte(nil), e.blob...), nil
}

// List returns every session, newest first.
func (s *Store) List(_ context.Context) ([]session.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]session.Summary, 0, len(s.entries))
	for id, e := range s.entries {
		out = append(out, session.Summary{ID: id, Name: e.name, Timestamp: e.saved})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Delete removes id. Unknown ids are ignored.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
