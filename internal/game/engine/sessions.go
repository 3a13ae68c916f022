package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/game/session"
)

// Load makes the stored session id the active one.
//
// Postcondition: returns session.ErrNotFound for unknown ids; the previous
// session is replaced only on success.
func (e *Engine) Load(ctx context.Context, id string) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()
	blob, err := e.store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("loading session %s: %w", id, err)
	}
	st, err := session.Decode(blob)
	if err != nil {
		return fmt.Errorf("decoding session %s: %w", id, err)
	}
	e.st = st
	e.logger.Info("session loaded", zap.String("session", st.ID), zap.String("phase", string(st.Phase)))
	return nil
}

// List returns the stored sessions, newest first.
func (e *Engine) List(ctx context.Context) ([]session.Summary, error) {
	return e.store.List(ctx)
}

// Delete removes a stored session. Deleting the active session unloads it.
func (e *Engine) Delete(ctx context.Context, id string) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()
	if err := e.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	if e.st != nil && e.st.ID == id {
		e.st = nil
	}
	return nil
}

// Restart unloads the active session, returning the engine to setup. The
// stored copy is kept.
func (e *Engine) Restart() error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()
	e.st = nil
	return nil
}

// SessionID returns the id of the active session, or "".
func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st == nil {
		return ""
	}
	return e.st.ID
}
