package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/game/dispatch"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
)

// ImageFailedNotice is posted when an illustration cannot be produced.
const ImageFailedNotice = "La génération d'image a échoué."

// illustrate starts req in the background. The completion patches st under
// the state lock, unless another session was loaded meanwhile.
//
// Precondition: e.mu is held.
func (e *Engine) illustrate(ctx context.Context, st *session.State, req dispatch.ImageRequest) {
	if e.images == nil {
		e.clearLoading(st, req)
		return
	}
	ctx = context.WithoutCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, span := e.tracer.Start(ctx, "image.generate")
		url, err := e.images.GenerateImage(ctx, req.Prompt)
		span.End()

		e.mu.Lock()
		defer e.mu.Unlock()
		if e.st != st {
			return
		}
		if err != nil {
			e.logger.Warn("image generation failed", zap.String("session", st.ID), zap.Error(err))
			e.clearLoading(st, req)
			e.notice(dispatch.Error, ImageFailedNotice)
			return
		}
		switch req.Kind {
		case dispatch.CombatBackground:
			if !st.Combat.InCombat() {
				return
			}
			st.Combat.BackgroundURL = url
			e.listener.OnImage("", url)
		case dispatch.SceneImage:
			m := st.Message(req.MessageID)
			if m == nil {
				return
			}
			m.ImageURL = url
			m.ImageIsLoading = false
			e.listener.OnImage(m.ID, url)
		}
		e.save(ctx, st)
	}()
}

func (e *Engine) clearLoading(st *session.State, req dispatch.ImageRequest) {
	if req.Kind != dispatch.SceneImage {
		return
	}
	if m := st.Message(req.MessageID); m != nil {
		m.ImageIsLoading = false
	}
}

// IllustrateMessage requests an illustration of an existing transcript message.
//
// Postcondition: returns ErrUnknownMessage when messageID does not exist; the
// message is marked loading until the image arrives.
func (e *Engine) IllustrateMessage(ctx context.Context, messageID string) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()
	if e.st == nil {
		return ErrNoSession
	}
	m := e.st.Message(messageID)
	if m == nil || m.Content == "" {
		return ErrUnknownMessage
	}
	m.ImageIsLoading = true
	e.illustrate(ctx, e.st, dispatch.ImageRequest{
		Kind:      dispatch.SceneImage,
		MessageID: m.ID,
		Prompt:    dispatch.ScenePromptPrefix + m.Content,
	})
	return nil
}
