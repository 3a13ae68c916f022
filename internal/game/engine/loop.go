package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/dispatch"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/game/tool"
	"github.com/cory-johannsen/taleweaver/internal/generator"
)

// Hidden prompts injected by the engine.
const (
	CombatEndedPrompt = "[SYSTEM] Le combat est terminé. Décris la scène et les conséquences."
	PlayerDiedPrompt  = "[SYSTEM] Le joueur est mort. Décris sa fin tragique et appelle l'outil `endGame`."
	StartupPrompt     = "[SYSTEM] La partie commence. Crée le premier lieu où le personnage se trouve, en utilisant l'outil updateMap. Déplace ensuite le joueur dans ce lieu avec updatePlayerPosition. Enfin, décris la scène."
)

// Notices.
const (
	LoopNotice          = "L'IA semble être bloquée dans une boucle d'actions. Essayez de reformuler."
	GeneratorErrorFmt   = "Erreur de l'IA: %s"
	MemoryOptimized     = "Mémoire de l'aventure optimisée avec succès !"
	MemoryOptimizeError = "L'optimisation de la mémoire a échoué."
	ErrorPrefix         = "[ERREUR] "
	DeathReasonFmt      = "%s a succombé à ses blessures."
)

const systemTag = "[SYSTEM]"

// converse appends a user turn and runs the generation loop.
//
// Precondition: e.mu is held; st is the active session.
func (e *Engine) converse(ctx context.Context, st *session.State, text string, hidden bool) {
	ctx, span := e.tracer.Start(ctx, "engine.turn", trace.WithAttributes(
		attribute.String("session.id", st.ID),
		attribute.Bool("hidden", hidden),
		attribute.String("mode", string(st.Combat.Mode)),
	))
	defer span.End()

	st.History.Append(history.UserTurn(text, hidden))
	if !hidden {
		st.AddMessage(history.User, text, strings.HasPrefix(text, systemTag))
	}
	e.run(ctx, st)
}

// run drives generator round trips until the model stops calling tools, the
// depth bound is hit, the generator fails, or the game ends.
func (e *Engine) run(ctx context.Context, st *session.State) {
	depth := 0
	for {
		if depth >= e.cfg.MaxToolDepth {
			e.logger.Warn("tool depth limit reached", zap.String("session", st.ID), zap.Int("depth", depth))
			e.notice(dispatch.Error, LoopNotice)
			st.DropEmptyPlaceholder()
			if st.Character.IsDead() && !st.IsOver() {
				st.EndGame(fmt.Sprintf(DeathReasonFmt, st.Character.Name))
				e.notice(dispatch.Error, st.GameOverReason)
			}
			st.Combat.TurnOwner = combat.PlayerTurn
			e.save(ctx, st)
			return
		}
		depth++

		e.placeholder(st)
		text, calls, err := e.stream(ctx, st, depth)
		if err != nil {
			e.logger.Error("generator round trip failed", zap.String("session", st.ID), zap.Int("depth", depth), zap.Error(err))
			st.ReplaceLastModel(ErrorPrefix + err.Error())
			e.notice(dispatch.Error, fmt.Sprintf(GeneratorErrorFmt, err.Error()))
			st.Combat.TurnOwner = combat.PlayerTurn
			e.save(ctx, st)
			return
		}
		st.History.Append(history.ModelTurn(text, calls))
		if len(calls) == 0 {
			e.finalize(ctx, st)
			return
		}

		fx := e.apply(ctx, st, calls)
		if st.IsOver() {
			e.notice(dispatch.Error, st.GameOverReason)
			st.DropEmptyPlaceholder()
			st.Combat.TurnOwner = combat.PlayerTurn
			e.save(ctx, st)
			return
		}
		if fx.CombatEnded {
			st.History.Append(history.UserTurn(CombatEndedPrompt, true))
			depth = 0
		}
		if fx.PlayerDied {
			st.History.Append(history.UserTurn(PlayerDiedPrompt, true))
			// the epilogue always gets a round trip
			depth = min(depth, e.cfg.MaxToolDepth-1)
		}
	}
}

// placeholder makes sure the transcript ends with a model message to stream into.
func (e *Engine) placeholder(st *session.State) {
	if m := st.LastMessage(); m != nil && m.Role == history.Model && m.Content == "" && !m.ImageIsLoading {
		return
	}
	st.AddMessage(history.Model, "", false)
}

// stream runs one generator round trip, forwarding narration as it arrives.
func (e *Engine) stream(ctx context.Context, st *session.State, depth int) (string, []tool.Call, error) {
	ctx, span := e.tracer.Start(ctx, "generator.stream", trace.WithAttributes(attribute.Int("depth", depth)))
	defer span.End()
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	req := generator.Request{
		History:  st.History.Turns(),
		System:   SystemPrompt(st),
		Sampling: st.Sampling,
		Tools:    tool.ForMode(st.Combat.Mode),
	}
	var text strings.Builder
	var calls []tool.Call
	err := e.gen.StreamTurn(ctx, req, func(c generator.Chunk) {
		if c.Text != "" {
			text.WriteString(c.Text)
			st.AppendToLastModel(c.Text)
			e.listener.OnNarration(c.Text)
		}
		calls = append(calls, c.Calls...)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", nil, err
	}
	span.SetAttributes(attribute.Int("tool_calls", len(calls)), attribute.Int("text_len", text.Len()))
	return text.String(), calls, nil
}

// apply dispatches a batch of calls in order and records their results as
// one turn, then surfaces the batch's side effects.
func (e *Engine) apply(ctx context.Context, st *session.State, calls []tool.Call) *dispatch.Effects {
	fx := &dispatch.Effects{}
	visuals := len(st.Combat.Visuals)
	results := make([]tool.Result, 0, len(calls))
	for _, c := range calls {
		results = append(results, e.dispatcher.Dispatch(ctx, st, fx, c))
	}
	st.History.Append(history.ResultsTurn(results))

	for _, n := range fx.Notices {
		e.listener.OnNotice(n)
	}
	if visuals <= len(st.Combat.Visuals) {
		for _, v := range st.Combat.Visuals[visuals:] {
			e.listener.OnVisual(v)
		}
	}
	for _, req := range fx.Images {
		e.illustrate(ctx, st, req)
	}
	return fx
}

// finalize closes a turn that ended without tool calls.
func (e *Engine) finalize(ctx context.Context, st *session.State) {
	st.Combat.TurnOwner = combat.PlayerTurn
	st.DropEmptyPlaceholder()
	e.save(ctx, st)
	if !st.Combat.InCombat() {
		e.compact(ctx, st)
	}
}

// compact runs the summarization policy and saves when history changed.
func (e *Engine) compact(ctx context.Context, st *session.State) {
	out, err := e.summarizer.Maybe(ctx, st.History, snapshotOf(st))
	switch {
	case errors.Is(err, history.ErrTooShort):
		return
	case err != nil:
		e.logger.Warn("history compaction failed", zap.String("session", st.ID), zap.Error(err))
		e.notice(dispatch.Error, MemoryOptimizeError)
		return
	case out.Summarized:
		e.notice(dispatch.Info, MemoryOptimized)
		e.save(ctx, st)
	}
}

func snapshotOf(st *session.State) history.Snapshot {
	c := st.Character
	snap := history.Snapshot{
		CharacterName: c.Name,
		HP:            c.CurrentHP,
		Money:         c.Money,
		Time:          string(st.World.Time),
		Weather:       string(st.World.Weather),
	}
	for _, comp := range c.Companions {
		snap.Companions = append(snap.Companions, comp.Name)
	}
	for _, l := range st.World.Locations {
		snap.Locations = append(snap.Locations, l.Name)
	}
	for _, it := range c.Inventory {
		snap.Inventory = append(snap.Inventory, fmt.Sprintf("%s (x%d)", it.Name, it.Quantity))
	}
	return snap
}
