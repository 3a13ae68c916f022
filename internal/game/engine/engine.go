// Package engine runs the game loop: it sends player input to the generator,
// streams narration, applies tool calls through the dispatch table, chains
// follow-up generations, and persists the session after every turn.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/config"
	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/dice"
	"github.com/cory-johannsen/taleweaver/internal/game/dispatch"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/generator"
)

var (
	// ErrBusy is returned while another turn is being processed.
	ErrBusy = errors.New("engine is busy")
	// ErrSkillCheckPending is returned for player input while a roll awaits resolution.
	ErrSkillCheckPending = errors.New("a skill check is pending")
	// ErrNoSession is returned when no adventure is loaded.
	ErrNoSession = errors.New("no active session")
	// ErrGameOver is returned for input after the game ended.
	ErrGameOver = errors.New("game is over")
	// ErrNoPendingCheck is returned by ResolveSkillCheck without a pending roll.
	ErrNoPendingCheck = errors.New("no pending skill check")
	// ErrTargetRequired is returned for a targeted action without a valid target.
	ErrTargetRequired = errors.New("action requires a target")
	// ErrUnknownAction is returned for an action id the player does not have.
	ErrUnknownAction = errors.New("unknown combat action")
	// ErrInsufficientPoints is returned when spending more stat points than available.
	ErrInsufficientPoints = character.ErrInsufficientPoints
	// ErrUnknownItem is returned for an item the character does not carry.
	ErrUnknownItem = errors.New("item not in inventory")
	// ErrUnknownLocation is returned for travel to an undiscovered location.
	ErrUnknownLocation = errors.New("unknown location")
	// ErrUnknownMessage is returned for a transcript message id that does not exist.
	ErrUnknownMessage = errors.New("unknown message")
)

// DefaultMaxToolDepth is the number of generator round trips per user turn.
const DefaultMaxToolDepth = 5

// Config tunes the engine.
type Config struct {
	// MaxToolDepth bounds the generator calls made for one top-level turn.
	MaxToolDepth int
	// Policy is the history compaction policy.
	Policy history.Policy
	// RepairPolicy fixes generated creation stats.
	RepairPolicy stat.RepairPolicy
	// Sampling is applied to new sessions.
	Sampling session.Sampling
	// Timeout bounds each generator round trip; zero means none.
	Timeout time.Duration
}

// DefaultConfig returns the stock engine settings.
func DefaultConfig() Config {
	return Config{
		MaxToolDepth: DefaultMaxToolDepth,
		Policy:       history.DefaultPolicy,
		RepairPolicy: stat.FloorThenLog,
		Sampling:     session.DefaultSampling,
	}
}

// ConfigFrom derives engine settings from the application configuration.
//
// Precondition: cfg must have passed validation.
func ConfigFrom(cfg config.Config) (Config, error) {
	policy, err := stat.ParseRepairPolicy(cfg.Engine.StatRepairPolicy)
	if err != nil {
		return Config{}, err
	}
	return Config{
		MaxToolDepth: cfg.Engine.MaxToolDepth,
		Policy: history.Policy{
			TriggerTokens: cfg.Engine.SummaryTriggerTokens,
			KeepRecent:    cfg.Engine.KeepRecentTurns,
			MinSpan:       cfg.Engine.MinSummarySpan,
		},
		RepairPolicy: policy,
		Sampling: session.Sampling{
			Temperature:     cfg.Generator.Temperature,
			TopP:            cfg.Generator.TopP,
			TopK:            cfg.Generator.TopK,
			MaxOutputTokens: cfg.Generator.MaxOutputTokens,
		},
		Timeout: cfg.Generator.Timeout,
	}, nil
}

// Engine owns one active session and serializes every operation on it.
//
// Invariant: at most one turn runs at a time; mu guards st.
type Engine struct {
	gen        generator.Generator
	images     generator.ImageGenerator
	store      session.Store
	dispatcher *dispatch.Dispatcher
	roller     *dice.Roller
	summarizer *history.Summarizer
	listener   Listener
	cfg        Config
	logger     *zap.Logger
	tracer     trace.Tracer
	now        func() time.Time

	busy atomic.Bool
	mu   sync.Mutex
	st   *session.State
	wg   sync.WaitGroup
}

// New creates an Engine with no session loaded.
//
// Precondition: gen, store, dispatcher, roller, and logger must be non-nil.
// images may be nil to disable illustrations; listener may be nil.
func New(
	gen generator.Generator,
	images generator.ImageGenerator,
	store session.Store,
	dispatcher *dispatch.Dispatcher,
	roller *dice.Roller,
	listener Listener,
	cfg Config,
	logger *zap.Logger,
) *Engine {
	if cfg.MaxToolDepth <= 0 {
		cfg.MaxToolDepth = DefaultMaxToolDepth
	}
	if listener == nil {
		listener = Nop{}
	}
	return &Engine{
		gen:        gen,
		images:     images,
		store:      store,
		dispatcher: dispatcher,
		roller:     roller,
		summarizer: history.NewSummarizer(gen, cfg.Policy, logger),
		listener:   listener,
		cfg:        cfg,
		logger:     logger,
		tracer:     otel.Tracer("github.com/cory-johannsen/taleweaver/internal/game/engine"),
		now:        time.Now,
	}
}

// acquire takes the busy guard and the state lock. The returned func
// releases both.
func (e *Engine) acquire() (func(), error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		e.busy.Store(false)
	}, nil
}

// Busy reports whether a turn is in progress.
func (e *Engine) Busy() bool {
	return e.busy.Load()
}

// View calls fn with the active session under the state lock.
//
// Postcondition: returns ErrNoSession when no session is loaded; fn must not
// retain st.
func (e *Engine) View(fn func(st *session.State)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st == nil {
		return ErrNoSession
	}
	fn(e.st)
	return nil
}

// Wait blocks until every outstanding image request has completed.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// playing returns the active session, or an error when it cannot take input.
func (e *Engine) playing() (*session.State, error) {
	st := e.st
	if st == nil || st.Character == nil {
		return nil, ErrNoSession
	}
	if st.IsOver() {
		return nil, fmt.Errorf("%w: %s", ErrGameOver, st.GameOverReason)
	}
	return st, nil
}

// save persists st. Failures are logged only.
func (e *Engine) save(ctx context.Context, st *session.State) {
	if st.Character == nil {
		return
	}
	blob, err := session.Encode(st, e.now())
	if err != nil {
		e.logger.Error("encoding session", zap.String("session", st.ID), zap.Error(err))
		return
	}
	if err := e.store.Save(ctx, st.ID, st.Name(), blob); err != nil {
		e.logger.Error("saving session", zap.String("session", st.ID), zap.Error(err))
		return
	}
	e.logger.Debug("session saved", zap.String("session", st.ID), zap.Int("bytes", len(blob)))
}

func (e *Engine) notice(level dispatch.Level, text string) {
	e.listener.OnNotice(dispatch.Notice{Level: level, Text: text})
}
