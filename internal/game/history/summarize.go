package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SummaryMarker prefixes every summary turn so later passes can find it.
const SummaryMarker = "[RÉSUMÉ]"

// ErrTooShort is returned by Maybe when compaction is not worth running.
var ErrTooShort = errors.New("history: not enough new turns to summarize")

// Policy tunes when and how much history is compacted.
type Policy struct {
	// TriggerTokens is the size above which compaction runs.
	TriggerTokens int
	// KeepRecent is the number of trailing turns always kept verbatim.
	KeepRecent int
	// MinSpan is the smallest number of new turns worth summarizing.
	MinSpan int
}

// DefaultPolicy is the stock compaction policy.
var DefaultPolicy = Policy{TriggerTokens: 4000, KeepRecent: 6, MinSpan: 10}

// Snapshot is the compact game state sent with a summarization request.
type Snapshot struct {
	CharacterName string
	HP            int
	Money         int
	Companions    []string
	Locations     []string
	Time          string
	Weather       string
	Inventory     []string
}

// Backend counts tokens and writes summaries. generator.Generator satisfies it.
type Backend interface {
	CountTokens(ctx context.Context, turns []Turn) (int, error)
	Summarize(ctx context.Context, span []Turn, snap Snapshot) (string, error)
}

// Outcome reports what a Maybe call did.
type Outcome struct {
	Tokens     int
	Estimated  bool
	Summarized bool
	// Span is the number of turns replaced by the summary.
	Span int
}

// Summarizer applies a Policy to a History.
type Summarizer struct {
	backend Backend
	policy  Policy
	logger  *zap.Logger
}

// NewSummarizer creates a Summarizer.
//
// Precondition: backend and logger must be non-nil; policy.KeepRecent >= 0.
func NewSummarizer(backend Backend, policy Policy, logger *zap.Logger) *Summarizer {
	return &Summarizer{backend: backend, policy: policy, logger: logger}
}

// Size returns the token size of turns, preferring the backend's exact count
// and falling back to Estimate on error.
func (s *Summarizer) Size(ctx context.Context, turns []Turn) (int, bool) {
	n, err := s.backend.CountTokens(ctx, turns)
	if err != nil {
		s.logger.Warn("token count failed, using estimate", zap.Error(err))
		return Estimate(turns), true
	}
	return n, false
}

// Maybe compacts h when it exceeds the policy threshold. The first turn and
// at least the KeepRecent last turns are preserved, never splitting a call
// from its results; the turns after any existing
// summary in between are summarized and appended to that summary.
//
// Postcondition: on error h is unchanged. ErrTooShort means nothing was
// worth summarizing; other errors come from the backend.
func (s *Summarizer) Maybe(ctx context.Context, h *History, snap Snapshot) (Outcome, error) {
	turns := h.Turns()
	var out Outcome
	out.Tokens, out.Estimated = s.Size(ctx, turns)
	if out.Tokens <= s.policy.TriggerTokens || len(turns) <= s.policy.KeepRecent+2 {
		return out, nil
	}

	end := len(turns) - s.policy.KeepRecent
	// A results turn stays with the model turn whose calls it answers.
	for end > 1 && end < len(turns) && turns[end].Role == Tool {
		end--
	}
	eligible := turns[1:end]
	oldSummary := ""
	start := 0
	for i, t := range eligible {
		if text := t.Text(); strings.HasPrefix(text, SummaryMarker) {
			oldSummary = text
			start = i + 1
			break
		}
	}
	span := eligible[start:]
	if len(span) < s.policy.MinSpan {
		return out, ErrTooShort
	}

	text, err := s.backend.Summarize(ctx, span, snap)
	if err != nil {
		return out, fmt.Errorf("summarizing %d turns: %w", len(span), err)
	}
	text = strings.TrimSpace(text)
	if oldSummary != "" {
		text = oldSummary + "\n\n" + text
	} else {
		text = SummaryMarker + " " + text
	}
	summary := Turn{ID: uuid.NewString(), Role: Model, Parts: []Part{{Text: text}}}
	h.ReplaceMiddle(1, end, summary)
	out.Summarized = true
	out.Span = len(eligible)
	s.logger.Info("history compacted",
		zap.Int("tokens", out.Tokens),
		zap.Int("summarized_turns", len(span)),
		zap.Int("replaced_turns", out.Span),
		zap.Int("turns", h.Len()),
	)
	return out, nil
}
