// Package history holds the model-facing conversation: turns of user text,
// model narration with tool calls, and tool results, plus the context-size
// estimate and the summarization policy that compacts it.
package history

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/taleweaver/internal/game/tool"
)

// Role is the author of a turn.
type Role string

const (
	User  Role = "user"
	Model Role = "model"
	Tool  Role = "tool"
)

// Part is one element of a turn: text, a tool call, or a tool result.
type Part struct {
	Text   string       `json:"text,omitempty"`
	Call   *tool.Call   `json:"call,omitempty"`
	Result *tool.Result `json:"result,omitempty"`
}

// Turn is one exchange unit.
type Turn struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
	// Hidden turns are sent to the generator but never rendered.
	Hidden bool `json:"hidden,omitempty"`
}

// UserTurn builds a user turn carrying text.
func UserTurn(text string, hidden bool) Turn {
	return Turn{ID: uuid.NewString(), Role: User, Parts: []Part{{Text: text}}, Hidden: hidden}
}

// ModelTurn builds a model turn from narration and the calls it issued.
// Empty text is omitted.
func ModelTurn(text string, calls []tool.Call) Turn {
	t := Turn{ID: uuid.NewString(), Role: Model}
	if text != "" {
		t.Parts = append(t.Parts, Part{Text: text})
	}
	for i := range calls {
		c := calls[i]
		t.Parts = append(t.Parts, Part{Call: &c})
	}
	return t
}

// ResultsTurn builds the single turn carrying every result of a batch.
func ResultsTurn(results []tool.Result) Turn {
	t := Turn{ID: uuid.NewString(), Role: Tool}
	for i := range results {
		r := results[i]
		t.Parts = append(t.Parts, Part{Result: &r})
	}
	return t
}

// Text returns the concatenated text parts.
func (t Turn) Text() string {
	var b strings.Builder
	for _, p := range t.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// Calls returns the tool calls of the turn in order.
func (t Turn) Calls() []tool.Call {
	var out []tool.Call
	for _, p := range t.Parts {
		if p.Call != nil {
			out = append(out, *p.Call)
		}
	}
	return out
}

// History is the ordered turn sequence of a session.
type History struct {
	turns []Turn
}

// New returns a history holding turns.
func New(turns ...Turn) *History {
	return &History{turns: append([]Turn(nil), turns...)}
}

// Append adds turns at the end.
func (h *History) Append(turns ...Turn) {
	h.turns = append(h.turns, turns...)
}

// Turns returns a copy of the turn sequence.
func (h *History) Turns() []Turn {
	return append([]Turn(nil), h.turns...)
}

// Len returns the number of turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Last returns the final turn.
func (h *History) Last() (Turn, bool) {
	if len(h.turns) == 0 {
		return Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}

// ReplaceMiddle replaces turns[from:to] with replacement.
//
// Precondition: 0 <= from <= to <= Len().
func (h *History) ReplaceMiddle(from, to int, replacement Turn) {
	if from < 0 || to > len(h.turns) || from > to {
		panic("history: ReplaceMiddle called with invalid bounds")
	}
	out := make([]Turn, 0, len(h.turns)-(to-from)+1)
	out = append(out, h.turns[:from]...)
	out = append(out, replacement)
	out = append(out, h.turns[to:]...)
	h.turns = out
}

// MarshalJSON encodes the history as its turn array.
func (h *History) MarshalJSON() ([]byte, error) {
	if h.turns == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.turns)
}

// UnmarshalJSON decodes a turn array.
func (h *History) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &h.turns)
}
