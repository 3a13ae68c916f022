// Package generator declares the narrative generator and image capabilities
// the engine consumes, and the prompts and structured-output decoding shared
// by every provider adapter.
package generator

import (
	"context"
	"errors"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/game/skill"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/game/tool"
)

// ErrEmptyResponse is returned when a provider answers with no usable content.
var ErrEmptyResponse = errors.New("generator returned an empty response")

// Sampling temperatures of the auxiliary requests.
const (
	SummaryTemperature float32 = 0.3
	FieldTemperature   float32 = 0.8
)

// Request is one streamed generation.
type Request struct {
	History  []history.Turn
	System   string
	Sampling session.Sampling
	Tools    []tool.Definition
}

// Chunk is one increment of a streamed response. Text and Calls may both be set.
type Chunk struct {
	Text  string
	Calls []tool.Call
}

// Profile is the character description stats are generated from.
type Profile struct {
	Race       string
	Class      string
	Look       string
	Background string
}

// Generator is a narrative model with tool calling.
type Generator interface {
	// StreamTurn streams one response to req, calling emit for each chunk in order.
	StreamTurn(ctx context.Context, req Request, emit func(Chunk)) error
	// CountTokens returns the provider's token count for turns.
	CountTokens(ctx context.Context, turns []history.Turn) (int, error)
	// Summarize condenses span into a short factual summary.
	Summarize(ctx context.Context, span []history.Turn, snap history.Snapshot) (string, error)
	// GenerateStats distributes creation points for p.
	GenerateStats(ctx context.Context, p Profile) (stat.Block, error)
	// GenerateCombatActions returns player actions for a combat.
	GenerateCombatActions(ctx context.Context, c *character.Character, opponents []combat.Opponent) (skill.Set, error)
	// GenerateCompanionActions returns a recruit's actions.
	GenerateCompanionActions(ctx context.Context, r character.Recruit) (skill.Set, error)
	// WriteField answers a short creative-writing prompt.
	WriteField(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator produces illustrations.
type ImageGenerator interface {
	// GenerateImage returns the image as a data URL.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
