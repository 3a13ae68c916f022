// Package gemini adapts the Gemini API to generator.Generator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/skill"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/game/tool"
	"github.com/cory-johannsen/taleweaver/internal/generator"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const jsonMIME = "application/json"

// Generator is a generator.Generator backed by a genai client.
type Generator struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// New connects to the Gemini API.
//
// Precondition: apiKey must be non-empty; logger must be non-nil.
func New(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Generator{client: client, model: model, logger: logger}, nil
}

// Close releases the client.
func (g *Generator) Close() error {
	return g.client.Close()
}

// StreamTurn streams one response, turning function calls into tool calls.
func (g *Generator) StreamTurn(ctx context.Context, req generator.Request, emit func(generator.Chunk)) error {
	contents := Contents(req.History)
	if len(contents) == 0 {
		return errors.New("gemini: empty history")
	}
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(req.Sampling.Temperature)
	m.SetTopP(req.Sampling.TopP)
	m.SetTopK(req.Sampling.TopK)
	if req.Sampling.MaxOutputTokens > 0 {
		m.SetMaxOutputTokens(req.Sampling.MaxOutputTokens)
	}
	if req.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if len(req.Tools) > 0 {
		m.Tools = Tools(req.Tools)
	}

	cs := m.StartChat()
	last := contents[len(contents)-1]
	cs.History = contents[:len(contents)-1]
	it := cs.SendMessageStream(ctx, last.Parts...)
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}
		if c, ok := chunkOf(resp); ok {
			emit(c)
		}
	}
}

func chunkOf(resp *genai.GenerateContentResponse) (generator.Chunk, bool) {
	var c generator.Chunk
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return c, false
	}
	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		switch v := p.(type) {
		case genai.Text:
			text.WriteString(string(v))
		case genai.FunctionCall:
			c.Calls = append(c.Calls, tool.Call{ID: "call-" + uuid.NewString(), Name: tool.Name(v.Name), Args: v.Args})
		}
	}
	c.Text = text.String()
	return c, c.Text != "" || len(c.Calls) > 0
}

// CountTokens asks the API for the size of turns.
func (g *Generator) CountTokens(ctx context.Context, turns []history.Turn) (int, error) {
	var parts []genai.Part
	for _, c := range Contents(turns) {
		parts = append(parts, c.Parts...)
	}
	if len(parts) == 0 {
		return 0, nil
	}
	resp, err := g.client.GenerativeModel(g.model).CountTokens(ctx, parts...)
	if err != nil {
		return 0, fmt.Errorf("gemini count tokens: %w", err)
	}
	return int(resp.TotalTokens), nil
}

// generate runs a single-shot request and returns its text.
func (g *Generator) generate(ctx context.Context, prompt string, configure func(*genai.GenerativeModel)) (string, error) {
	m := g.client.GenerativeModel(g.model)
	if configure != nil {
		configure(m)
	}
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	c, ok := chunkOf(resp)
	if !ok || c.Text == "" {
		return "", generator.ErrEmptyResponse
	}
	return c.Text, nil
}

func structured(schema *jsonschema.Schema) func(*genai.GenerativeModel) {
	return func(m *genai.GenerativeModel) {
		m.ResponseMIMEType = jsonMIME
		m.ResponseSchema = Schema(schema)
	}
}

// Summarize condenses span at a low temperature.
func (g *Generator) Summarize(ctx context.Context, span []history.Turn, snap history.Snapshot) (string, error) {
	prompt, err := generator.SummaryPrompt(span, snap)
	if err != nil {
		return "", err
	}
	text, err := g.generate(ctx, prompt, func(m *genai.GenerativeModel) { m.SetTemperature(generator.SummaryTemperature) })
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateStats requests a creation stat block.
func (g *Generator) GenerateStats(ctx context.Context, p generator.Profile) (stat.Block, error) {
	text, err := g.generate(ctx, generator.StatsPrompt(p), structured(generator.StatsSchema))
	if err != nil {
		return stat.Block{}, err
	}
	return generator.DecodeStats(text)
}

// GenerateCombatActions requests the player's actions for a combat.
func (g *Generator) GenerateCombatActions(ctx context.Context, c *character.Character, opponents []combat.Opponent) (skill.Set, error) {
	text, err := g.generate(ctx, generator.CombatActionsPrompt(c, opponents), structured(generator.ActionListSchema))
	if err != nil {
		return nil, err
	}
	actions, err := generator.DecodeActions(text)
	if err != nil {
		return nil, err
	}
	if len(actions) != generator.CombatActionCount {
		g.logger.Warn("unexpected combat action count", zap.Int("got", len(actions)), zap.Int("want", generator.CombatActionCount))
	}
	return actions, nil
}

// GenerateCompanionActions requests a recruit's actions.
func (g *Generator) GenerateCompanionActions(ctx context.Context, r character.Recruit) (skill.Set, error) {
	text, err := g.generate(ctx, generator.CompanionActionsPrompt(r), structured(generator.ActionListSchema))
	if err != nil {
		return nil, err
	}
	return generator.DecodeActions(text)
}

// WriteField answers a creative-writing prompt.
func (g *Generator) WriteField(ctx context.Context, prompt string) (string, error) {
	text, err := g.generate(ctx, generator.FieldPrompt(prompt), func(m *genai.GenerativeModel) { m.SetTemperature(generator.FieldTemperature) })
	if err != nil {
		return "", err
	}
	return generator.CleanField(text), nil
}
