// Package claude adapts the Anthropic Messages API to generator.Generator.
package claude

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/skill"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/game/tool"
	"github.com/cory-johannsen/taleweaver/internal/generator"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// defaultMaxTokens bounds responses when sampling leaves it unset.
const defaultMaxTokens = 2048

// Generator is a generator.Generator backed by the Anthropic client.
type Generator struct {
	client anthropic.Client
	model  anthropic.Model
	logger *zap.Logger
}

// New builds a client for apiKey.
//
// Precondition: apiKey must be non-empty; logger must be non-nil.
func New(apiKey, model string, logger *zap.Logger) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("claude: api key must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}
	return &Generator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
		logger: logger,
	}, nil
}

// StreamTurn streams narration as it arrives; tool calls are emitted once the
// message is complete.
func (g *Generator) StreamTurn(ctx context.Context, req generator.Request, emit func(generator.Chunk)) error {
	msgs := Messages(req.History)
	if len(msgs) == 0 {
		return errors.New("claude: empty history")
	}
	maxTokens := int64(req.Sampling.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:       g.model,
		MaxTokens:   maxTokens,
		Messages:    msgs,
		Temperature: anthropic.Float(float64(req.Sampling.Temperature)),
		TopK:        anthropic.Int(int64(req.Sampling.TopK)),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = Tools(req.Tools)
	}

	stream := g.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()
	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return fmt.Errorf("claude accumulate: %w", err)
		}
		if delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && text.Text != "" {
				emit(generator.Chunk{Text: text.Text})
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("claude stream: %w", err)
	}

	calls, err := toolCalls(message)
	if err != nil {
		return err
	}
	if len(calls) > 0 {
		emit(generator.Chunk{Calls: calls})
	}
	return nil
}

func toolCalls(m anthropic.Message) ([]tool.Call, error) {
	var calls []tool.Call
	for _, block := range m.Content {
		use, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok {
			continue
		}
		args := map[string]any{}
		if len(use.Input) > 0 {
			if err := json.Unmarshal(use.Input, &args); err != nil {
				return nil, fmt.Errorf("decoding %s input: %w", use.Name, err)
			}
		}
		calls = append(calls, tool.Call{ID: use.ID, Name: tool.Name(use.Name), Args: args})
	}
	return calls, nil
}

// CountTokens asks the API for the input size of turns.
func (g *Generator) CountTokens(ctx context.Context, turns []history.Turn) (int, error) {
	msgs := Messages(turns)
	if len(msgs) == 0 {
		return 0, nil
	}
	resp, err := g.client.Messages.CountTokens(ctx, anthropic.MessageCountTokensParams{
		Model:    g.model,
		Messages: msgs,
	})
	if err != nil {
		return 0, fmt.Errorf("claude count tokens: %w", err)
	}
	return int(resp.InputTokens), nil
}

func (g *Generator) complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       g.model,
		MaxTokens:   defaultMaxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(float64(temperature)),
	})
	if err != nil {
		return "", fmt.Errorf("claude complete: %w", err)
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	if b.Len() == 0 {
		return "", generator.ErrEmptyResponse
	}
	return b.String(), nil
}

// Summarize condenses span at a low temperature.
func (g *Generator) Summarize(ctx context.Context, span []history.Turn, snap history.Snapshot) (string, error) {
	prompt, err := generator.SummaryPrompt(span, snap)
	if err != nil {
		return "", err
	}
	text, err := g.complete(ctx, prompt, generator.SummaryTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateStats requests a creation stat block.
func (g *Generator) GenerateStats(ctx context.Context, p generator.Profile) (stat.Block, error) {
	text, err := g.complete(ctx, generator.StatsPrompt(p), generator.SummaryTemperature)
	if err != nil {
		return stat.Block{}, err
	}
	return generator.DecodeStats(text)
}

// GenerateCombatActions requests the player's actions for a combat.
func (g *Generator) GenerateCombatActions(ctx context.Context, c *character.Character, opponents []combat.Opponent) (skill.Set, error) {
	text, err := g.complete(ctx, generator.CombatActionsPrompt(c, opponents), generator.FieldTemperature)
	if err != nil {
		return nil, err
	}
	actions, err := generator.DecodeActions(text)
	if err != nil {
		g.logger.Debug("undecodable combat actions", zap.String("text", text))
		return nil, err
	}
	return actions, nil
}

// GenerateCompanionActions requests a recruit's actions.
func (g *Generator) GenerateCompanionActions(ctx context.Context, r character.Recruit) (skill.Set, error) {
	text, err := g.complete(ctx, generator.CompanionActionsPrompt(r), generator.FieldTemperature)
	if err != nil {
		return nil, err
	}
	return generator.DecodeActions(text)
}

// WriteField answers a creative-writing prompt.
func (g *Generator) WriteField(ctx context.Context, prompt string) (string, error) {
	text, err := g.complete(ctx, generator.FieldPrompt(prompt), generator.FieldTemperature)
	if err != nil {
		return "", err
	}
	return generator.CleanField(text), nil
}
