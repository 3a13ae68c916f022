// Package scripted is a deterministic generator that replays queued
// responses. It backs tests and offline play.
package scripted

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/skill"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/game/tool"
	"github.com/cory-johannsen/taleweaver/internal/generator"
)

// Response is one scripted turn.
type Response struct {
	// Chunks are streamed in order. When empty, Text and Calls form one chunk.
	Chunks []generator.Chunk
	Text   string
	Calls  []tool.Call
	Err    error
}

func (r Response) chunks() []generator.Chunk {
	if len(r.Chunks) > 0 {
		return r.Chunks
	}
	return []generator.Chunk{{Text: r.Text, Calls: r.Calls}}
}

// Offline answers every turn the queue does not cover by echoing the player.
func Offline(req generator.Request) Response {
	last := ""
	for i := len(req.History) - 1; i >= 0; i-- {
		if t := req.History[i]; t.Role == history.User && !strings.HasPrefix(t.Text(), "[SYSTEM]") {
			last = t.Text()
			break
		}
	}
	if last == "" {
		return Response{Text: "[HORS LIGNE] Le narrateur est désactivé."}
	}
	return Response{Text: fmt.Sprintf("[HORS LIGNE] Le narrateur est désactivé. Votre message était : %q", last)}
}

// Generator replays queued responses.
//
// Invariant: responses are consumed in FIFO order, one per StreamTurn.
type Generator struct {
	mu       sync.Mutex
	queue    []Response
	fallback func(generator.Request) Response
	requests []generator.Request

	// Stats, CombatActions, CompanionActions, Summary, and Field are returned
	// by the matching auxiliary calls; the *Err fields make them fail.
	Stats            stat.Block
	StatsErr         error
	CombatActions    skill.Set
	CombatErr        error
	CompanionActions skill.Set
	CompanionErr     error
	Summary          string
	SummaryErr       error
	Tokens           int
	TokensErr        error
	Field            string
	FieldErr         error
}

// New creates a Generator with responses queued and Offline as the fallback.
func New(responses ...Response) *Generator {
	return &Generator{
		queue:    responses,
		fallback: Offline,
		Stats:    stat.Block{Cha: 11, Int: 12, Tec: 12, Atk: 12},
		Summary:  "Résumé des événements.",
	}
}

// Push queues more responses.
func (g *Generator) Push(responses ...Response) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = append(g.queue, responses...)
}

// Repeat makes r the answer to every turn the queue does not cover.
func (g *Generator) Repeat(r Response) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fallback = func(generator.Request) Response { return r }
}

// Requests returns every StreamTurn request received, in order.
func (g *Generator) Requests() []generator.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]generator.Request(nil), g.requests...)
}

// Calls returns the number of StreamTurn calls received.
func (g *Generator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// StreamTurn emits the next queued response.
func (g *Generator) StreamTurn(ctx context.Context, req generator.Request, emit func(generator.Chunk)) error {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	var r Response
	if len(g.queue) > 0 {
		r = g.queue[0]
		g.queue = g.queue[1:]
	} else {
		r = g.fallback(req)
	}
	g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Err != nil {
		return r.Err
	}
	for _, c := range r.chunks() {
		emit(c)
	}
	return nil
}

// CountTokens returns Tokens, or the history estimate when Tokens is 0.
func (g *Generator) CountTokens(_ context.Context, turns []history.Turn) (int, error) {
	if g.TokensErr != nil {
		return 0, g.TokensErr
	}
	if g.Tokens > 0 {
		return g.Tokens, nil
	}
	return history.Estimate(turns), nil
}

// Summarize returns Summary.
func (g *Generator) Summarize(context.Context, []history.Turn, history.Snapshot) (string, error) {
	return g.Summary, g.SummaryErr
}

// GenerateStats returns Stats.
func (g *Generator) GenerateStats(context.Context, generator.Profile) (stat.Block, error) {
	return g.Stats, g.StatsErr
}

// GenerateCombatActions returns CombatActions.
func (g *Generator) GenerateCombatActions(context.Context, *character.Character, []combat.Opponent) (skill.Set, error) {
	return g.CombatActions, g.CombatErr
}

// GenerateCompanionActions returns CompanionActions.
func (g *Generator) GenerateCompanionActions(context.Context, character.Recruit) (skill.Set, error) {
	return g.CompanionActions, g.CompanionErr
}

// WriteField returns Field, or a placeholder echoing the prompt's last line.
func (g *Generator) WriteField(_ context.Context, prompt string) (string, error) {
	if g.FieldErr != nil {
		return "", g.FieldErr
	}
	if g.Field != "" {
		return g.Field, nil
	}
	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	return "[HORS LIGNE] " + lines[len(lines)-1], nil
}

// Images is a scripted ImageGenerator.
type Images struct {
	mu      sync.Mutex
	URL     string
	Err     error
	prompts []string
}

// GenerateImage records prompt and returns URL or Err.
func (i *Images) GenerateImage(ctx context.Context, prompt string) (string, error) {
	i.mu.Lock()
	i.prompts = append(i.prompts, prompt)
	i.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if i.Err != nil {
		return "", i.Err
	}
	if i.URL == "" {
		return "data:image/png;base64,", nil
	}
	return i.URL, nil
}

// Prompts returns every prompt received, in order.
func (i *Images) Prompts() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.prompts...)
}
