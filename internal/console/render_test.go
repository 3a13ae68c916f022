package console_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/taleweaver/internal/console"
	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/dice"
	"github.com/cory-johannsen/taleweaver/internal/game/dispatch"
	"github.com/cory-johannsen/taleweaver/internal/game/engine"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
)

func TestRenderEvent(t *testing.T) {
	assert.Equal(t, "Il pleut.", console.RenderEvent(engine.Event{Kind: engine.NarrationEvent, Text: "Il pleut."}))

	info := console.RenderEvent(engine.Event{Kind: engine.NoticeEvent, Notice: dispatch.Notice{Level: dispatch.Info, Text: "+10 XP"}})
	assert.Contains(t, info, "» +10 XP")
	assert.Contains(t, info, console.Cyan)

	errNotice := console.RenderNotice(dispatch.Notice{Level: dispatch.Error, Text: "Erreur"})
	assert.Contains(t, errNotice, "! Erreur")
	assert.Contains(t, errNotice, console.BrightRed)

	dmg := console.RenderEvent(engine.Event{Kind: engine.VisualEvent, Visual: combat.VisualEffect{TargetID: "o1", Kind: combat.DamageEffect, Content: "-4"}})
	assert.Contains(t, dmg, "[o1] -4")
	assert.Contains(t, dmg, console.Red)

	img := console.RenderEvent(engine.Event{Kind: engine.ImageEvent, Text: "data:image/png;base64," + strings.Repeat("A", 100)})
	assert.Contains(t, img, "fond de combat")
	assert.Contains(t, img, "…")
}

func TestRenderCheck(t *testing.T) {
	got := console.RenderCheck(dice.CheckResult{Roll: 20, Modifier: -1, Total: 19, Difficulty: 15, Success: true, CriticalSuccess: true})
	assert.Contains(t, got, "d20 20 -1 = 19 vs 15")
	assert.Contains(t, got, "Succès")
	assert.Contains(t, got, "critique")

	got = console.RenderCheck(dice.CheckResult{Roll: 7, Modifier: 2, Total: 9})
	assert.Equal(t, "d20 7 +2 = 9", got)
}

func TestRenderSessions(t *testing.T) {
	list := []session.Summary{
		{ID: "s2", Name: "Deux", Timestamp: time.Now()},
		{ID: "s1", Name: "Un", Timestamp: time.Now().Add(-time.Hour)},
	}
	out := console.RenderSessions(list, "s1")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "*"))
	assert.Contains(t, console.RenderSessions(nil, ""), "Aucune partie")
}

func TestRenderTranscript_SkipsSystemAndKeepsTail(t *testing.T) {
	msgs := []session.Message{
		{Role: history.Model, Content: "un"},
		{Role: history.User, Content: "[SYSTEM] caché", IsSystem: true},
		{Role: history.User, Content: "deux"},
		{Role: history.Model, Content: "trois"},
	}
	out := console.RenderTranscript(msgs, 2)
	assert.NotContains(t, out, "un")
	assert.NotContains(t, out, "caché")
	assert.Contains(t, out, "> deux")
	assert.Contains(t, out, "trois")
}

func TestRenderHelp_ListsEveryCategory(t *testing.T) {
	out := console.RenderHelp(console.DefaultRegistry())
	for _, label := range []string{"Récit", "Combat", "Personnage", "Parties", "Système"} {
		assert.Contains(t, out, label)
	}
	assert.Contains(t, out, "quitter")
}
