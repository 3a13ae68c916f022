package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/dispatch"
	"github.com/cory-johannsen/taleweaver/internal/game/engine"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
)

func playingState(t *testing.T) *session.State {
	t.Helper()
	c, err := character.New(character.Creation{Name: "Aria", Race: "Elfe", Class: "Mage", Stats: stat.Block{Cha: 12, Int: 15, Tec: 10, Atk: 10}})
	require.NoError(t, err)
	st := session.New()
	st.Character = c
	st.Phase = session.Playing
	return st
}

func TestSystemPrompt_Narrative(t *testing.T) {
	st := playingState(t)
	st.Narration = session.Narration{
		Maturity:          session.Adult,
		CustomInstruction: "Pas de magie noire.",
		PointOfView:       session.FirstPerson,
		Tone:              session.CustomTone,
		CustomTone:        "Noir et ironique",
	}
	p := engine.SystemPrompt(st)
	assert.Contains(t, p, "pour un jeu de rôle textuel")
	assert.Contains(t, p, "- Instruction Spécifique: Pas de magie noire.")
	assert.Contains(t, p, "- Point de Vue: Première personne (Je)")
	assert.Contains(t, p, "- Ton: Noir et ironique")
	assert.Contains(t, p, "- Maturité: Adulte (18+)")
	assert.NotContains(t, p, "Compagnons Actuels")
}

func TestSystemPrompt_CombatListsCompanions(t *testing.T) {
	st := playingState(t)
	st.Character.AddCompanion(character.NewCompanion(character.Recruit{Name: "Borin", Class: "Guerrier", HP: 30}, nil))
	st.Combat.Start([]combat.OpponentSpec{{Name: "Loup", HP: 10}})
	p := engine.SystemPrompt(st)
	assert.Contains(t, p, "combat au tour par tour")
	assert.Contains(t, p, "- Compagnons Actuels: Borin (Guerrier, 30/30 PV)")
	assert.NotContains(t, p, "Point de Vue")
}

func TestInputMode(t *testing.T) {
	m, err := engine.ParseInputMode("dire")
	require.NoError(t, err)
	assert.Equal(t, engine.Speak, m)
	assert.Equal(t, "[Dire] bonjour", m.Format("bonjour"))
	_, err = engine.ParseInputMode("chanter")
	assert.Error(t, err)
}

func TestFieldPromptFor(t *testing.T) {
	d := engine.Draft{Premise: "Un royaume en ruines", Race: "Nain", Class: "Guerrier"}
	p, err := engine.FieldPromptFor(engine.LookField, d)
	require.NoError(t, err)
	assert.Equal(t, "Contexte: Un royaume en ruines. Mon personnage est un(e) Nain Guerrier nommé(e) Inconnu. Décris son apparence en un paragraphe.", p)

	p, err = engine.FieldPromptFor(engine.PrologueField, d)
	require.NoError(t, err)
	assert.Contains(t, p, "- Prémisse: Un royaume en ruines")
}

func TestChannelListener_DropsWhenFull(t *testing.T) {
	l := engine.NewChannelListener(1)
	l.OnNarration("a")
	l.OnNotice(dispatch.Notice{Level: dispatch.Info, Text: "b"})
	assert.Equal(t, 1, l.Dropped())

	e := <-l.Events()
	assert.Equal(t, engine.NarrationEvent, e.Kind)
	assert.Equal(t, "a", e.Text)

	l.Close()
	l.OnNarration("ignored")
	_, open := <-l.Events()
	assert.False(t, open)
}
