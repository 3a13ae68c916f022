package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/skill"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
)

func action(id string) skill.Action {
	return skill.Action{
		ID: id, Name: id, Skill: stat.Attack,
		Effects: []skill.Effect{{Type: skill.Damage, Target: skill.Opponent, MinValue: 1, MaxValue: 2}},
	}
}

func TestStart_ReplacesOpponents(t *testing.T) {
	s := combat.NewState()
	s.AddVisual(combat.HPEffect("x", -3))
	opps := s.Start([]combat.OpponentSpec{{Name: "Gobelin", HP: 12}, {Name: "Loup", HP: 0}})

	assert.True(t, s.InCombat())
	assert.Equal(t, combat.PlayerTurn, s.TurnOwner)
	assert.Empty(t, s.Visuals)
	require.Len(t, opps, 2)
	assert.NotEqual(t, opps[0].ID, opps[1].ID)
	assert.Equal(t, 12, opps[0].MaxHP)
	assert.Equal(t, 1, opps[1].HP, "hp is floored at 1")
	assert.Empty(t, opps[0].StatusEffects)

	s.Start([]combat.OpponentSpec{{Name: "Ogre", HP: 40}})
	require.Len(t, s.Opponents, 1)
	assert.Equal(t, "Ogre", s.Opponents[0].Name)
}

func TestEnd_ClearsCombatState(t *testing.T) {
	s := combat.NewState()
	s.Start([]combat.OpponentSpec{{Name: "Gobelin", HP: 12}})
	s.BackgroundURL = "data:image/png;base64,AA=="
	s.AddVisual(combat.StatusVisual("x", "Étourdi"))
	s.PerformAction()
	assert.Equal(t, combat.AITurn, s.TurnOwner)

	s.End()
	assert.Equal(t, combat.Narrative, s.Mode)
	assert.Empty(t, s.Opponents)
	assert.Empty(t, s.BackgroundURL)
	assert.Empty(t, s.Visuals)
}

func TestSetActions_TruncatesAndPads(t *testing.T) {
	s := combat.NewState()
	s.SetActions(skill.Set{action("a"), action("b"), action("c"), action("d"), action("e")}, nil)
	assert.Len(t, s.Actions, combat.PlayerActions)

	s.SetActions(skill.Set{action("a"), {ID: "broken"}}, skill.Set{action("a"), action("z")})
	require.Len(t, s.Actions, 2)
	assert.Equal(t, "z", s.Actions[1].ID)
}

func TestOpponentLookup(t *testing.T) {
	s := combat.NewState()
	opps := s.Start([]combat.OpponentSpec{{Name: "Gobelin chétif", HP: 8}})
	require.NotNil(t, s.Opponent("GOBELIN CHÉTIF"))
	assert.Nil(t, s.Opponent("Orc"))
	o := s.OpponentByID(opps[0].ID)
	require.NotNil(t, o)
	o.AdjustHP(-20)
	assert.Empty(t, s.LivingOpponents())
}

func TestHPEffect(t *testing.T) {
	assert.Equal(t, "-5", combat.HPEffect("p", -5).Content)
	assert.Equal(t, combat.DamageEffect, combat.HPEffect("p", -5).Kind)
	assert.Equal(t, "+10", combat.HPEffect("p", 10).Content)
	assert.Equal(t, combat.HealEffect, combat.HPEffect("p", 10).Kind)
}

func TestPropertyOpponentHP_Clamped(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := combat.NewState()
		s.Start([]combat.OpponentSpec{{Name: "X", HP: rapid.IntRange(1, 100).Draw(rt, "hp")}})
		o := &s.Opponents[0]
		for _, d := range rapid.SliceOf(rapid.IntRange(-150, 150)).Draw(rt, "deltas") {
			o.AdjustHP(d)
			assert.GreaterOrEqual(rt, o.HP, 0)
			assert.LessOrEqual(rt, o.HP, o.MaxHP)
		}
	})
}
