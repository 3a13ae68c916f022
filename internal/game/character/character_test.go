package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/skill"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/game/trophy"
	"github.com/cory-johannsen/taleweaver/internal/game/world"
)

func newHero(t require.TestingT) *character.Character {
	c, err := character.New(character.Creation{
		Name:  "Aria",
		Race:  "Elfe",
		Class: "Mage",
		Stats: stat.Block{Cha: 10, Int: 15, Tec: 8, Atk: 14},
	})
	require.NoError(t, err)
	return c
}

func TestNew_StartingCharacter(t *testing.T) {
	c := newHero(t)
	assert.Equal(t, 112, c.MaxHP)
	assert.Equal(t, 112, c.CurrentHP)
	assert.Equal(t, 50, c.Money)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 0, c.XP)
	assert.Equal(t, 100, c.XPToNextLevel)
	assert.Equal(t, 0, c.StatPoints)
	assert.Equal(t, world.Center, c.Position)
	require.Len(t, c.Skills, 2)
	assert.Equal(t, skill.BasicAttack.ID, c.Skills[0].ID)
	assert.Equal(t, "fireball", c.Skills[1].ID)
}

func TestNew_RejectsEmptyName(t *testing.T) {
	_, err := character.New(character.Creation{Name: "  "})
	assert.Error(t, err)
}

func TestSetBaseStats_ShiftsHPByMaxDelta(t *testing.T) {
	c := newHero(t)
	delta := c.SetBaseStats(c.BaseStats.With(stat.Technique, 10))
	assert.Equal(t, 8, delta)
	assert.Equal(t, 120, c.MaxHP)
	assert.Equal(t, 120, c.CurrentHP)
}

func TestPropertySetBaseStats_PreservesDelta(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := newHero(rt)
		c.AdjustHP(-rapid.IntRange(0, 112).Draw(rt, "damage"))
		h, m1 := c.CurrentHP, c.MaxHP
		tec := rapid.IntRange(0, 30).Draw(rt, "tec")
		c.SetBaseStats(c.BaseStats.With(stat.Technique, tec))
		m2 := 80 + 4*tec
		want := min(max(h+(m2-m1), 0), m2)
		assert.Equal(rt, m2, c.MaxHP)
		assert.Equal(rt, want, c.CurrentHP)
	})
}

func TestAwardXP_MultiLevel(t *testing.T) {
	c := newHero(t)
	gained := c.AwardXP(250)
	assert.Equal(t, 2, gained)
	assert.Equal(t, 3, c.Level)
	assert.Equal(t, 0, c.XP)
	assert.Equal(t, 4, c.StatPoints)
	assert.Equal(t, 225, c.XPToNextLevel)
}

func TestPropertyAwardXP_UnderThreshold(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := newHero(rt)
		for _, a := range rapid.SliceOf(rapid.IntRange(0, 5000)).Draw(rt, "awards") {
			before := c.Level
			gained := c.AwardXP(a)
			assert.Less(rt, c.XP, c.XPToNextLevel)
			assert.Equal(rt, before+gained, c.Level)
		}
		assert.Equal(rt, (c.Level-1)*character.PointsPerLevel, c.StatPoints)
	})
}

func TestUnlockTrophy_Idempotent(t *testing.T) {
	cat := trophy.DefaultCatalog()
	c := newHero(t)
	def, err := c.UnlockTrophy(cat, "master_crafter")
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, 10, c.BaseStats.Tec)
	assert.Equal(t, 120, c.MaxHP)

	def, err = c.UnlockTrophy(cat, "master_crafter")
	require.NoError(t, err)
	assert.Nil(t, def)
	assert.Equal(t, 10, c.BaseStats.Tec)
	assert.Equal(t, []string{"master_crafter"}, c.CompletedTrophies)
}

func TestUnlockTrophy_Unknown(t *testing.T) {
	c := newHero(t)
	_, err := c.UnlockTrophy(trophy.DefaultCatalog(), "nope")
	assert.ErrorIs(t, err, character.ErrUnknownTrophy)
	assert.Empty(t, c.CompletedTrophies)
}

func TestSpendStatPoints(t *testing.T) {
	c := newHero(t)
	assert.ErrorIs(t, c.SpendStatPoints(stat.Technique, 1), character.ErrInsufficientPoints)
	c.AwardXP(100)
	require.NoError(t, c.SpendStatPoints(stat.Technique, 2))
	assert.Equal(t, 10, c.BaseStats.Tec)
	assert.Equal(t, 120, c.MaxHP)
	assert.Equal(t, 0, c.StatPoints)
	assert.Error(t, c.SpendStatPoints(stat.Technique, 0))
}

func TestModifiers_EffectiveAndRemove(t *testing.T) {
	c := newHero(t)
	c.ApplyModifier(stat.Modifier{Stat: stat.Attack, Value: 2, Reason: "Potion de Force"})
	c.ApplyModifier(stat.Modifier{Stat: stat.Attack, Value: -1, Reason: "Malédiction"})
	assert.Equal(t, 15, c.Effective(stat.Attack))
	c.RemoveModifier("Potion de Force")
	assert.Equal(t, 13, c.Effective(stat.Attack))
}

func TestGold_FloorsAtZero(t *testing.T) {
	c := newHero(t)
	c.RemoveGold(80)
	assert.Equal(t, 0, c.Money)
	c.AddGold(15)
	assert.Equal(t, 15, c.Money)
}

func TestCompanions(t *testing.T) {
	c := newHero(t)
	comp := character.NewCompanion(character.Recruit{Name: "Borin", HP: 30}, skill.Set{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
	})
	assert.Regexp(t, `^comp-`, comp.ID)
	assert.Len(t, comp.Skills, character.MaxCompanionSkills)
	assert.Equal(t, 30, comp.MaxHP)
	c.AddCompanion(comp)

	p := c.Companion("BORIN")
	require.NotNil(t, p)
	p.AdjustHP(-50)
	assert.Equal(t, 0, c.Companions[0].HP)

	assert.Equal(t, 0, c.DismissCompanion("borin"), "dismiss matches exact name")
	assert.Equal(t, 1, c.DismissCompanion("Borin"))
	assert.Empty(t, c.Companions)
}

func TestPropertyAdjustHP_Clamped(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := newHero(rt)
		for _, d := range rapid.SliceOf(rapid.IntRange(-200, 200)).Draw(rt, "deltas") {
			c.AdjustHP(d)
			assert.GreaterOrEqual(rt, c.CurrentHP, 0)
			assert.LessOrEqual(rt, c.CurrentHP, c.MaxHP)
		}
	})
}
