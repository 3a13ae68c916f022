package dice_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/taleweaver/internal/game/dice"
)

func TestModifier_Table(t *testing.T) {
	cases := map[int]int{
		1: -5, 7: -2, 8: -1, 9: -1, 10: 0, 11: 0, 12: 1, 13: 1, 20: 5,
	}
	for value, want := range cases {
		assert.Equal(t, want, dice.Modifier(value), "Modifier(%d)", value)
	}
}

func TestPropertyModifier_IsFloorDivision(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.IntRange(-100, 100).Draw(rt, "value")
		want := int(math.Floor(float64(v-10) / 2))
		assert.Equal(rt, want, dice.Modifier(v))
	})
}

func TestResolveCheck_Criticals(t *testing.T) {
	nat20 := dice.ResolveCheck(20, -5, 30)
	assert.True(t, nat20.CriticalSuccess)
	assert.False(t, nat20.Success, "a natural 20 does not override the comparison")

	nat1 := dice.ResolveCheck(1, 10, 5)
	assert.True(t, nat1.CriticalFailure)
	assert.True(t, nat1.Success, "a natural 1 does not override the comparison")
}

func TestResolveCheck_PanicsOutsideDie(t *testing.T) {
	assert.Panics(t, func() { dice.ResolveCheck(0, 0, 10) })
	assert.Panics(t, func() { dice.ResolveCheck(21, 0, 10) })
}

func TestPropertyCheck_DeterministicGivenRoll(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		roll := rapid.IntRange(1, 20).Draw(rt, "roll")
		mod := rapid.IntRange(-10, 10).Draw(rt, "modifier")
		diff := rapid.IntRange(-5, 40).Draw(rt, "difficulty")

		result := dice.Check(dice.NewSeqSource(roll-1), mod, diff)
		assert.Equal(rt, roll, result.Roll)
		assert.Equal(rt, roll+mod, result.Total)
		assert.Equal(rt, roll+mod >= diff, result.Success)
		assert.Equal(rt, roll == 20, result.CriticalSuccess)
		assert.Equal(rt, roll == 1, result.CriticalFailure)
	})
}

func TestEffectValue_InvalidRange(t *testing.T) {
	_, err := dice.EffectValue(dice.NewSeqSource(0), 10, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, dice.ErrInvalidRange)
}

func TestPropertyEffectValue_WithinRange(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		min := rapid.IntRange(-20, 50).Draw(rt, "min")
		max := min + rapid.IntRange(0, 50).Draw(rt, "width")
		v, err := dice.EffectValue(src, min, max)
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, v, min)
		assert.LessOrEqual(rt, v, max)
	})
}

func TestPropertyApplyHPDelta_Clamped(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		max := rapid.IntRange(0, 500).Draw(rt, "max")
		hp := rapid.IntRange(0, max).Draw(rt, "start")
		deltas := rapid.SliceOf(rapid.IntRange(-300, 300)).Draw(rt, "deltas")
		for _, d := range deltas {
			hp = dice.ApplyHPDelta(hp, max, d)
			assert.GreaterOrEqual(rt, hp, 0)
			assert.LessOrEqual(rt, hp, max)
		}
	})
}

func TestCryptoSource_PanicsOnNonPositive(t *testing.T) {
	assert.PanicsWithValue(t, "dice: Intn called with n <= 0", func() {
		dice.NewCryptoSource().Intn(0)
	})
}

func TestSeqSource_WrapsAndReduces(t *testing.T) {
	src := dice.NewSeqSource(3, 25)
	assert.Equal(t, 3, src.Intn(20))
	assert.Equal(t, 5, src.Intn(20))
	assert.Equal(t, 3, src.Intn(20))
	assert.Equal(t, 3, src.Calls())
}

func TestRoller_LogsAndRolls(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSeqSource(13), zap.NewNop())
	res := r.Check("climb", 2, 15)
	assert.Equal(t, 14, res.Roll)
	assert.True(t, res.Success)

	v, err := r.EffectValue(5, 10)
	require.NoError(t, err)
	assert.Equal(t, 5+13%6, v)

	_, err = r.EffectValue(3, 1)
	assert.ErrorIs(t, err, dice.ErrInvalidRange)
}

func TestCheckResult_String(t *testing.T) {
	s := dice.ResolveCheck(14, 2, 15).String()
	assert.Equal(t, "d20 14 +2 = 16 vs 15: success", s)
}
