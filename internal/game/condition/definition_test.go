package condition_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/taleweaver/internal/game/condition"
)

func TestDefaultRegistry_HasBuiltins(t *testing.T) {
	reg := condition.DefaultRegistry()
	assert.Len(t, reg.All(), 7)
	d, ok := reg.Get("poisoned")
	require.True(t, ok)
	assert.Equal(t, "Empoisonné", d.Name)
}

func TestRegistry_LookupByName(t *testing.T) {
	reg := condition.DefaultRegistry()
	d, ok := reg.Lookup("étourdi")
	require.True(t, ok)
	assert.Equal(t, "stunned", d.ID)

	_, ok = reg.Lookup("Enflammé")
	assert.False(t, ok)
}

func TestRegistry_Describe(t *testing.T) {
	reg := condition.DefaultRegistry()
	filled := reg.Describe(condition.StatusEffect{Name: "Béni"})
	assert.NotEmpty(t, filled.Description)

	kept := reg.Describe(condition.StatusEffect{Name: "Béni", Description: "custom"})
	assert.Equal(t, "custom", kept.Description)

	unknown := reg.Describe(condition.StatusEffect{Name: "En Garde"})
	assert.Empty(t, unknown.Description)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := condition.Parse([]byte("- id: x\n  name: X\n  icon: skull\n"))
	assert.Error(t, err)
}

func TestParse_RejectsDuplicates(t *testing.T) {
	_, err := condition.Parse([]byte("- id: x\n  name: X\n- id: x\n  name: Y\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statuses.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: frozen\n  name: Gelé\n  description: Ne peut pas bouger.\n"), 0644))
	reg, err := condition.LoadFile(path)
	require.NoError(t, err)
	d, ok := reg.Lookup("gelé")
	require.True(t, ok)
	assert.Equal(t, "frozen", d.ID)
}

func TestEffects_DuplicatesByNameAllowed(t *testing.T) {
	var fx condition.Effects
	fx = fx.Apply(condition.StatusEffect{Name: "Empoisonné"})
	fx = fx.Apply(condition.StatusEffect{Name: "Empoisonné"})
	assert.Len(t, fx, 2)

	fx = fx.Remove("Empoisonné")
	assert.Empty(t, fx)
}

func TestPropertyEffects_RemoveClearsName(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOf(rapid.SampledFrom([]string{"a", "b", "c"})).Draw(rt, "names")
		var fx condition.Effects
		for _, n := range names {
			fx = fx.Apply(condition.StatusEffect{Name: n})
		}
		target := rapid.SampledFrom([]string{"a", "b", "c"}).Draw(rt, "target")
		out := fx.Remove(target)
		assert.False(rt, out.Has(target))
		for _, e := range out {
			assert.NotEqual(rt, target, e.Name)
		}
		assert.Len(rt, fx, len(names), "Remove must not mutate the receiver")
	})
}
