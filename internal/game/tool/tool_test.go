package tool_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/tool"
)

func names(defs []tool.Definition) []tool.Name {
	out := make([]tool.Name, len(defs))
	for i, d := range defs {
		out[i] = d.Name
	}
	return out
}

func TestForMode_Narrative(t *testing.T) {
	got := names(tool.ForMode(combat.Narrative))
	assert.Len(t, got, len(tool.All)-1)
	assert.NotContains(t, got, tool.EndCombat)
	assert.Contains(t, got, tool.StartQuest)
}

func TestForMode_CombatIsStrictSubset(t *testing.T) {
	got := names(tool.ForMode(combat.Combat))
	assert.ElementsMatch(t, []tool.Name{
		tool.UpdateHealth, tool.EndCombat, tool.AddItemToInventory, tool.RemoveItemFromInventory,
		tool.ApplyStatusEffect, tool.RemoveStatusEffect, tool.AwardXP, tool.UnlockTrophy,
		tool.ApplyStatModifier, tool.RemoveStatModifier, tool.EndGame,
	}, got)
	for _, n := range []tool.Name{tool.StartQuest, tool.UpdateMap, tool.RecruitCompanion, tool.RequestSkillCheck, tool.StartCombat, tool.UpdateCharacterStats} {
		assert.False(t, tool.Allowed(combat.Combat, n), n)
	}
}

func TestAllowed_UnknownName(t *testing.T) {
	assert.False(t, tool.Allowed(combat.Narrative, "castSpell"))
}

func TestDefinitionValidate(t *testing.T) {
	def, ok := tool.Lookup(tool.RequestSkillCheck)
	require.True(t, ok)

	assert.NoError(t, def.Validate(map[string]any{"skill": "int", "difficulty": 12.0, "reason": "x"}))
	assert.NoError(t, def.Validate(map[string]any{"skill": "int", "difficulty": 12.0, "reason": "x", "extra": true}),
		"unknown properties are allowed")

	err := def.Validate(map[string]any{"skill": "str", "difficulty": 12.0, "reason": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "str")

	err = def.Validate(map[string]any{"skill": "int", "difficulty": 12.5, "reason": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "integer")

	err = def.Validate(map[string]any{"skill": "int", "difficulty": 12.0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reason")
}

func TestDefinitionValidate_NestedArray(t *testing.T) {
	def, _ := tool.Lookup(tool.UpdateMap)
	err := def.Validate(map[string]any{
		"locations": []any{map[string]any{"id": "a", "name": "A", "description": "d", "type": "Château"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Château")

	assert.NoError(t, def.Validate(map[string]any{
		"locations": []any{map[string]any{"id": "a", "name": "A", "description": "d", "type": "Ville"}},
	}))
}

func TestDefinitionValidate_OptionalFields(t *testing.T) {
	def, _ := tool.Lookup(tool.RemoveItemFromInventory)
	assert.NoError(t, def.Validate(map[string]any{"itemName": "Caillou"}))
	assert.NoError(t, def.Validate(map[string]any{"itemName": "Caillou", "quantity": 2.0}))
	assert.Error(t, def.Validate(map[string]any{"itemName": "Caillou", "quantity": "deux"}))
}

func TestDefinitionValidate_NoParameters(t *testing.T) {
	def, _ := tool.Lookup(tool.EndCombat)
	assert.Nil(t, def.Parameters)
	assert.NoError(t, def.Validate(nil))
}

func TestSchemaFor_DerivesFromArgumentTypes(t *testing.T) {
	def, _ := tool.Lookup(tool.AddItemToInventory)
	s := def.Parameters
	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"items"}, s.Required)
	items := s.Properties["items"]
	require.NotNil(t, items)
	assert.Equal(t, "array", items.Type)
	require.NotNil(t, items.Items)
	assert.ElementsMatch(t, []string{"name", "description", "type", "category"}, items.Items.Required)
	assert.Equal(t, "integer", items.Items.Properties["quantity"].Type, "nullable pointers collapse to their type")
	assert.Equal(t, []any{"Utilisable", "Consommable", "Quête"}, items.Items.Properties["type"].Enum)
	assert.Equal(t, "Nom de l'objet.", items.Items.Properties["name"].Description)
}

func TestCallDecode(t *testing.T) {
	c := tool.Call{ID: "1", Name: tool.AddMoney, Args: map[string]any{"amount": 12}}
	var args struct {
		Amount int `json:"amount"`
	}
	require.NoError(t, c.Decode(&args))
	assert.Equal(t, 12, args.Amount)

	norm, err := c.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 12.0, norm["amount"])
}

func TestResultPayload(t *testing.T) {
	c := tool.Call{ID: "1", Name: tool.AddMoney}
	assert.Equal(t, map[string]any{"success": true}, tool.OK(c, nil).Payload())
	assert.Equal(t, map[string]any{"success": true, "result": "ok"}, tool.OK(c, "ok").Payload())
	failed := tool.Fail(c, errors.New("boom"))
	assert.Equal(t, "1", failed.CallID)
	assert.Equal(t, map[string]any{"success": false, "error": "boom"}, failed.Payload())
}
