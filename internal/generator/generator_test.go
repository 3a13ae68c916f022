package generator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/generator"
)

func TestSummaryPrompt_Snapshot(t *testing.T) {
	p, err := generator.SummaryPrompt([]history.Turn{history.UserTurn("[Faire] marcher", false)}, history.Snapshot{
		CharacterName: "Aria", HP: 90, Money: 12, Time: "Nuit", Weather: "Pluvieux",
		Inventory: []string{"Potion (x2)"},
	})
	require.NoError(t, err)
	assert.Contains(t, p, "- Personnage: Aria, 90 PV, 12 Or.")
	assert.Contains(t, p, "- Compagnons: Aucun.")
	assert.Contains(t, p, "- Monde: Lieux [Aucun], Nuit, Pluvieux.")
	assert.Contains(t, p, "- Inventaire: Potion (x2).")
	assert.Contains(t, p, "[Faire] marcher")
}

func TestCombatActionsPrompt(t *testing.T) {
	c, err := character.New(character.Creation{Name: "Aria", Race: "Elfe", Class: "Mage", Stats: stat.Block{Cha: 8, Int: 16, Tec: 12, Atk: 11}})
	require.NoError(t, err)
	p := generator.CombatActionsPrompt(c, []combat.Opponent{{Name: "Loup", HP: 14}})
	assert.Contains(t, p, "- Stats: ATK 11, TEC 12, INT 16, CHA 8")
	assert.Contains(t, p, "- Loup (PV: 14)")
}

func TestStatsPrompt_StatesTotals(t *testing.T) {
	p := generator.StatsPrompt(generator.Profile{Race: "Nain", Class: "Guerrier"})
	assert.Contains(t, p, "Chaque stat commence à 8. Tu as 15 points supplémentaires")
	assert.Contains(t, p, "exactement de 47")
}

func TestDecodeActions_StripsFenceAndInvalid(t *testing.T) {
	text := "```json\n[" +
		`{"id":"a1","name":"Coup","description":"","skill":"atk","effects":[{"type":"DAMAGE","target":"OPPONENT","minValue":2,"maxValue":4}]},` +
		`{"id":"a2","name":"Bizarre","description":"","skill":"luck","effects":[]}` +
		"]\n```"
	actions, err := generator.DecodeActions(text)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "a1", actions[0].ID)
}

func TestDecodeStats(t *testing.T) {
	b, err := generator.DecodeStats(`{"cha":10,"int":12,"tec":13,"atk":12}`)
	require.NoError(t, err)
	assert.Equal(t, 47, b.Total())
	_, err = generator.DecodeStats("pas du json")
	assert.Error(t, err)
}

func TestCleanField(t *testing.T) {
	assert.Equal(t, "Eldrin", generator.CleanField(` "Eldrin" `))
	assert.Equal(t, "Eldrin", generator.CleanField("*Eldrin*"))
}

func TestActionListSchema_ValidatesGeneratedActions(t *testing.T) {
	rs, err := generator.ActionListSchema.Resolve(nil)
	require.NoError(t, err)

	effect := map[string]any{"type": "DAMAGE", "target": "OPPONENT", "minValue": 2.0, "maxValue": 5.0}
	action := map[string]any{"id": "a1", "name": "Frappe", "description": "d", "skill": "atk", "effects": []any{effect}}
	assert.NoError(t, rs.Validate([]any{action}))

	effect["target"] = "EVERYONE"
	assert.Error(t, rs.Validate([]any{action}))

	assert.ElementsMatch(t, []string{"cha", "int", "tec", "atk"}, generator.StatsSchema.Required)
}
