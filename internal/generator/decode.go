package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cory-johannsen/taleweaver/internal/game/skill"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/game/tool"
)

// stripFence removes a surrounding markdown code fence, if any.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DecodeActions parses a JSON action array and keeps the well-formed actions.
//
// Postcondition: every returned action passes Validate.
func DecodeActions(text string) (skill.Set, error) {
	var actions skill.Set
	if err := json.Unmarshal([]byte(stripFence(text)), &actions); err != nil {
		return nil, fmt.Errorf("decoding combat actions: %w", err)
	}
	return actions.Valid(), nil
}

// DecodeStats parses a JSON stat block.
func DecodeStats(text string) (stat.Block, error) {
	var b stat.Block
	if err := json.Unmarshal([]byte(stripFence(text)), &b); err != nil {
		return stat.Block{}, fmt.Errorf("decoding stats: %w", err)
	}
	return b, nil
}

// ActionListSchema is the structured-output schema of an action array.
var ActionListSchema = tool.SchemaFor[skill.Set](tool.Enums{
	"skill":          {"atk", "int", "tec", "cha"},
	"effects.type":   {string(skill.Damage), string(skill.Heal), string(skill.ApplyStatus), string(skill.RemoveStatus)},
	"effects.target": {string(skill.Self), string(skill.Opponent), string(skill.Ally)},
})

type statsOutput struct {
	Cha int `json:"cha" jsonschema:"Points de charisme"`
	Int int `json:"int" jsonschema:"Points d'intelligence"`
	Tec int `json:"tec" jsonschema:"Points de technique"`
	Atk int `json:"atk" jsonschema:"Points d'attaque"`
}

// StatsSchema is the structured-output schema of a stat block.
var StatsSchema = tool.SchemaFor[statsOutput](nil)
