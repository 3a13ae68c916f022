package claude

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/tool"
)

// OpeningTurn precedes a history that starts with model narration; the API
// requires the first message to come from the user.
const OpeningTurn = "[SYSTEM] Début de l'aventure."

// JSONSchema renders s as a decoded JSON schema object.
func JSONSchema(s *jsonschema.Schema) map[string]any {
	out := map[string]any{}
	b, err := json.Marshal(s)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(b, &out)
	return out
}

// Tools declares defs as client tools.
func Tools(defs []tool.Definition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, d := range defs {
		input := anthropic.ToolInputSchemaParam{Properties: map[string]any{}}
		if d.Parameters != nil {
			input.Properties = JSONSchema(d.Parameters)["properties"]
			input.Required = d.Parameters.Required
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        string(d.Name),
			Description: anthropic.String(d.Description),
			InputSchema: input,
		}})
	}
	return out
}

// Messages translates history turns. Consecutive turns of the same side are
// merged, since the API requires alternating roles.
func Messages(turns []history.Turn) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, t := range turns {
		role := anthropic.MessageParamRoleUser
		if t.Role == history.Model {
			role = anthropic.MessageParamRoleAssistant
		}
		blocks := blocksOf(t)
		if len(blocks) == 0 {
			continue
		}
		if len(out) == 0 && role == anthropic.MessageParamRoleAssistant {
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(OpeningTurn)))
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			continue
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: blocks})
	}
	return out
}

func blocksOf(t history.Turn) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	for _, p := range t.Parts {
		switch {
		case p.Call != nil:
			args := p.Call.Args
			if args == nil {
				args = map[string]any{}
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(p.Call.ID, args, string(p.Call.Name)))
		case p.Result != nil:
			payload, err := json.Marshal(p.Result.Payload())
			if err != nil {
				payload = []byte(`{"success":false}`)
			}
			blocks = append(blocks, anthropic.NewToolResultBlock(p.Result.CallID, string(payload), !p.Result.Success))
		case p.Text != "":
			blocks = append(blocks, anthropic.NewTextBlock(p.Text))
		}
	}
	return blocks
}
