package gemini

import (
	"github.com/google/generative-ai-go/genai"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/tool"
)

var schemaTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"array":   genai.TypeArray,
	"string":  genai.TypeString,
	"integer": genai.TypeInteger,
	"number":  genai.TypeNumber,
	"boolean": genai.TypeBoolean,
}

// Schema translates a JSON schema into a genai schema. Keywords genai cannot
// express are dropped.
func Schema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        schemaTypes[s.Type],
		Description: s.Description,
		Required:    s.Required,
		Items:       Schema(s.Items),
	}
	for _, v := range s.Enum {
		if e, ok := v.(string); ok {
			out.Enum = append(out.Enum, e)
		}
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = Schema(p)
		}
	}
	return out
}

// Tools declares defs as one genai tool.
func Tools(defs []tool.Definition) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, d := range defs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        string(d.Name),
			Description: d.Description,
			Parameters:  Schema(d.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// Contents translates history turns. Tool results travel in user turns;
// turns without parts are dropped.
func Contents(turns []history.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := "user"
		if t.Role == history.Model {
			role = "model"
		}
		c := &genai.Content{Role: role}
		for _, p := range t.Parts {
			switch {
			case p.Call != nil:
				c.Parts = append(c.Parts, genai.FunctionCall{Name: string(p.Call.Name), Args: p.Call.Args})
			case p.Result != nil:
				c.Parts = append(c.Parts, genai.FunctionResponse{Name: string(p.Result.Name), Response: p.Result.Payload()})
			case p.Text != "":
				c.Parts = append(c.Parts, genai.Text(p.Text))
			}
		}
		if len(c.Parts) > 0 {
			out = append(out, c)
		}
	}
	return out
}
