package tool

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// Enums constrains string properties to a closed set of values, keyed by
// dotted property path. Array items are entered implicitly, so "items.type"
// names the type of every element of items.
type Enums map[string][]string

// SchemaFor derives the JSON schema of T. Nullable types collapse to their
// non-null type and unknown properties are allowed, which keeps the schema
// within what every generator's declaration format accepts.
//
// Precondition: every path in enums names a property of T.
func SchemaFor[T any](enums Enums) *jsonschema.Schema {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("tool: deriving schema: %v", err))
	}
	relax(s)
	for path, values := range enums {
		constrain(s, path, values)
	}
	return s
}

func relax(s *jsonschema.Schema) {
	if s == nil {
		return
	}
	if s.Type == "" {
		if i := slices.IndexFunc(s.Types, func(t string) bool { return t != "null" }); i >= 0 {
			s.Type = s.Types[i]
			s.Types = nil
		}
	}
	s.AdditionalProperties = nil
	relax(s.Items)
	for _, p := range s.Properties {
		relax(p)
	}
}

func constrain(s *jsonschema.Schema, path string, values []string) {
	for _, name := range strings.Split(path, ".") {
		if s.Items != nil {
			s = s.Items
		}
		p, ok := s.Properties[name]
		if !ok {
			panic("tool: no property " + path)
		}
		s = p
	}
	s.Enum = make([]any, len(values))
	for i, v := range values {
		s.Enum[i] = v
	}
}

// resolved holds the validators of All, keyed by name.
var resolved = map[Name]*jsonschema.Resolved{}

// Validate checks decoded JSON arguments against the parameters schema.
// Tools without parameters accept anything.
func (d Definition) Validate(args map[string]any) error {
	if d.Parameters == nil {
		return nil
	}
	rs, ok := resolved[d.Name]
	if !ok {
		var err error
		if rs, err = d.Parameters.Resolve(nil); err != nil {
			return fmt.Errorf("resolving %s schema: %w", d.Name, err)
		}
	}
	return rs.Validate(args)
}
