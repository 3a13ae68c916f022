package condition

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content/statuses.yaml
var defaultStatuses []byte

// StatusDef is the static definition of a known status, loaded from YAML.
type StatusDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Registry holds all known StatusDefs keyed by ID.
type Registry struct {
	defs   map[string]*StatusDef
	byName map[string]*StatusDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:   make(map[string]*StatusDef),
		byName: make(map[string]*StatusDef),
	}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *StatusDef) {
	if def == nil || def.ID == "" {
		panic("condition: Register called with nil def or empty ID")
	}
	r.defs[def.ID] = def
	r.byName[strings.ToLower(def.Name)] = def
}

// Get returns the StatusDef for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*StatusDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Lookup resolves a status by ID or display name, case-insensitively.
func (r *Registry) Lookup(nameOrID string) (*StatusDef, bool) {
	if d, ok := r.defs[strings.ToLower(nameOrID)]; ok {
		return d, true
	}
	d, ok := r.byName[strings.ToLower(nameOrID)]
	return d, ok
}

// Describe returns e with its Description filled from the catalog when empty.
//
// Postcondition: a non-empty e.Description is never overwritten.
func (r *Registry) Describe(e StatusEffect) StatusEffect {
	if e.Description != "" {
		return e
	}
	if d, ok := r.Lookup(e.Name); ok {
		e.Description = d.Description
	}
	return e
}

// All returns a snapshot slice of all registered StatusDefs sorted by ID.
func (r *Registry) All() []*StatusDef {
	out := make([]*StatusDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Parse decodes a YAML list of StatusDefs into a new Registry.
//
// Postcondition: Returns a populated Registry, or an error on unknown fields,
// missing IDs, or duplicate IDs.
func Parse(data []byte) (*Registry, error) {
	var defs []*StatusDef
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		return nil, fmt.Errorf("parsing status catalog: %w", err)
	}
	reg := NewRegistry()
	for i, def := range defs {
		if def == nil || def.ID == "" {
			return nil, fmt.Errorf("status catalog entry %d: id must not be empty", i)
		}
		if _, dup := reg.defs[def.ID]; dup {
			return nil, fmt.Errorf("status catalog: duplicate id %q", def.ID)
		}
		reg.Register(def)
	}
	return reg, nil
}

// LoadFile reads and parses a status catalog file.
//
// Precondition: path must be a readable YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return Parse(data)
}

// DefaultRegistry returns the built-in status catalog.
//
// Postcondition: Returns a Registry containing every built-in status.
func DefaultRegistry() *Registry {
	reg, err := Parse(defaultStatuses)
	if err != nil {
		panic(fmt.Sprintf("building default status registry: %v", err))
	}
	return reg
}
