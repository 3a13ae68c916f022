// Package trophy holds the achievement catalog and the permanent stat bonuses
// some trophies grant.
package trophy

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/taleweaver/internal/game/stat"
)

//go:embed content/trophies.yaml
var defaultTrophies []byte

// FirstAlly is unlocked automatically on the first companion recruit.
const FirstAlly = "first_ally"

// Def is one catalog entry.
type Def struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Reward      string           `yaml:"reward"`
	Bonus       map[stat.Key]int `yaml:"bonus"`
}

// Apply returns base with the trophy's bonus added.
func (d *Def) Apply(base stat.Block) stat.Block {
	for k, v := range d.Bonus {
		base = base.Add(k, v)
	}
	return base
}

// Catalog is an ordered, id-indexed trophy list.
type Catalog struct {
	order []*Def
	byID  map[string]*Def
}

// Get returns the trophy with the given id.
func (c *Catalog) Get(id string) (*Def, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// All returns the trophies in catalog order.
func (c *Catalog) All() []*Def {
	return append([]*Def(nil), c.order...)
}

// Len returns the number of trophies.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Parse decodes a YAML trophy list.
//
// Postcondition: Returns a Catalog, or an error on unknown fields, empty or
// duplicate ids, or bonus keys that are not attributes.
func Parse(data []byte) (*Catalog, error) {
	var defs []*Def
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		return nil, fmt.Errorf("parsing trophy catalog: %w", err)
	}
	c := &Catalog{byID: make(map[string]*Def, len(defs))}
	for i, d := range defs {
		if d == nil || d.ID == "" {
			return nil, fmt.Errorf("trophy catalog entry %d: id must not be empty", i)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("trophy catalog: duplicate id %q", d.ID)
		}
		for k := range d.Bonus {
			if _, err := stat.ParseKey(string(k)); err != nil {
				return nil, fmt.Errorf("trophy %q: %w", d.ID, err)
			}
		}
		c.byID[d.ID] = d
		c.order = append(c.order, d)
	}
	return c, nil
}

// LoadFile reads and parses a trophy catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return Parse(data)
}

// DefaultCatalog returns the built-in catalog.
//
// Postcondition: the catalog contains FirstAlly.
func DefaultCatalog() *Catalog {
	c, err := Parse(defaultTrophies)
	if err != nil {
		panic(fmt.Sprintf("building default trophy catalog: %v", err))
	}
	if _, ok := c.Get(FirstAlly); !ok {
		panic("trophy: default catalog is missing " + FirstAlly)
	}
	return c
}
