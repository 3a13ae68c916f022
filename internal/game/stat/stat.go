// Package stat defines the four character attributes, stat blocks, and
// temporary stat modifiers.
package stat

import (
	"fmt"
	"strings"
)

// Key names one of the four attributes.
type Key string

const (
	Charisma     Key = "cha"
	Intelligence Key = "int"
	Technique    Key = "tec"
	Attack       Key = "atk"
)

// Keys lists every attribute in display order.
var Keys = []Key{Charisma, Intelligence, Technique, Attack}

const (
	// Floor is the minimum value of any attribute at character creation.
	Floor = 8
	// CreationPool is the number of points distributed above Floor at creation.
	CreationPool = 15
	// CreationTotal is the expected sum of a freshly created stat block.
	CreationTotal = Floor*4 + CreationPool
)

// ParseKey validates s as an attribute key, case-insensitively.
//
// Postcondition: Returns a valid Key or a non-nil error.
func ParseKey(s string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Charisma, Intelligence, Technique, Attack:
		return k, nil
	}
	return "", fmt.Errorf("unknown stat %q", s)
}

// Block holds one value per attribute.
type Block struct {
	Cha int `json:"cha"`
	Int int `json:"int"`
	Tec int `json:"tec"`
	Atk int `json:"atk"`
}

// Get returns the value of attribute k.
//
// Precondition: k must be a valid Key.
func (b Block) Get(k Key) int {
	switch k {
	case Charisma:
		return b.Cha
	case Intelligence:
		return b.Int
	case Technique:
		return b.Tec
	case Attack:
		return b.Atk
	}
	panic(fmt.Sprintf("stat: Get called with unknown key %q", k))
}

// With returns a copy of b with attribute k set to v.
//
// Precondition: k must be a valid Key.
func (b Block) With(k Key, v int) Block {
	switch k {
	case Charisma:
		b.Cha = v
	case Intelligence:
		b.Int = v
	case Technique:
		b.Tec = v
	case Attack:
		b.Atk = v
	default:
		panic(fmt.Sprintf("stat: With called with unknown key %q", k))
	}
	return b
}

// Add returns a copy of b with delta added to attribute k.
func (b Block) Add(k Key, delta int) Block {
	return b.With(k, b.Get(k)+delta)
}

// Total returns the sum of all attributes.
func (b Block) Total() int {
	return b.Cha + b.Int + b.Tec + b.Atk
}

// Modifier is a temporary, signed adjustment to one attribute, keyed by its reason.
type Modifier struct {
	Stat   Key    `json:"stat"`
	Value  int    `json:"value"`
	Reason string `json:"reason"`
	// DurationInTurns is informational; expiry is driven by the narrator.
	DurationInTurns *int `json:"durationInTurns,omitempty"`
}

// Modifiers is an ordered list of stat modifiers.
type Modifiers []Modifier

// Sum returns the total adjustment applied to attribute k.
func (ms Modifiers) Sum(k Key) int {
	total := 0
	for _, m := range ms {
		if m.Stat == k {
			total += m.Value
		}
	}
	return total
}

// WithoutReason returns the modifiers whose Reason differs from reason.
//
// Postcondition: No element of the result has Reason == reason.
func (ms Modifiers) WithoutReason(reason string) Modifiers {
	out := make(Modifiers, 0, len(ms))
	for _, m := range ms {
		if m.Reason != reason {
			out = append(out, m)
		}
	}
	return out
}

// Effective returns base[k] plus every modifier matching k.
func Effective(base Block, mods Modifiers, k Key) int {
	return base.Get(k) + mods.Sum(k)
}
