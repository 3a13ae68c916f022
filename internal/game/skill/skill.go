// Package skill defines combat actions: named abilities that check one stat and
// apply an ordered list of effects.
package skill

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/taleweaver/internal/game/stat"
)

// EffectType is the kind of change an effect applies.
type EffectType string

const (
	Damage       EffectType = "DAMAGE"
	Heal         EffectType = "HEAL"
	ApplyStatus  EffectType = "APPLY_STATUS"
	RemoveStatus EffectType = "REMOVE_STATUS"
)

// Target is who an effect lands on.
type Target string

const (
	Self     Target = "SELF"
	Opponent Target = "OPPONENT"
	Ally     Target = "ALLY"
)

// Effect is one step of an Action.
type Effect struct {
	Type         EffectType `json:"type"`
	Target       Target     `json:"target"`
	TargetName   string     `json:"targetName,omitempty"`
	MinValue     int        `json:"minValue"`
	MaxValue     int        `json:"maxValue"`
	StatusEffect string     `json:"statusEffect,omitempty"`
}

// Action is an immutable combat ability.
type Action struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Skill       stat.Key `json:"skill"`
	Effects     []Effect `json:"effects"`
}

// NeedsTarget reports whether any effect targets an opponent or an ally.
func (a Action) NeedsTarget() bool {
	for _, e := range a.Effects {
		if e.Target == Opponent || e.Target == Ally {
			return true
		}
	}
	return false
}

// Validate checks that a generated action is well formed.
//
// Postcondition: Returns nil, or an error naming every violation.
func (a Action) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if _, err := stat.ParseKey(string(a.Skill)); err != nil {
		errs = append(errs, err)
	}
	for i, e := range a.Effects {
		switch e.Type {
		case Damage, Heal, ApplyStatus, RemoveStatus:
		default:
			errs = append(errs, fmt.Errorf("effect %d: unknown type %q", i, e.Type))
		}
		switch e.Target {
		case Self, Opponent, Ally:
		default:
			errs = append(errs, fmt.Errorf("effect %d: unknown target %q", i, e.Target))
		}
		if e.MaxValue < e.MinValue {
			errs = append(errs, fmt.Errorf("effect %d: maxValue %d < minValue %d", i, e.MaxValue, e.MinValue))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("action %q: %w", a.ID, errors.Join(errs...))
	}
	return nil
}

// Set is an ordered collection of actions owned by one entity.
type Set []Action

// Find returns the action with the given id.
func (s Set) Find(id string) (Action, bool) {
	for _, a := range s {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// Valid returns the actions that pass Validate, preserving order.
func (s Set) Valid() Set {
	out := make(Set, 0, len(s))
	for _, a := range s {
		if a.Validate() == nil {
			out = append(out, a)
		}
	}
	return out
}

// Fit truncates s to at most n actions and pads it from fallback, skipping ids
// already present.
//
// Postcondition: len(result) <= n; ids in the result are unique.
func (s Set) Fit(n int, fallback Set) Set {
	out := make(Set, 0, n)
	seen := make(map[string]bool, n)
	for _, src := range []Set{s, fallback} {
		for _, a := range src {
			if len(out) == n {
				return out
			}
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			out = append(out, a)
		}
	}
	return out
}
