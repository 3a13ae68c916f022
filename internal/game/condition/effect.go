// Package condition models status effects applied to the player, companions,
// and opponents, and the catalog of known statuses.
package condition

// StatusEffect is one applied status, identified by its exact Name.
type StatusEffect struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Effects is the ordered list of statuses on one entity.
//
// Invariant: the same name may appear more than once; Apply never deduplicates.
type Effects []StatusEffect

// Apply returns effects with e appended.
//
// Postcondition: len(result) == len(effects)+1.
func (effects Effects) Apply(e StatusEffect) Effects {
	out := make(Effects, len(effects), len(effects)+1)
	copy(out, effects)
	return append(out, e)
}

// Remove returns effects without any entry named name.
//
// Postcondition: result.Has(name) is false.
func (effects Effects) Remove(name string) Effects {
	out := make(Effects, 0, len(effects))
	for _, e := range effects {
		if e.Name != name {
			out = append(out, e)
		}
	}
	return out
}

// Has reports whether an effect named name is present.
func (effects Effects) Has(name string) bool {
	for _, e := range effects {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Names returns the effect names in order.
func (effects Effects) Names() []string {
	names := make([]string, len(effects))
	for i, e := range effects {
		names[i] = e.Name
	}
	return names
}
