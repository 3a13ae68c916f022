package character

import (
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/taleweaver/internal/game/condition"
	"github.com/cory-johannsen/taleweaver/internal/game/dice"
	"github.com/cory-johannsen/taleweaver/internal/game/skill"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
)

// MaxCompanionSkills is the largest skill set a companion keeps.
const MaxCompanionSkills = 3

// Companion is an ally travelling with the character.
//
// Invariant: 0 <= HP <= MaxHP.
type Companion struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Race          string            `json:"race"`
	Class         string            `json:"class"`
	Background    string            `json:"background"`
	HP            int               `json:"hp"`
	MaxHP         int               `json:"maxHp"`
	Stats         stat.Block        `json:"stats"`
	Skills        skill.Set         `json:"skills"`
	StatusEffects condition.Effects `json:"statusEffects"`
}

// Recruit describes a companion about to join.
type Recruit struct {
	Name       string
	Race       string
	Class      string
	Background string
	HP         int
	Stats      stat.Block
}

// NewCompanion builds a companion at full health with a fresh "comp-" id.
// skills is truncated to MaxCompanionSkills.
func NewCompanion(r Recruit, skills skill.Set) Companion {
	hp := r.HP
	if hp < 1 {
		hp = 1
	}
	return Companion{
		ID:            "comp-" + uuid.NewString(),
		Name:          r.Name,
		Race:          r.Race,
		Class:         r.Class,
		Background:    r.Background,
		HP:            hp,
		MaxHP:         hp,
		Stats:         r.Stats,
		Skills:        skills.Fit(MaxCompanionSkills, nil),
		StatusEffects: condition.Effects{},
	}
}

// AdjustHP applies delta with clamping and returns the new value.
func (c *Companion) AdjustHP(delta int) int {
	c.HP = dice.ApplyHPDelta(c.HP, c.MaxHP, delta)
	return c.HP
}

// AddCompanion appends comp to the party.
func (c *Character) AddCompanion(comp Companion) {
	c.Companions = append(c.Companions, comp)
}

// Companion returns a pointer to the companion named name, case-insensitively.
func (c *Character) Companion(name string) *Companion {
	for i := range c.Companions {
		if strings.EqualFold(c.Companions[i].Name, name) {
			return &c.Companions[i]
		}
	}
	return nil
}

// DismissCompanion removes every companion whose name is exactly name.
//
// Postcondition: Returns the number removed.
func (c *Character) DismissCompanion(name string) int {
	kept := make([]Companion, 0, len(c.Companions))
	for _, comp := range c.Companions {
		if comp.Name != name {
			kept = append(kept, comp)
		}
	}
	removed := len(c.Companions) - len(kept)
	c.Companions = kept
	return removed
}
