// Package character defines the player character aggregate and its companions.
//
// The aggregate owns its inventory, quests, skills, status effects, stat
// modifiers, and companions. All HP changes go through dice.ApplyHPDelta.
package character

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/taleweaver/internal/game/condition"
	"github.com/cory-johannsen/taleweaver/internal/game/dice"
	"github.com/cory-johannsen/taleweaver/internal/game/inventory"
	"github.com/cory-johannsen/taleweaver/internal/game/quest"
	"github.com/cory-johannsen/taleweaver/internal/game/skill"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/game/trophy"
	"github.com/cory-johannsen/taleweaver/internal/game/world"
)

const (
	// PVBase is the max HP of a character with 0 technique.
	PVBase = 80
	// PVPerTec is the max HP granted per point of base technique.
	PVPerTec = 4
	// FirstLevelThreshold is the XP needed to reach level 2.
	FirstLevelThreshold = 100
	// PointsPerLevel is the number of stat points granted per level.
	PointsPerLevel = 2
)

var (
	// ErrInsufficientPoints is returned when spending more stat points than available.
	ErrInsufficientPoints = errors.New("not enough stat points")
	// ErrUnknownTrophy is returned for a trophy id absent from the catalog.
	ErrUnknownTrophy = errors.New("unknown trophy")
)

// MaxHPFor derives max HP from base stats. Modifiers do not count.
func MaxHPFor(base stat.Block) int {
	return PVBase + PVPerTec*base.Tec
}

// Character is the player character.
//
// Invariant: 0 <= CurrentHP <= MaxHP; MaxHP == MaxHPFor(BaseStats).
type Character struct {
	Name              string            `json:"name"`
	Race              string            `json:"race"`
	Class             string            `json:"class"`
	Look              string            `json:"look"`
	Background        string            `json:"background"`
	BaseStats         stat.Block        `json:"baseStats"`
	StatModifiers     stat.Modifiers    `json:"statModifiers"`
	MaxHP             int               `json:"pv"`
	CurrentHP         int               `json:"-"`
	Inventory         inventory.Bag     `json:"inventory"`
	Money             int               `json:"money"`
	Level             int               `json:"level"`
	XP                int               `json:"xp"`
	XPToNextLevel     int               `json:"xpToNextLevel"`
	StatPoints        int               `json:"statPoints"`
	Position          world.Position    `json:"position"`
	CompletedTrophies []string          `json:"completedTrophies"`
	Quests            quest.Log         `json:"quests"`
	Skills            skill.Set         `json:"skills"`
	Companions        []Companion       `json:"companions"`
	StatusEffects     condition.Effects `json:"statusEffects"`
}

// Creation is the output of the adventure creation flow.
type Creation struct {
	Name       string
	Race       string
	Class      string
	Look       string
	Background string
	Stats      stat.Block
}

// New builds a level-1 character at full health.
//
// Precondition: c.Name must be non-empty.
// Postcondition: Skills starts with skill.BasicAttack; Position is world.Center.
func New(c Creation) (*Character, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, errors.New("character name must not be empty")
	}
	maxHP := MaxHPFor(c.Stats)
	return &Character{
		Name:              c.Name,
		Race:              c.Race,
		Class:             c.Class,
		Look:              c.Look,
		Background:        c.Background,
		BaseStats:         c.Stats,
		StatModifiers:     stat.Modifiers{},
		MaxHP:             maxHP,
		CurrentHP:         maxHP,
		Inventory:         inventory.Bag{},
		Money:             inventory.StartingGold,
		Level:             1,
		XPToNextLevel:     FirstLevelThreshold,
		Position:          world.Center,
		CompletedTrophies: []string{},
		Quests:            quest.Log{},
		Skills:            skill.Starting(c.Class),
		Companions:        []Companion{},
		StatusEffects:     condition.Effects{},
	}, nil
}

// Effective returns the base value of k plus all matching modifiers.
func (c *Character) Effective(k stat.Key) int {
	return stat.Effective(c.BaseStats, c.StatModifiers, k)
}

// IsDead reports whether the character has no HP left.
func (c *Character) IsDead() bool {
	return c.CurrentHP <= 0
}

// AdjustHP applies delta to current HP with clamping and returns the new value.
func (c *Character) AdjustHP(delta int) int {
	c.CurrentHP = dice.ApplyHPDelta(c.CurrentHP, c.MaxHP, delta)
	return c.CurrentHP
}

// SetBaseStats replaces the base stats and recomputes max HP. Current HP
// shifts by the max HP delta, then is clamped.
//
// Postcondition: MaxHP == MaxHPFor(b); returns the max HP delta.
func (c *Character) SetBaseStats(b stat.Block) int {
	newMax := MaxHPFor(b)
	delta := newMax - c.MaxHP
	c.BaseStats = b
	c.MaxHP = newMax
	c.CurrentHP = dice.ApplyHPDelta(c.CurrentHP, newMax, delta)
	return delta
}

// AddGold adds amount to the purse.
func (c *Character) AddGold(amount int) {
	c.Money = inventory.AddGold(c.Money, amount)
}

// RemoveGold removes amount from the purse, flooring at 0.
func (c *Character) RemoveGold(amount int) {
	c.Money = inventory.RemoveGold(c.Money, amount)
}

// AwardXP adds amount XP and resolves every level crossed.
//
// Postcondition: XP < XPToNextLevel; returns the number of levels gained.
func (c *Character) AwardXP(amount int) int {
	c.XP += amount
	gained := 0
	for c.XPToNextLevel > 0 && c.XP >= c.XPToNextLevel {
		c.XP -= c.XPToNextLevel
		c.Level++
		c.XPToNextLevel = c.XPToNextLevel * 3 / 2
		c.StatPoints += PointsPerLevel
		gained++
	}
	return gained
}

// HasTrophy reports whether id was already unlocked.
func (c *Character) HasTrophy(id string) bool {
	for _, t := range c.CompletedTrophies {
		if t == id {
			return true
		}
	}
	return false
}

// UnlockTrophy records trophy id and applies its stat bonus once.
//
// Precondition: cat must be non-nil.
// Postcondition: Returns ErrUnknownTrophy for ids absent from cat. Returns
// (nil, nil) when the trophy was already unlocked.
func (c *Character) UnlockTrophy(cat *trophy.Catalog, id string) (*trophy.Def, error) {
	def, ok := cat.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrophy, id)
	}
	if c.HasTrophy(id) {
		return nil, nil
	}
	c.CompletedTrophies = append(c.CompletedTrophies, id)
	if len(def.Bonus) > 0 {
		c.SetBaseStats(def.Apply(c.BaseStats))
	}
	return def, nil
}

// SpendStatPoints moves n unspent points into base stat k.
//
// Precondition: n > 0.
// Postcondition: Returns ErrInsufficientPoints when n > StatPoints; otherwise
// max HP is recomputed.
func (c *Character) SpendStatPoints(k stat.Key, n int) error {
	if n <= 0 {
		return fmt.Errorf("stat points to spend must be > 0, got %d", n)
	}
	if n > c.StatPoints {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientPoints, c.StatPoints, n)
	}
	c.StatPoints -= n
	c.SetBaseStats(c.BaseStats.Add(k, n))
	return nil
}

// ApplyModifier appends m to the stat modifiers.
func (c *Character) ApplyModifier(m stat.Modifier) {
	c.StatModifiers = append(c.StatModifiers, m)
}

// RemoveModifier drops every modifier whose reason is reason.
func (c *Character) RemoveModifier(reason string) {
	c.StatModifiers = c.StatModifiers.WithoutReason(reason)
}
