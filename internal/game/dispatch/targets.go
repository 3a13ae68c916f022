package dispatch

import (
	"strings"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/condition"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
)

// IsPlayer reports whether name designates the player character.
func IsPlayer(name string) bool {
	n := strings.TrimSpace(name)
	return strings.EqualFold(n, "joueur") || strings.EqualFold(n, "player")
}

// target is a resolved health/status target. Exactly one of player,
// companion, and opponent is set.
type target struct {
	id        string
	player    bool
	companion *character.Companion
	opponent  *combat.Opponent
}

// resolve looks name up as the player, then a companion, then an opponent.
func resolve(st *session.State, name string) (target, bool) {
	if IsPlayer(name) {
		return target{id: combat.PlayerTargetID, player: true}, true
	}
	if comp := st.Character.Companion(name); comp != nil {
		return target{id: comp.ID, companion: comp}, true
	}
	if opp := st.Combat.Opponent(name); opp != nil {
		return target{id: opp.ID, opponent: opp}, true
	}
	return target{}, false
}

func (t target) adjustHP(c *character.Character, delta int) {
	switch {
	case t.player:
		c.AdjustHP(delta)
	case t.companion != nil:
		t.companion.AdjustHP(delta)
	case t.opponent != nil:
		t.opponent.AdjustHP(delta)
	}
}

func (t target) effects(c *character.Character) *condition.Effects {
	switch {
	case t.player:
		return &c.StatusEffects
	case t.companion != nil:
		return &t.companion.StatusEffects
	default:
		return &t.opponent.StatusEffects
	}
}
