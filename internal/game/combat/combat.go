// Package combat holds the play-mode state machine and the combat sub-state:
// opponents, turn ownership, cached player actions, and transient visuals.
package combat

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/taleweaver/internal/game/condition"
	"github.com/cory-johannsen/taleweaver/internal/game/dice"
	"github.com/cory-johannsen/taleweaver/internal/game/skill"
)

// Mode is the active play mode.
type Mode string

const (
	Narrative Mode = "NARRATIVE"
	Combat    Mode = "COMBAT"
)

// TurnOwner is who acts next during combat.
type TurnOwner string

const (
	PlayerTurn TurnOwner = "PLAYER"
	AITurn     TurnOwner = "AI"
)

// PlayerActions is the number of actions cached for the player per combat.
const PlayerActions = 4

// PlayerTargetID is the visual-effect target id of the player.
const PlayerTargetID = "player"

// Opponent is an enemy in the current combat.
//
// Invariant: 0 <= HP <= MaxHP.
type Opponent struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	HP            int               `json:"hp"`
	MaxHP         int               `json:"maxHp"`
	StatusEffects condition.Effects `json:"statusEffects"`
}

// AdjustHP applies delta with clamping and returns the new value.
func (o *Opponent) AdjustHP(delta int) int {
	o.HP = dice.ApplyHPDelta(o.HP, o.MaxHP, delta)
	return o.HP
}

// IsDown reports whether the opponent has no HP left.
func (o *Opponent) IsDown() bool {
	return o.HP <= 0
}

// OpponentSpec is an opponent as announced by startCombat.
type OpponentSpec struct {
	Name string `json:"name"`
	HP   int    `json:"hp"`
}

// EffectKind classifies a visual effect.
type EffectKind string

const (
	DamageEffect EffectKind = "damage"
	HealEffect   EffectKind = "heal"
	StatusKind   EffectKind = "status"
)

// VisualEffect is a transient, unpersisted combat annotation.
type VisualEffect struct {
	ID       string     `json:"id"`
	TargetID string     `json:"targetId"`
	Kind     EffectKind `json:"type"`
	Content  string     `json:"content"`
}

// HPEffect builds the visual effect for an HP change on targetID.
func HPEffect(targetID string, delta int) VisualEffect {
	kind := HealEffect
	content := fmt.Sprintf("+%d", delta)
	if delta < 0 {
		kind = DamageEffect
		content = fmt.Sprintf("%d", delta)
	} else if delta == 0 {
		content = "0"
	}
	return VisualEffect{ID: uuid.NewString(), TargetID: targetID, Kind: kind, Content: content}
}

// StatusVisual builds the visual effect for a status applied to targetID.
func StatusVisual(targetID, status string) VisualEffect {
	return VisualEffect{ID: uuid.NewString(), TargetID: targetID, Kind: StatusKind, Content: status}
}

// State is the play mode plus the combat sub-state.
//
// Invariant: Opponents is empty unless Mode == Combat.
type State struct {
	Mode          Mode           `json:"playMode"`
	TurnOwner     TurnOwner      `json:"turnOwner"`
	Opponents     []Opponent     `json:"opponents"`
	Actions       skill.Set      `json:"combatActions"`
	BackgroundURL string         `json:"combatBackgroundUrl,omitempty"`
	Visuals       []VisualEffect `json:"-"`
}

// NewState returns the initial narrative state.
func NewState() State {
	return State{Mode: Narrative, TurnOwner: PlayerTurn, Opponents: []Opponent{}, Actions: skill.Set{}}
}

// InCombat reports whether the state is in combat mode.
func (s *State) InCombat() bool {
	return s.Mode == Combat
}

// Start enters combat. The opponent list is replaced wholesale; each opponent
// gets a fresh id, MaxHP == HP, and no statuses.
//
// Postcondition: Mode == Combat; TurnOwner == PlayerTurn; Visuals and Actions are empty.
func (s *State) Start(specs []OpponentSpec) []Opponent {
	opps := make([]Opponent, 0, len(specs))
	for _, sp := range specs {
		hp := sp.HP
		if hp < 1 {
			hp = 1
		}
		opps = append(opps, Opponent{
			ID:            uuid.NewString(),
			Name:          sp.Name,
			HP:            hp,
			MaxHP:         hp,
			StatusEffects: condition.Effects{},
		})
	}
	s.Mode = Combat
	s.TurnOwner = PlayerTurn
	s.Opponents = opps
	s.Actions = skill.Set{}
	s.BackgroundURL = ""
	s.Visuals = nil
	return opps
}

// SetActions caches the player actions for this combat, truncating to
// PlayerActions and padding from fallback.
func (s *State) SetActions(generated, fallback skill.Set) {
	s.Actions = generated.Valid().Fit(PlayerActions, fallback)
}

// End leaves combat.
//
// Postcondition: Mode == Narrative; opponents, background, and visuals are cleared.
func (s *State) End() {
	s.Mode = Narrative
	s.TurnOwner = PlayerTurn
	s.Opponents = []Opponent{}
	s.BackgroundURL = ""
	s.Visuals = nil
}

// PerformAction hands the turn to the generator optimistically.
func (s *State) PerformAction() {
	s.TurnOwner = AITurn
}

// Opponent returns the opponent named name, case-insensitively.
func (s *State) Opponent(name string) *Opponent {
	for i := range s.Opponents {
		if strings.EqualFold(s.Opponents[i].Name, name) {
			return &s.Opponents[i]
		}
	}
	return nil
}

// OpponentByID returns the opponent with the given id.
func (s *State) OpponentByID(id string) *Opponent {
	for i := range s.Opponents {
		if s.Opponents[i].ID == id {
			return &s.Opponents[i]
		}
	}
	return nil
}

// LivingOpponents returns the opponents with HP left.
func (s *State) LivingOpponents() []Opponent {
	out := make([]Opponent, 0, len(s.Opponents))
	for _, o := range s.Opponents {
		if !o.IsDown() {
			out = append(out, o)
		}
	}
	return out
}

// AddVisual records a transient visual effect.
func (s *State) AddVisual(v VisualEffect) {
	s.Visuals = append(s.Visuals, v)
}
