package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/condition"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/inventory"
	"github.com/cory-johannsen/taleweaver/internal/game/quest"
	"github.com/cory-johannsen/taleweaver/internal/game/skill"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/game/world"
)

// Snapshot is the persisted blob of one session.
type Snapshot struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Timestamp           int64                `json:"timestamp"`
	History             *history.History     `json:"history"`
	Messages            []Message            `json:"messages,omitempty"`
	Settings            *Sampling            `json:"settings,omitempty"`
	Maturity            Maturity             `json:"maturity,omitempty"`
	CustomInstruction   string               `json:"customInstruction"`
	PointOfView         PointOfView          `json:"pointOfView,omitempty"`
	Tone                Tone                 `json:"tone,omitempty"`
	CustomTone          string               `json:"customTone"`
	Character           *character.Character `json:"character"`
	CurrentCharacterHP  *int                 `json:"currentCharacterHp,omitempty"`
	WorldState          *world.State         `json:"worldState,omitempty"`
	PlayMode            combat.Mode          `json:"playMode,omitempty"`
	TurnOwner           combat.TurnOwner     `json:"turnOwner,omitempty"`
	Opponents           []combat.Opponent    `json:"opponents"`
	CombatBackgroundURL string               `json:"combatBackgroundUrl,omitempty"`
	CombatActions       skill.Set            `json:"combatActions"`
	GameState           Phase                `json:"gameState,omitempty"`
	GameOverReason      string               `json:"gameOverReason,omitempty"`
	PendingSkillCheck   *SkillCheck          `json:"pendingSkillCheck,omitempty"`
}

// Snapshot captures s for persistence at time now.
func (s *State) Snapshot(now time.Time) Snapshot {
	sampling := s.Sampling
	w := s.World
	snap := Snapshot{
		ID:                  s.ID,
		Name:                s.Name(),
		Timestamp:           now.UnixMilli(),
		History:             s.History,
		Messages:            s.Transcript,
		Settings:            &sampling,
		Maturity:            s.Narration.Maturity,
		CustomInstruction:   s.Narration.CustomInstruction,
		PointOfView:         s.Narration.PointOfView,
		Tone:                s.Narration.Tone,
		CustomTone:          s.Narration.CustomTone,
		Character:           s.Character,
		WorldState:          &w,
		PlayMode:            s.Combat.Mode,
		TurnOwner:           s.Combat.TurnOwner,
		Opponents:           s.Combat.Opponents,
		CombatBackgroundURL: s.Combat.BackgroundURL,
		CombatActions:       s.Combat.Actions,
		GameState:           s.Phase,
		GameOverReason:      s.GameOverReason,
		PendingSkillCheck:   s.PendingCheck,
	}
	if s.Character != nil {
		hp := s.Character.CurrentHP
		snap.CurrentCharacterHP = &hp
	}
	return snap
}

// Encode serializes the snapshot of s.
func Encode(s *State, now time.Time) ([]byte, error) {
	data, err := json.Marshal(s.Snapshot(now))
	if err != nil {
		return nil, fmt.Errorf("encoding session %s: %w", s.ID, err)
	}
	return data, nil
}

// Decode parses a snapshot blob and restores it.
func Decode(data []byte) (*State, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return Restore(snap), nil
}

// Restore rebuilds a State from a snapshot, defaulting every field older
// saves may lack.
//
// Postcondition: slices are non-nil; a character's CurrentHP lies in [0, MaxHP].
func Restore(snap Snapshot) *State {
	s := New()
	if snap.ID != "" {
		s.ID = snap.ID
	}
	if snap.History != nil {
		s.History = snap.History
	}
	if snap.Settings != nil {
		s.Sampling = *snap.Settings
	}
	if snap.Maturity != "" {
		s.Narration.Maturity = snap.Maturity
	}
	if snap.PointOfView != "" {
		s.Narration.PointOfView = snap.PointOfView
	}
	if snap.Tone != "" {
		s.Narration.Tone = snap.Tone
	}
	s.Narration.CustomInstruction = snap.CustomInstruction
	s.Narration.CustomTone = snap.CustomTone

	if snap.WorldState != nil {
		s.World = *snap.WorldState
		if s.World.Locations == nil {
			s.World.Locations = []world.Location{}
		}
		if s.World.Time == "" {
			s.World.Time = world.Day
		}
		if s.World.Weather == "" {
			s.World.Weather = world.Clear
		}
	}

	if snap.PlayMode != "" {
		s.Combat.Mode = snap.PlayMode
	}
	if snap.TurnOwner != "" {
		s.Combat.TurnOwner = snap.TurnOwner
	}
	if snap.Opponents != nil && s.Combat.InCombat() {
		s.Combat.Opponents = snap.Opponents
	}
	if snap.CombatActions != nil {
		s.Combat.Actions = snap.CombatActions
	}
	s.Combat.BackgroundURL = snap.CombatBackgroundURL

	if c := snap.Character; c != nil {
		restoreCharacter(c, snap.CurrentCharacterHP)
		s.Character = c
		s.Phase = Playing
	}
	if snap.GameState != "" && s.Character != nil {
		s.Phase = snap.GameState
	}
	s.GameOverReason = snap.GameOverReason
	s.PendingCheck = snap.PendingSkillCheck

	if snap.Messages != nil {
		s.Transcript = snap.Messages
	} else {
		s.Transcript = rebuildTranscript(s.History.Turns())
	}
	// Image requests do not survive a reload.
	for i := range s.Transcript {
		s.Transcript[i].ImageIsLoading = false
	}
	return s
}

func restoreCharacter(c *character.Character, hp *int) {
	if c.Quests == nil {
		c.Quests = quest.Log{}
	}
	if c.Skills == nil {
		c.Skills = skill.Set{}
	}
	if c.StatModifiers == nil {
		c.StatModifiers = stat.Modifiers{}
	}
	if c.Companions == nil {
		c.Companions = []character.Companion{}
	}
	for i := range c.Companions {
		if c.Companions[i].StatusEffects == nil {
			c.Companions[i].StatusEffects = condition.Effects{}
		}
		if c.Companions[i].Skills == nil {
			c.Companions[i].Skills = skill.Set{}
		}
	}
	if c.StatusEffects == nil {
		c.StatusEffects = condition.Effects{}
	}
	if c.Inventory == nil {
		c.Inventory = inventory.Bag{}
	}
	if c.CompletedTrophies == nil {
		c.CompletedTrophies = []string{}
	}
	if c.MaxHP <= 0 {
		c.MaxHP = character.MaxHPFor(c.BaseStats)
	}
	if c.Level < 1 {
		c.Level = 1
	}
	if c.XPToNextLevel <= 0 {
		c.XPToNextLevel = character.FirstLevelThreshold
	}
	c.CurrentHP = c.MaxHP
	if hp != nil {
		c.CurrentHP = *hp
	}
	c.AdjustHP(0)
}
