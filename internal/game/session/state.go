// Package session holds the explicit state of one game session, its
// UI-facing transcript, and the snapshot blob used for persistence.
package session

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/game/world"
)

// Phase is the overall game phase.
type Phase string

const (
	Setup             Phase = "SETUP"
	CreatingAdventure Phase = "CREATING_ADVENTURE"
	Playing           Phase = "PLAYING"
	GameOver          Phase = "GAME_OVER"
)

// Maturity is the content rating of the narration.
type Maturity string

const (
	Child  Maturity = "Enfant"
	Normal Maturity = "Normal"
	Adult  Maturity = "Adulte (18+)"
)

// PointOfView is the grammatical person of the narration.
type PointOfView string

const (
	SecondPerson PointOfView = "Deuxième personne (Vous)"
	FirstPerson  PointOfView = "Première personne (Je)"
	ThirdPerson  PointOfView = "Troisième personne (Il/Elle)"
)

// Tone is the narrative register.
type Tone string

const (
	Neutral    Tone = "Neutre"
	Humorous   Tone = "Humoristique"
	Dramatic   Tone = "Dramatique"
	Poetic     Tone = "Poétique"
	CustomTone Tone = "Personnalisé"
)

// DefaultName is the session name used when the transcript is empty.
const DefaultName = "Nouvelle Aventure"

const nameLength = 40

// Sampling holds the generator sampling parameters.
type Sampling struct {
	Temperature     float32 `json:"temperature"`
	TopP            float32 `json:"topP"`
	TopK            int32   `json:"topK"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

// DefaultSampling is the sampling of a fresh session.
var DefaultSampling = Sampling{Temperature: 0.7, TopP: 0.95, TopK: 40, MaxOutputTokens: 2048}

// Narration groups the player's storytelling preferences.
type Narration struct {
	Maturity          Maturity
	CustomInstruction string
	PointOfView       PointOfView
	Tone              Tone
	CustomTone        string
}

// DefaultNarration is the storytelling setup of a fresh session.
var DefaultNarration = Narration{Maturity: Normal, PointOfView: SecondPerson, Tone: Neutral}

// SkillCheck is a roll requested by the generator and awaiting the player.
type SkillCheck struct {
	Stat       stat.Key `json:"skill"`
	Difficulty int      `json:"difficulty"`
	Reason     string   `json:"reason"`
	CallID     string   `json:"callId,omitempty"`
}

// State is the complete state of one session. It is passed explicitly through
// the engine and dispatch table; nothing about a session is held elsewhere.
//
// Invariant: Character is nil only in the Setup phase.
type State struct {
	ID             string
	Phase          Phase
	GameOverReason string
	Character      *character.Character
	World          world.State
	Combat         combat.State
	History        *history.History
	Transcript     []Message
	Sampling       Sampling
	Narration      Narration
	PendingCheck   *SkillCheck
}

// New returns an empty session in the Setup phase.
func New() *State {
	return &State{
		ID:         "session-" + uuid.NewString(),
		Phase:      Setup,
		World:      world.NewState(),
		Combat:     combat.NewState(),
		History:    history.New(),
		Transcript: []Message{},
		Sampling:   DefaultSampling,
		Narration:  DefaultNarration,
	}
}

// Name derives the session name from the first transcript message.
//
// Postcondition: result has at most 40 runes.
func (s *State) Name() string {
	if len(s.Transcript) == 0 || strings.TrimSpace(s.Transcript[0].Content) == "" {
		return DefaultName
	}
	c := s.Transcript[0].Content
	if utf8.RuneCountInString(c) <= nameLength {
		return c
	}
	return string([]rune(c)[:nameLength])
}

// IsOver reports whether the session reached GAME_OVER.
func (s *State) IsOver() bool {
	return s.Phase == GameOver
}

// EndGame moves the session to GAME_OVER with reason.
//
// Postcondition: Phase == GameOver.
func (s *State) EndGame(reason string) {
	s.Phase = GameOver
	s.GameOverReason = reason
}
