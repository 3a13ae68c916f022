package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/generator"
)

var (
	// ErrAssistant wraps every creation-assistant failure.
	ErrAssistant = errors.New("L'assistant IA a rencontré une erreur. Veuillez réessayer.")
	// ErrIncompleteProfile is returned when stats are requested before the look
	// and background are written.
	ErrIncompleteProfile = errors.New("look and background are required to generate stats")
	// ErrUnknownField is returned for a creation field the assistant cannot write.
	ErrUnknownField = errors.New("unknown creation field")
)

// Adventure is the outcome of the creation screen.
type Adventure struct {
	Premise string
	// Character is the player character. Zero stats are generated from the
	// race, class, look, and background.
	Character character.Creation
	// Prologue opens the story; it is generated when empty.
	Prologue  string
	Narration session.Narration
}

// StartAdventure replaces the active session with a new one built from adv,
// then runs the opening turn.
//
// Precondition: adv.Character.Name must be non-empty.
// Postcondition: on success the new session is active, saved, and PLAYING (or
// GAME_OVER if the opening turn ended it). Returns the session id.
func (e *Engine) StartAdventure(ctx context.Context, adv Adventure) (string, error) {
	release, err := e.acquire()
	if err != nil {
		return "", err
	}
	defer release()

	st := session.New()
	st.Phase = session.CreatingAdventure
	st.Sampling = e.cfg.Sampling
	st.Narration = adv.Narration

	creation := adv.Character
	if creation.Stats == (stat.Block{}) {
		creation.Stats, err = e.generateStats(ctx, profileOf(creation))
		if err != nil {
			return "", err
		}
	}
	creation.Stats = e.repair(creation.Stats)
	c, err := character.New(creation)
	if err != nil {
		return "", err
	}
	st.Character = c

	prologue := strings.TrimSpace(adv.Prologue)
	if prologue == "" {
		prologue, err = e.gen.WriteField(ctx, ProloguePrompt(Draft{
			Premise:    adv.Premise,
			Race:       creation.Race,
			Class:      creation.Class,
			Name:       creation.Name,
			Look:       creation.Look,
			Background: creation.Background,
			Narration:  adv.Narration,
		}))
		if err != nil {
			e.logger.Warn("prologue generation failed, using premise", zap.Error(err))
			prologue = adv.Premise
		}
	}
	st.Phase = session.Playing
	e.st = st
	if prologue != "" {
		opening := "*" + prologue + "*"
		st.History.Append(history.ModelTurn(opening, nil))
		st.AddMessage(history.Model, opening, false)
	}
	e.logger.Info("adventure started",
		zap.String("session", st.ID),
		zap.String("character", c.Name),
		zap.String("class", c.Class),
	)
	e.converse(ctx, st, StartupPrompt, true)
	return st.ID, nil
}

func profileOf(c character.Creation) generator.Profile {
	return generator.Profile{Race: c.Race, Class: c.Class, Look: c.Look, Background: c.Background}
}

func (e *Engine) generateStats(ctx context.Context, p generator.Profile) (stat.Block, error) {
	if strings.TrimSpace(p.Look) == "" || strings.TrimSpace(p.Background) == "" {
		return stat.Block{}, ErrIncompleteProfile
	}
	b, err := e.gen.GenerateStats(ctx, p)
	if err != nil {
		e.logger.Warn("stat generation failed", zap.Error(err))
		return stat.Block{}, fmt.Errorf("%w: %w", ErrAssistant, err)
	}
	return b, nil
}

// repair applies the configured policy to generated stats and logs what it fixed.
func (e *Engine) repair(b stat.Block) stat.Block {
	fixed, report := stat.Repair(b, e.cfg.RepairPolicy)
	if len(report.Floored) > 0 || report.TotalMismatch() {
		e.logger.Warn("creation stats repaired",
			zap.String("policy", string(e.cfg.RepairPolicy)),
			zap.Int("total_before", report.TotalBefore),
			zap.Int("total_after", fixed.Total()),
			zap.Bool("rescaled", report.Rescaled),
		)
	}
	return fixed
}

// Field is a creation input the assistant can write.
type Field string

const (
	PremiseField    Field = "premise"
	NameField       Field = "name"
	LookField       Field = "look"
	BackgroundField Field = "background"
	PrologueField   Field = "prologue"
)

// Draft is the creation screen as filled so far.
type Draft struct {
	Premise    string
	Race       string
	Class      string
	Name       string
	Look       string
	Background string
	Narration  session.Narration
}

func (d Draft) context() string {
	return fmt.Sprintf("Contexte: %s. Mon personnage est un(e) %s %s", d.Premise, d.Race, d.Class)
}

func (d Draft) named() string {
	name := d.Name
	if name == "" {
		name = "Inconnu"
	}
	return fmt.Sprintf("%s nommé(e) %s", d.context(), name)
}

// FieldPromptFor builds the request for field.
func FieldPromptFor(field Field, d Draft) (string, error) {
	switch field {
	case PremiseField:
		return "Génère trois accroches (premise) courtes et distinctes pour une aventure de jeu de rôle textuel. Chaque accroche doit faire une seule phrase. Sépare-les par le caractère \"|\".", nil
	case NameField:
		return d.context() + ". Génère un nom approprié.", nil
	case LookField:
		return d.named() + ". Décris son apparence en un paragraphe.", nil
	case BackgroundField:
		return d.named() + ". Rédige une courte histoire personnelle (background) pour ce personnage.", nil
	case PrologueField:
		return ProloguePrompt(d), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// ProloguePrompt builds the request for the opening narration.
func ProloguePrompt(d Draft) string {
	tone := string(d.Narration.Tone)
	if d.Narration.Tone == session.CustomTone && d.Narration.CustomTone != "" {
		tone = d.Narration.CustomTone
	}
	var b strings.Builder
	b.WriteString("Tu es un maître du jeu talentueux. Basé sur le contexte et le personnage suivants, rédige un prologue de départ immersif et engageant (2-3 paragraphes) pour une aventure de jeu de rôle textuel. Termine en laissant le joueur face à une situation qui appelle une action.\n")
	fmt.Fprintf(&b, "- Prémisse: %s\n", d.Premise)
	fmt.Fprintf(&b, "- Personnage: %s, un(e) %s %s\n", d.Name, d.Race, d.Class)
	fmt.Fprintf(&b, "- Apparence: %s\n", d.Look)
	fmt.Fprintf(&b, "- Histoire: %s\n", d.Background)
	fmt.Fprintf(&b, "- Ton: %s\n", tone)
	fmt.Fprintf(&b, "- Maturité: %s", d.Narration.Maturity)
	return b.String()
}

// Suggest asks the assistant to write one creation field. It does not touch
// the active session and may run concurrently with a turn.
func (e *Engine) Suggest(ctx context.Context, field Field, d Draft) (string, error) {
	prompt, err := FieldPromptFor(field, d)
	if err != nil {
		return "", err
	}
	text, err := e.gen.WriteField(ctx, prompt)
	if err != nil {
		e.logger.Warn("creation assistant failed", zap.String("field", string(field)), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrAssistant, err)
	}
	if field == PremiseField {
		for _, p := range strings.Split(text, "|") {
			if p = strings.TrimSpace(p); p != "" {
				return p, nil
			}
		}
		return "", fmt.Errorf("%w: %w", ErrAssistant, generator.ErrEmptyResponse)
	}
	return text, nil
}

// SuggestStats asks the assistant to distribute creation points.
//
// Postcondition: returns ErrIncompleteProfile unless look and background are
// set; the result has passed the configured repair policy.
func (e *Engine) SuggestStats(ctx context.Context, d Draft) (stat.Block, error) {
	b, err := e.generateStats(ctx, generator.Profile{Race: d.Race, Class: d.Class, Look: d.Look, Background: d.Background})
	if err != nil {
		return stat.Block{}, err
	}
	return e.repair(b), nil
}
