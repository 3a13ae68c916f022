package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/cory-johannsen/taleweaver/internal/game/dice"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
)

// InputMode frames a line of player input.
type InputMode string

const (
	Do    InputMode = "Faire"
	Speak InputMode = "Dire"
	Story InputMode = "Histoire"
)

// ParseInputMode validates s as an InputMode, case-insensitively.
func ParseInputMode(s string) (InputMode, error) {
	for _, m := range []InputMode{Do, Speak, Story} {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown input mode %q", s)
}

// Format renders text as tagged player input, e.g. "[Faire] ouvrir la porte".
func (m InputMode) Format(text string) string {
	return fmt.Sprintf("[%s] %s", m, text)
}

// Submit sends raw player input to the generator and runs the turn to completion.
//
// Postcondition: returns ErrBusy, ErrNoSession, ErrGameOver, or
// ErrSkillCheckPending without touching the session; otherwise nil.
// Generator failures are reported through the listener.
func (e *Engine) Submit(ctx context.Context, text string) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()
	st, err := e.playing()
	if err != nil {
		return err
	}
	if st.PendingCheck != nil {
		return ErrSkillCheckPending
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("input must not be empty")
	}
	e.converse(ctx, st, text, false)
	return nil
}

// Say submits text framed by mode.
func (e *Engine) Say(ctx context.Context, mode InputMode, text string) error {
	return e.Submit(ctx, mode.Format(text))
}

// SkillCheckPrompt renders a resolved roll for the generator.
func SkillCheckPrompt(check session.SkillCheck, res dice.CheckResult) string {
	outcome := "Échec"
	if res.Success {
		outcome = "Succès"
	}
	return fmt.Sprintf("[SYSTEM] Résultat du jet: Jet de %s (%s): %d vs %d. %s.",
		check.Stat, check.Reason, res.Total, check.Difficulty, outcome)
}

// ResolveSkillCheck rolls the pending check with the character's effective
// stat and sends the outcome to the generator as a hidden turn.
//
// Postcondition: returns ErrNoPendingCheck when nothing is pending; otherwise
// the pending check is cleared before the follow-up turn runs.
func (e *Engine) ResolveSkillCheck(ctx context.Context) (dice.CheckResult, error) {
	release, err := e.acquire()
	if err != nil {
		return dice.CheckResult{}, err
	}
	defer release()
	st, err := e.playing()
	if err != nil {
		return dice.CheckResult{}, err
	}
	check := st.PendingCheck
	if check == nil {
		return dice.CheckResult{}, ErrNoPendingCheck
	}
	mod := dice.Modifier(st.Character.Effective(check.Stat))
	res := e.roller.Check(check.Reason, mod, check.Difficulty)
	st.PendingCheck = nil
	e.converse(ctx, st, SkillCheckPrompt(*check, res), true)
	return res, nil
}

// PerformCombatAction uses one of the cached combat actions on targetID, an
// opponent or companion id.
//
// Postcondition: returns ErrUnknownAction or ErrTargetRequired without
// touching the session; otherwise the turn passes to the generator.
func (e *Engine) PerformCombatAction(ctx context.Context, actionID, targetID string) (dice.CheckResult, error) {
	release, err := e.acquire()
	if err != nil {
		return dice.CheckResult{}, err
	}
	defer release()
	st, err := e.playing()
	if err != nil {
		return dice.CheckResult{}, err
	}
	if !st.Combat.InCombat() {
		return dice.CheckResult{}, fmt.Errorf("%w: not in combat", ErrUnknownAction)
	}
	action, ok := st.Combat.Actions.Find(actionID)
	if !ok {
		return dice.CheckResult{}, fmt.Errorf("%w: %q", ErrUnknownAction, actionID)
	}
	targetName := ""
	if action.NeedsTarget() {
		targetName, ok = targetNameOf(st, targetID)
		if !ok {
			return dice.CheckResult{}, fmt.Errorf("%w: %q", ErrTargetRequired, targetID)
		}
	}

	res := e.roller.Check(action.Name, dice.Modifier(st.Character.Effective(action.Skill)), 0)
	st.Combat.PerformAction()
	var text string
	if targetName != "" {
		text = fmt.Sprintf("[ACTION DE COMBAT] J'utilise \"%s\" sur \"%s\". Résultat du jet: %d.", action.Name, targetName, res.Total)
	} else {
		text = fmt.Sprintf("[ACTION DE COMBAT] J'utilise \"%s\". Résultat du jet: %d.", action.Name, res.Total)
	}
	e.converse(ctx, st, text, false)
	return res, nil
}

func targetNameOf(st *session.State, id string) (string, bool) {
	if id == "" {
		return "", false
	}
	if o := st.Combat.OpponentByID(id); o != nil && !o.IsDown() {
		return o.Name, true
	}
	for _, c := range st.Character.Companions {
		if c.ID == id {
			return c.Name, true
		}
	}
	return "", false
}

// UseItem tells the generator the character uses an item. The turn is hidden
// during combat.
func (e *Engine) UseItem(ctx context.Context, name string) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()
	st, err := e.playing()
	if err != nil {
		return err
	}
	if _, ok := st.Character.Inventory.Find(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	e.converse(ctx, st, fmt.Sprintf("[ACTION] J'utilise l'objet: %s.", name), st.Combat.InCombat())
	return nil
}

// DropItem discards the whole inventory entry without involving the generator.
func (e *Engine) DropItem(ctx context.Context, name string) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()
	st, err := e.playing()
	if err != nil {
		return err
	}
	if _, ok := st.Character.Inventory.Find(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	st.Character.Inventory = st.Character.Inventory.Remove(name, 0)
	e.save(ctx, st)
	return nil
}

// FastTravel asks the generator to move the character to a discovered location.
func (e *Engine) FastTravel(ctx context.Context, locationID string) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()
	st, err := e.playing()
	if err != nil {
		return err
	}
	if st.Combat.InCombat() {
		return fmt.Errorf("%w: cannot travel during combat", ErrUnknownLocation)
	}
	loc, ok := st.World.Find(locationID)
	if !ok || !loc.Discovered {
		return fmt.Errorf("%w: %q", ErrUnknownLocation, locationID)
	}
	e.converse(ctx, st, fmt.Sprintf("[ACTION] Voyager rapidement vers %s.", loc.Name), false)
	return nil
}

// SpendStatPoints moves n unspent points into base stat k.
//
// Postcondition: returns ErrInsufficientPoints when n exceeds the unspent
// points; otherwise max HP is recomputed and the session saved.
func (e *Engine) SpendStatPoints(ctx context.Context, k stat.Key, n int) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()
	st, err := e.playing()
	if err != nil {
		return err
	}
	if err := st.Character.SpendStatPoints(k, n); err != nil {
		return err
	}
	e.save(ctx, st)
	return nil
}

// UpdateSettings replaces the sampling and narration preferences.
func (e *Engine) UpdateSettings(ctx context.Context, sampling session.Sampling, narration session.Narration) error {
	release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()
	if e.st == nil {
		return ErrNoSession
	}
	e.st.Sampling = sampling
	e.st.Narration = narration
	e.save(ctx, e.st)
	return nil
}
