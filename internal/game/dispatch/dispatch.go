// Package dispatch applies generator tool calls to a session.State through a
// closed table of handlers, one per tool.Name.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/condition"
	"github.com/cory-johannsen/taleweaver/internal/game/dice"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/game/skill"
	"github.com/cory-johannsen/taleweaver/internal/game/tool"
	"github.com/cory-johannsen/taleweaver/internal/game/trophy"
)

var (
	// ErrNotInMode is returned for a known tool outside the active subset.
	ErrNotInMode = errors.New("tool not available in current play mode")
	// ErrNoCharacter is returned when a call arrives before character creation.
	ErrNoCharacter = errors.New("no active character")
)

// ActionGenerator produces combat actions. Calls block the dispatching turn.
type ActionGenerator interface {
	GenerateCombatActions(ctx context.Context, c *character.Character, opponents []combat.Opponent) (skill.Set, error)
	GenerateCompanionActions(ctx context.Context, r character.Recruit) (skill.Set, error)
}

type handler func(ctx context.Context, r *request) (any, error)

type registration struct {
	name tool.Name
	fn   handler
}

// request is the per-call context handed to a handler.
type request struct {
	st   *session.State
	fx   *Effects
	call tool.Call
	// hpChanged is set by handlers that mutate the player's current HP.
	hpChanged bool
}

func (r *request) char() *character.Character {
	return r.st.Character
}

// Dispatcher is the tool dispatch table.
type Dispatcher struct {
	handlers map[tool.Name]handler
	actions  ActionGenerator
	src      dice.Source
	statuses *condition.Registry
	trophies *trophy.Catalog
	logger   *zap.Logger
}

// New builds the dispatch table.
//
// Precondition: every argument must be non-nil.
// Postcondition: Returns an error when a tool in tool.All has no handler, a
// handler is registered twice, or a handler names an unknown tool.
func New(actions ActionGenerator, src dice.Source, statuses *condition.Registry, trophies *trophy.Catalog, logger *zap.Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		actions:  actions,
		src:      src,
		statuses: statuses,
		trophies: trophies,
		logger:   logger,
	}
	table, err := buildTable(d.registrations())
	if err != nil {
		return nil, err
	}
	d.handlers = table
	return d, nil
}

func buildTable(regs []registration) (map[tool.Name]handler, error) {
	table := make(map[tool.Name]handler, len(regs))
	for _, reg := range regs {
		if _, ok := tool.Lookup(reg.name); !ok {
			return nil, fmt.Errorf("handler registered for unknown tool %q", reg.name)
		}
		if _, dup := table[reg.name]; dup {
			return nil, fmt.Errorf("duplicate handler for tool %q", reg.name)
		}
		table[reg.name] = reg.fn
	}
	var missing []error
	for _, def := range tool.All {
		if _, ok := table[def.Name]; !ok {
			missing = append(missing, fmt.Errorf("no handler for tool %q", def.Name))
		}
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}
	return table, nil
}

func (d *Dispatcher) registrations() []registration {
	return []registration{
		{tool.GenerateSceneImage, d.generateSceneImage},
		{tool.AddItemToInventory, d.addItems},
		{tool.RemoveItemFromInventory, d.removeItem},
		{tool.AddMoney, d.addMoney},
		{tool.RemoveMoney, d.removeMoney},
		{tool.RequestSkillCheck, d.requestSkillCheck},
		{tool.StartCombat, d.startCombat},
		{tool.UpdateHealth, d.updateHealth},
		{tool.EndCombat, d.endCombat},
		{tool.ApplyStatusEffect, d.applyStatus},
		{tool.RemoveStatusEffect, d.removeStatus},
		{tool.AwardXP, d.awardXP},
		{tool.UpdateMap, d.updateMap},
		{tool.UpdatePlayerPosition, d.updatePlayerPosition},
		{tool.UpdateTimeAndWeather, d.updateTimeAndWeather},
		{tool.UnlockTrophy, d.unlockTrophy},
		{tool.StartQuest, d.startQuest},
		{tool.UpdateQuest, d.updateQuest},
		{tool.UpdateCharacterStats, d.updateCharacterStats},
		{tool.ApplyStatModifier, d.applyStatModifier},
		{tool.RemoveStatModifier, d.removeStatModifier},
		{tool.RecruitCompanion, d.recruitCompanion},
		{tool.DismissCompanion, d.dismissCompanion},
		{tool.EndGame, d.endGame},
	}
}

// Dispatch applies call to st, recording side effects in fx.
//
// Precondition: st and fx must be non-nil.
// Postcondition: never returns an error; failures are failed results. A failed
// or ignored result leaves st unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, st *session.State, fx *Effects, call tool.Call) tool.Result {
	def, known := tool.Lookup(call.Name)
	if !known {
		d.logger.Warn("ignoring unknown tool", zap.String("tool", string(call.Name)))
		res := tool.OK(call, nil)
		res.Ignored = true
		return res
	}
	if !tool.Allowed(st.Combat.Mode, call.Name) {
		return d.fail(call, fmt.Errorf("%w: %s in %s", ErrNotInMode, call.Name, st.Combat.Mode))
	}
	if st.Character == nil {
		return d.fail(call, ErrNoCharacter)
	}
	if def.Parameters != nil {
		args, err := call.Normalize()
		if err != nil {
			return d.fail(call, err)
		}
		if err := def.Validate(args); err != nil {
			return d.fail(call, fmt.Errorf("invalid %s arguments: %w", call.Name, err))
		}
	}

	r := &request{st: st, fx: fx, call: call}
	data, err := d.handlers[call.Name](ctx, r)
	if err != nil {
		return d.fail(call, err)
	}
	if r.hpChanged {
		d.checkDeath(r)
	}
	d.logger.Debug("tool applied", zap.String("tool", string(call.Name)), zap.String("call_id", call.ID))
	return tool.OK(call, data)
}

func (d *Dispatcher) fail(call tool.Call, err error) tool.Result {
	d.logger.Info("tool call rejected",
		zap.String("tool", string(call.Name)),
		zap.String("call_id", call.ID),
		zap.Error(err),
	)
	return tool.Fail(call, err)
}

// checkDeath ends the game immediately in combat; in narrative mode it flags
// the death so the caller can narrate it.
func (d *Dispatcher) checkDeath(r *request) {
	c := r.char()
	if !c.IsDead() || r.st.IsOver() {
		return
	}
	if r.st.Combat.InCombat() {
		r.st.EndGame(CombatDeathReason(c.Name))
		return
	}
	r.fx.PlayerDied = true
}

// CombatDeathReason is the game-over reason of a player killed in combat.
func CombatDeathReason(name string) string {
	return fmt.Sprintf("%s a succombé à ses blessures au combat.", name)
}
