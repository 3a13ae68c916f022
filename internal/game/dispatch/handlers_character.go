package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/inventory"
	"github.com/cory-johannsen/taleweaver/internal/game/quest"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/game/tool"
	"github.com/cory-johannsen/taleweaver/internal/game/trophy"
)

var errNegativeAmount = errors.New("amount must be >= 0")

func (d *Dispatcher) addItems(_ context.Context, r *request) (any, error) {
	var args tool.AddItemsArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	bag := r.char().Inventory
	for _, it := range args.Items {
		kind, err := inventory.ParseKind(it.Type)
		if err != nil {
			return nil, err
		}
		qty := 1
		if it.Quantity != nil && *it.Quantity > 0 {
			qty = *it.Quantity
		}
		bag, err = bag.Add(inventory.Item{
			Name:        it.Name,
			Description: it.Description,
			Kind:        kind,
			Quantity:    qty,
			Category:    it.Category,
		})
		if err != nil {
			return nil, err
		}
	}
	r.char().Inventory = bag
	return nil, nil
}

func (d *Dispatcher) removeItem(_ context.Context, r *request) (any, error) {
	var args tool.RemoveItemArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	qty := 0
	if args.Quantity != nil {
		qty = *args.Quantity
	}
	r.char().Inventory = r.char().Inventory.Remove(args.ItemName, qty)
	return nil, nil
}

func (r *request) amount() (int, error) {
	var args tool.AddMoneyArgs
	if err := r.call.Decode(&args); err != nil {
		return 0, err
	}
	if args.Amount < 0 {
		return 0, fmt.Errorf("%w, got %d", errNegativeAmount, args.Amount)
	}
	return args.Amount, nil
}

func (d *Dispatcher) addMoney(_ context.Context, r *request) (any, error) {
	n, err := r.amount()
	if err != nil {
		return nil, err
	}
	r.char().AddGold(n)
	return map[string]any{"money": r.char().Money}, nil
}

func (d *Dispatcher) removeMoney(_ context.Context, r *request) (any, error) {
	n, err := r.amount()
	if err != nil {
		return nil, err
	}
	r.char().RemoveGold(n)
	return map[string]any{"money": r.char().Money}, nil
}

func (d *Dispatcher) awardXP(_ context.Context, r *request) (any, error) {
	var args tool.AwardXPArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	if args.Amount < 0 {
		return nil, fmt.Errorf("%w, got %d", errNegativeAmount, args.Amount)
	}
	c := r.char()
	r.fx.info(fmt.Sprintf("+%d XP: %s", args.Amount, args.Reason))
	before := c.Level
	gained := c.AwardXP(args.Amount)
	for lvl := before + 1; lvl <= before+gained; lvl++ {
		r.fx.info(fmt.Sprintf("Vous êtes passé au niveau %d!", lvl))
	}
	return map[string]any{"level": c.Level, "xp": c.XP, "xpToNextLevel": c.XPToNextLevel}, nil
}

func (d *Dispatcher) unlockTrophy(_ context.Context, r *request) (any, error) {
	var args tool.UnlockTrophyArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	return d.unlock(r, args.TrophyID, args.Reason)
}

func (d *Dispatcher) unlock(r *request, id, reason string) (any, error) {
	c := r.char()
	before := c.CurrentHP
	def, err := c.UnlockTrophy(d.trophies, id)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return map[string]any{"alreadyUnlocked": true}, nil
	}
	r.hpChanged = c.CurrentHP != before
	r.fx.info(fmt.Sprintf("Trophée débloqué: %s! (%s)", def.Name, reason))
	return map[string]any{"trophy": def.Name}, nil
}

func (d *Dispatcher) startQuest(_ context.Context, r *request) (any, error) {
	var args tool.StartQuestArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	c := r.char()
	log, err := c.Quests.Start(quest.New(args.QuestID, args.Title, args.Description, args.Objectives))
	if err != nil {
		return nil, err
	}
	c.Quests = log
	r.fx.info("Nouvelle quête: " + args.Title)
	return nil, nil
}

func (d *Dispatcher) updateQuest(_ context.Context, r *request) (any, error) {
	var args tool.UpdateQuestArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	u := quest.Update{
		CompleteObjective: args.ObjectiveToComplete,
		NewObjective:      args.NewObjective,
		NewDescription:    args.NewDescription,
	}
	if args.Status != "" {
		st, err := quest.ParseStatus(args.Status)
		if err != nil {
			return nil, err
		}
		u.Status = st
	}
	c := r.char()
	before, ok := c.Quests.Find(args.QuestID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", quest.ErrNotFound, args.QuestID)
	}
	log, q, err := c.Quests.Apply(args.QuestID, u)
	if err != nil {
		return nil, err
	}
	c.Quests = log
	if u.CompleteObjective != "" {
		r.fx.info("Objectif terminé: " + u.CompleteObjective)
	}
	if u.NewObjective != "" {
		r.fx.info("Nouvel objectif: " + u.NewObjective)
	}
	if q.Status != before.Status {
		switch q.Status {
		case quest.Completed:
			r.fx.info(fmt.Sprintf("Quête terminée: %s!", q.Title))
		case quest.Failed:
			r.fx.warn(fmt.Sprintf("Quête échouée: %s.", q.Title))
		}
	}
	return map[string]any{"status": q.Status}, nil
}

func (d *Dispatcher) updateCharacterStats(_ context.Context, r *request) (any, error) {
	var args tool.UpdateStatsArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	c := r.char()
	b := c.BaseStats
	for _, u := range args.Updates {
		k, err := stat.ParseKey(u.Stat)
		if err != nil {
			return nil, err
		}
		b = b.With(k, max(stat.Floor, b.Get(k)+u.Change))
		r.fx.info(fmt.Sprintf("Attribut permanent changé: %s %s (%s)", strings.ToUpper(string(k)), signed(u.Change), u.Reason))
	}
	c.SetBaseStats(b)
	r.hpChanged = true
	return map[string]any{"pv": c.MaxHP, "currentHp": c.CurrentHP}, nil
}

func (d *Dispatcher) applyStatModifier(_ context.Context, r *request) (any, error) {
	var args tool.StatModifierArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	k, err := stat.ParseKey(args.Stat)
	if err != nil {
		return nil, err
	}
	r.char().ApplyModifier(stat.Modifier{Stat: k, Value: args.Value, Reason: args.Reason, DurationInTurns: args.DurationInTurns})
	r.fx.info(fmt.Sprintf("Effet appliqué: %s (%s %s)", args.Reason, strings.ToUpper(string(k)), signed(args.Value)))
	return nil, nil
}

func (d *Dispatcher) removeStatModifier(_ context.Context, r *request) (any, error) {
	var args tool.RemoveModifierArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	r.char().RemoveModifier(args.Reason)
	r.fx.info("Effet terminé: " + args.Reason)
	return nil, nil
}

func (d *Dispatcher) recruitCompanion(ctx context.Context, r *request) (any, error) {
	var args tool.RecruitArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	rec := character.Recruit{
		Name:       args.Name,
		Race:       args.Race,
		Class:      args.Class,
		Background: args.Background,
		HP:         args.HP,
		Stats:      args.Stats,
	}
	skills, err := d.actions.GenerateCompanionActions(ctx, rec)
	if err != nil {
		d.logger.Warn("generating companion actions", zap.String("companion", rec.Name), zap.Error(err))
		r.fx.warn("Erreur lors du recrutement du compagnon.")
		skills = nil
	}
	comp := character.NewCompanion(rec, skills.Valid())
	r.char().AddCompanion(comp)
	r.fx.info(comp.Name + " a rejoint votre groupe !")
	if _, err := d.unlock(r, trophy.FirstAlly, fmt.Sprintf("Pour avoir recruté %s.", comp.Name)); err != nil {
		d.logger.Warn("unlocking first ally trophy", zap.Error(err))
	}
	return map[string]any{"id": comp.ID, "skills": len(comp.Skills)}, nil
}

func (d *Dispatcher) dismissCompanion(_ context.Context, r *request) (any, error) {
	var args tool.DismissArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	n := r.char().DismissCompanion(args.Name)
	if n > 0 {
		r.fx.info(fmt.Sprintf("%s a quitté votre groupe. (%s)", args.Name, args.Reason))
	}
	return map[string]any{"removed": n}, nil
}

func (d *Dispatcher) endGame(_ context.Context, r *request) (any, error) {
	var args tool.EndGameArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	r.st.EndGame(args.Reason)
	return nil, nil
}

func signed(v int) string {
	if v > 0 {
		return fmt.Sprintf("+%d", v)
	}
	return fmt.Sprintf("%d", v)
}
