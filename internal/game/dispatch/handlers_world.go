package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/condition"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/game/tool"
	"github.com/cory-johannsen/taleweaver/internal/game/world"
)

// SceneImageStarted is the result data of generateSceneImage.
const SceneImageStarted = "Image generation started."

func (d *Dispatcher) generateSceneImage(_ context.Context, r *request) (any, error) {
	var args tool.SceneImageArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	req := ImageRequest{Kind: SceneImage, Prompt: ScenePromptPrefix + args.Prompt}
	if m := r.st.LastMessage(); m != nil {
		m.ImageIsLoading = true
		req.MessageID = m.ID
	}
	r.fx.Images = append(r.fx.Images, req)
	return SceneImageStarted, nil
}

func (d *Dispatcher) requestSkillCheck(_ context.Context, r *request) (any, error) {
	var args tool.SkillCheckArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	k, err := stat.ParseKey(args.Skill)
	if err != nil {
		return nil, err
	}
	r.st.PendingCheck = &session.SkillCheck{
		Stat:       k,
		Difficulty: args.Difficulty,
		Reason:     args.Reason,
		CallID:     r.call.ID,
	}
	return nil, nil
}

func (d *Dispatcher) startCombat(ctx context.Context, r *request) (any, error) {
	var args tool.StartCombatArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	specs := make([]combat.OpponentSpec, len(args.Opponents))
	for i, o := range args.Opponents {
		specs[i] = combat.OpponentSpec{Name: o.Name, HP: o.HP}
	}
	opps := r.st.Combat.Start(specs)
	r.fx.Images = append(r.fx.Images, ImageRequest{Kind: CombatBackground, Prompt: CombatPromptPrefix + args.SceneDescription})

	c := r.char()
	generated, err := d.actions.GenerateCombatActions(ctx, c, opps)
	if err != nil {
		d.logger.Warn("generating combat actions", zap.Error(err))
		r.fx.warn("Erreur lors de la génération des actions. Utilisation des compétences de base.")
		generated = nil
	}
	r.st.Combat.SetActions(generated, c.Skills)

	ids := make([]string, len(opps))
	for i, o := range opps {
		ids[i] = o.ID
	}
	return map[string]any{"opponentIds": ids, "actions": len(r.st.Combat.Actions)}, nil
}

func (d *Dispatcher) endCombat(_ context.Context, r *request) (any, error) {
	r.st.Combat.End()
	r.fx.CombatEnded = true
	return nil, nil
}

func (d *Dispatcher) updateHealth(_ context.Context, r *request) (any, error) {
	var args tool.UpdateHealthArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	var skipped []string
	for _, u := range args.Updates {
		t, ok := resolve(r.st, u.TargetName)
		if !ok {
			skipped = append(skipped, u.TargetName)
			continue
		}
		t.adjustHP(r.char(), u.HPChange)
		r.st.Combat.AddVisual(combat.HPEffect(t.id, u.HPChange))
		if t.player {
			r.hpChanged = true
		}
	}
	if len(skipped) > 0 {
		d.logger.Debug("health targets not found", zap.Strings("targets", skipped))
	}
	return nil, nil
}

func (d *Dispatcher) applyStatus(_ context.Context, r *request) (any, error) {
	var args tool.ApplyStatusArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	t, ok := resolve(r.st, args.TargetName)
	if !ok {
		d.logger.Debug("status target not found", zap.String("target", args.TargetName))
		return nil, nil
	}
	e := d.statuses.Describe(condition.StatusEffect{Name: args.Name, Description: args.Description})
	effects := t.effects(r.char())
	*effects = effects.Apply(e)
	r.st.Combat.AddVisual(combat.StatusVisual(t.id, e.Name))
	return nil, nil
}

func (d *Dispatcher) removeStatus(_ context.Context, r *request) (any, error) {
	var args tool.RemoveStatusArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	t, ok := resolve(r.st, args.TargetName)
	if !ok {
		d.logger.Debug("status target not found", zap.String("target", args.TargetName))
		return nil, nil
	}
	effects := t.effects(r.char())
	*effects = effects.Remove(args.EffectName)
	return nil, nil
}

func (d *Dispatcher) updateMap(_ context.Context, r *request) (any, error) {
	var args tool.UpdateMapArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	updates := make([]world.LocationUpdate, 0, len(args.Locations))
	for _, l := range args.Locations {
		typ, err := world.ParseLocationType(l.Type)
		if err != nil {
			return nil, err
		}
		updates = append(updates, world.LocationUpdate{
			ID:             l.ID,
			Name:           l.Name,
			Description:    l.Description,
			Type:           typ,
			NearLocationID: l.NearLocationID,
		})
	}
	placements := r.st.World.Upsert(d.src, updates)
	out := make([]map[string]any, 0, len(placements))
	for _, p := range placements {
		if p.Collided {
			d.logger.Info("location placed despite collision", zap.String("location", p.ID), zap.Int("attempts", p.Attempts))
		}
		out = append(out, map[string]any{"id": p.ID, "x": p.Position.X, "y": p.Position.Y})
	}
	return out, nil
}

func (d *Dispatcher) updatePlayerPosition(_ context.Context, r *request) (any, error) {
	var args tool.PlayerPositionArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	loc, ok := r.st.World.Find(args.LocationID)
	if !ok {
		d.logger.Debug("unknown location", zap.String("location", args.LocationID))
		return nil, nil
	}
	r.char().Position = loc.Position
	return map[string]any{"x": loc.Position.X, "y": loc.Position.Y}, nil
}

func (d *Dispatcher) updateTimeAndWeather(_ context.Context, r *request) (any, error) {
	var args tool.TimeAndWeatherArgs
	if err := r.call.Decode(&args); err != nil {
		return nil, err
	}
	t, err := world.ParseTime(args.Time)
	if err != nil {
		return nil, err
	}
	w, err := world.ParseWeather(args.Weather)
	if err != nil {
		return nil, err
	}
	r.st.World.SetTimeAndWeather(t, w)
	return nil, nil
}
