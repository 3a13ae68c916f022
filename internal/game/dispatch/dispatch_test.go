package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/condition"
	"github.com/cory-johannsen/taleweaver/internal/game/dice"
	"github.com/cory-johannsen/taleweaver/internal/game/dispatch"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/quest"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/game/skill"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/game/tool"
	"github.com/cory-johannsen/taleweaver/internal/game/trophy"
)

type fakeActions struct {
	combat    skill.Set
	companion skill.Set
	err       error
	calls     int
}

func (f *fakeActions) GenerateCombatActions(context.Context, *character.Character, []combat.Opponent) (skill.Set, error) {
	f.calls++
	return f.combat, f.err
}

func (f *fakeActions) GenerateCompanionActions(context.Context, character.Recruit) (skill.Set, error) {
	f.calls++
	return f.companion, f.err
}

func newDispatcher(t *testing.T, actions *fakeActions) *dispatch.Dispatcher {
	t.Helper()
	d, err := dispatch.New(actions, dice.NewSeqSource(0), condition.DefaultRegistry(), trophy.DefaultCatalog(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return d
}

func newState(t require.TestingT) *session.State {
	c, err := character.New(character.Creation{
		Name: "Aria", Race: "Elfe", Class: "Mage",
		Stats: stat.Block{Cha: 12, Int: 15, Tec: 10, Atk: 10},
	})
	require.NoError(t, err)
	s := session.New()
	s.Character = c
	s.Phase = session.Playing
	return s
}

func call(name tool.Name, args map[string]any) tool.Call {
	return tool.Call{ID: "c-" + string(name), Name: name, Args: args}
}

func action(id string) skill.Action {
	return skill.Action{
		ID: id, Name: id, Skill: stat.Attack,
		Effects: []skill.Effect{{Type: skill.Damage, Target: skill.Opponent, MinValue: 1, MaxValue: 2}},
	}
}

func TestNew_TableIsExhaustive(t *testing.T) {
	names := make([]tool.Name, 0, len(tool.All))
	for _, d := range tool.All {
		names = append(names, d.Name)
	}
	require.NoError(t, dispatch.CheckRegistrations(names))

	err := dispatch.CheckRegistrations(names[1:])
	assert.ErrorContains(t, err, string(names[0]))

	err = dispatch.CheckRegistrations(append(names, names[0]))
	assert.ErrorContains(t, err, "duplicate")

	err = dispatch.CheckRegistrations(append(names, "castSpell"))
	assert.ErrorContains(t, err, "unknown tool")
}

func TestDispatch_UnknownToolIgnored(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	res := d.Dispatch(context.Background(), st, &dispatch.Effects{}, call("castSpell", nil))
	assert.True(t, res.Success)
	assert.True(t, res.Ignored)
}

func TestDispatch_InvalidArgumentsRejected(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	res := d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.AddMoney, map[string]any{"amount": "lots"}))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "amount")
	assert.Equal(t, 50, st.Character.Money)
}

func TestDispatch_NoCharacter(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	res := d.Dispatch(context.Background(), session.New(), &dispatch.Effects{}, call(tool.AddMoney, map[string]any{"amount": 5}))
	assert.False(t, res.Success)
}

func TestPropertyDispatch_CombatSubsetRejectionLeavesStateUnchanged(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	narrativeOnly := []tool.Call{
		call(tool.AddMoney, map[string]any{"amount": 10}),
		call(tool.UpdateMap, map[string]any{"locations": []any{map[string]any{"id": "a", "name": "A", "description": "", "type": "Ville"}}}),
		call(tool.StartQuest, map[string]any{"questId": "q", "title": "Q", "description": "", "objectives": []any{"x"}}),
		call(tool.StartCombat, map[string]any{"opponents": []any{map[string]any{"name": "Loup", "hp": 5}}, "sceneDescription": "forêt"}),
		call(tool.RequestSkillCheck, map[string]any{"skill": "int", "difficulty": 10, "reason": "r"}),
		call(tool.UpdateCharacterStats, map[string]any{"updates": []any{map[string]any{"stat": "tec", "change": 2, "reason": "r"}}}),
	}
	rapid.Check(t, func(rt *rapid.T) {
		st := newState(rt)
		st.Combat.Start([]combat.OpponentSpec{{Name: "Gobelin", HP: 10}})
		before, err := session.Encode(st, testTime)
		require.NoError(rt, err)

		c := rapid.SampledFrom(narrativeOnly).Draw(rt, "call")
		fx := &dispatch.Effects{}
		res := d.Dispatch(context.Background(), st, fx, c)
		assert.False(rt, res.Success)
		assert.Contains(rt, res.Error, "play mode")

		after, err := session.Encode(st, testTime)
		require.NoError(rt, err)
		assert.JSONEq(rt, string(before), string(after))
		assert.Empty(rt, fx.Notices)
	})
}

func TestDispatch_EndCombatRejectedInNarrative(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	fx := &dispatch.Effects{}
	res := d.Dispatch(context.Background(), st, fx, call(tool.EndCombat, nil))
	assert.False(t, res.Success)
	assert.False(t, fx.CombatEnded)
}

func TestUpdateHealth_PriorityAndVisuals(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	st.Character.AddCompanion(character.NewCompanion(character.Recruit{Name: "Borin", HP: 30}, nil))
	st.Combat.Start([]combat.OpponentSpec{{Name: "Gobelin", HP: 10}, {Name: "Borin", HP: 10}})

	res := d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.UpdateHealth, map[string]any{
		"updates": []any{
			map[string]any{"targetName": "Joueur", "hpChange": -5},
			map[string]any{"targetName": "borin", "hpChange": -40},
			map[string]any{"targetName": "GOBELIN", "hpChange": 10},
			map[string]any{"targetName": "Fantôme", "hpChange": -1},
		},
	}))
	require.True(t, res.Success)

	assert.Equal(t, st.Character.MaxHP-5, st.Character.CurrentHP)
	assert.Equal(t, 0, st.Character.Companions[0].HP, "companion wins over an opponent of the same name")
	assert.Equal(t, 10, st.Combat.Opponents[1].HP)
	assert.Equal(t, 10, st.Combat.Opponents[0].HP, "heal is clamped at max")

	require.Len(t, st.Combat.Visuals, 3)
	assert.Equal(t, combat.PlayerTargetID, st.Combat.Visuals[0].TargetID)
	assert.Equal(t, "-5", st.Combat.Visuals[0].Content)
	assert.Equal(t, "+10", st.Combat.Visuals[2].Content)
}

func TestPropertyUpdateHealth_PlayerHPClamped(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	rapid.Check(t, func(rt *rapid.T) {
		st := newState(rt)
		deltas := rapid.SliceOfN(rapid.IntRange(-500, 500), 1, 10).Draw(rt, "deltas")
		for _, delta := range deltas {
			d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.UpdateHealth, map[string]any{
				"updates": []any{map[string]any{"targetName": "joueur", "hpChange": delta}},
			}))
			assert.GreaterOrEqual(rt, st.Character.CurrentHP, 0)
			assert.LessOrEqual(rt, st.Character.CurrentHP, st.Character.MaxHP)
		}
	})
}

func TestUpdateHealth_DeathInNarrativeIsFlagged(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	fx := &dispatch.Effects{}
	d.Dispatch(context.Background(), st, fx, call(tool.UpdateHealth, map[string]any{
		"updates": []any{map[string]any{"targetName": "player", "hpChange": -1000}},
	}))
	assert.True(t, fx.PlayerDied)
	assert.Equal(t, session.Playing, st.Phase)
}

func TestUpdateHealth_DeathInCombatEndsGame(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	st.Combat.Start([]combat.OpponentSpec{{Name: "Dragon", HP: 300}})
	fx := &dispatch.Effects{}
	d.Dispatch(context.Background(), st, fx, call(tool.UpdateHealth, map[string]any{
		"updates": []any{map[string]any{"targetName": "joueur", "hpChange": -1000}},
	}))
	assert.False(t, fx.PlayerDied)
	assert.Equal(t, session.GameOver, st.Phase)
	assert.Equal(t, "Aria a succombé à ses blessures au combat.", st.GameOverReason)
}

func TestStartCombat_PadsGeneratedActions(t *testing.T) {
	actions := &fakeActions{combat: skill.Set{action("a1"), action("a2")}}
	d := newDispatcher(t, actions)
	st := newState(t)
	fx := &dispatch.Effects{}
	res := d.Dispatch(context.Background(), st, fx, call(tool.StartCombat, map[string]any{
		"opponents":        []any{map[string]any{"name": "Loup", "hp": 12}},
		"sceneDescription": "une clairière",
	}))
	require.True(t, res.Success)
	assert.Equal(t, combat.Combat, st.Combat.Mode)
	assert.Equal(t, combat.PlayerTurn, st.Combat.TurnOwner)
	require.Len(t, st.Combat.Opponents, 1)
	assert.NotEmpty(t, st.Combat.Opponents[0].ID)
	assert.Equal(t, 12, st.Combat.Opponents[0].MaxHP)

	ids := make([]string, 0, len(st.Combat.Actions))
	for _, a := range st.Combat.Actions {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a1", "a2", skill.BasicAttack.ID, "fireball"}, ids)

	require.Len(t, fx.Images, 1)
	assert.Equal(t, dispatch.CombatBackground, fx.Images[0].Kind)
	assert.Equal(t, "dramatic fantasy combat scene, une clairière", fx.Images[0].Prompt)
}

func TestStartCombat_GeneratorFailureFallsBack(t *testing.T) {
	d := newDispatcher(t, &fakeActions{err: errors.New("quota")})
	st := newState(t)
	fx := &dispatch.Effects{}
	res := d.Dispatch(context.Background(), st, fx, call(tool.StartCombat, map[string]any{
		"opponents":        []any{map[string]any{"name": "Loup", "hp": 12}},
		"sceneDescription": "x",
	}))
	require.True(t, res.Success)
	assert.Equal(t, st.Character.Skills.Fit(combat.PlayerActions, nil), st.Combat.Actions)
	require.Len(t, fx.Notices, 1)
	assert.Equal(t, dispatch.Error, fx.Notices[0].Level)
}

func TestEndCombat(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	st.Combat.Start([]combat.OpponentSpec{{Name: "Loup", HP: 3}})
	fx := &dispatch.Effects{}
	res := d.Dispatch(context.Background(), st, fx, call(tool.EndCombat, nil))
	require.True(t, res.Success)
	assert.True(t, fx.CombatEnded)
	assert.Equal(t, combat.Narrative, st.Combat.Mode)
	assert.Empty(t, st.Combat.Opponents)
}

func TestRecruitCompanion_FailureStillRecruits(t *testing.T) {
	d := newDispatcher(t, &fakeActions{err: errors.New("down")})
	st := newState(t)
	fx := &dispatch.Effects{}
	res := d.Dispatch(context.Background(), st, fx, call(tool.RecruitCompanion, map[string]any{
		"name": "Lyra", "race": "Humain", "class": "Clerc", "background": "Prêtresse", "hp": 40,
		"stats": map[string]any{"cha": 12, "int": 14, "tec": 10, "atk": 8},
	}))
	require.True(t, res.Success)
	require.Len(t, st.Character.Companions, 1)
	comp := st.Character.Companions[0]
	assert.Empty(t, comp.Skills)
	assert.Equal(t, 40, comp.MaxHP)
	assert.True(t, st.Character.HasTrophy(trophy.FirstAlly))

	texts := make([]string, 0, len(fx.Notices))
	for _, n := range fx.Notices {
		texts = append(texts, n.Text)
	}
	assert.Contains(t, texts, "Erreur lors du recrutement du compagnon.")
	assert.Contains(t, texts, "Lyra a rejoint votre groupe !")
}

func TestRecruitCompanion_TruncatesSkills(t *testing.T) {
	d := newDispatcher(t, &fakeActions{companion: skill.Set{action("a"), action("b"), action("c"), action("d")}})
	st := newState(t)
	d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.RecruitCompanion, map[string]any{
		"name": "Lyra", "race": "Humain", "class": "Clerc", "background": "", "hp": 40,
		"stats": map[string]any{"cha": 8, "int": 8, "tec": 8, "atk": 8},
	}))
	require.Len(t, st.Character.Companions, 1)
	assert.Len(t, st.Character.Companions[0].Skills, character.MaxCompanionSkills)
}

func TestDismissCompanion(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	st.Character.AddCompanion(character.NewCompanion(character.Recruit{Name: "Lyra", HP: 10}, nil))
	fx := &dispatch.Effects{}
	d.Dispatch(context.Background(), st, fx, call(tool.DismissCompanion, map[string]any{"name": "Lyra", "reason": "trahison"}))
	assert.Empty(t, st.Character.Companions)
	require.Len(t, fx.Notices, 1)
	assert.Equal(t, "Lyra a quitté votre groupe. (trahison)", fx.Notices[0].Text)
}

func TestUnlockTrophy(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	maxBefore := st.Character.MaxHP

	res := d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.UnlockTrophy, map[string]any{"trophyId": "survivor", "reason": "r"}))
	require.True(t, res.Success)
	assert.Equal(t, maxBefore+character.PVPerTec, st.Character.MaxHP)

	fx := &dispatch.Effects{}
	res = d.Dispatch(context.Background(), st, fx, call(tool.UnlockTrophy, map[string]any{"trophyId": "survivor", "reason": "r"}))
	require.True(t, res.Success)
	assert.Equal(t, maxBefore+character.PVPerTec, st.Character.MaxHP, "bonus applies once")
	assert.Empty(t, fx.Notices)

	res = d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.UnlockTrophy, map[string]any{"trophyId": "nope", "reason": "r"}))
	assert.False(t, res.Success)
}

func TestAwardXP_LevelNotices(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	fx := &dispatch.Effects{}
	d.Dispatch(context.Background(), st, fx, call(tool.AwardXP, map[string]any{"amount": 250, "reason": "le dragon"}))
	assert.Equal(t, 3, st.Character.Level)
	require.Len(t, fx.Notices, 3)
	assert.Equal(t, "+250 XP: le dragon", fx.Notices[0].Text)
	assert.Equal(t, "Vous êtes passé au niveau 2!", fx.Notices[1].Text)
	assert.Equal(t, "Vous êtes passé au niveau 3!", fx.Notices[2].Text)
}

func TestInventory_RoundTrip(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	item := map[string]any{"name": "Potion", "description": "Soigne", "type": "Consommable", "category": "Soin", "quantity": 3}
	d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.AddItemToInventory, map[string]any{"items": []any{item}}))
	assert.Equal(t, 3, st.Character.Inventory.Count("Potion"))

	d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.RemoveItemFromInventory, map[string]any{"itemName": "Potion", "quantity": 3}))
	assert.Empty(t, st.Character.Inventory)

	res := d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.RemoveItemFromInventory, map[string]any{"itemName": "Épée"}))
	assert.True(t, res.Success, "removing a missing item is a no-op success")
}

func TestMoney_RemoveFloorsAtZero(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.RemoveMoney, map[string]any{"amount": 500}))
	assert.Equal(t, 0, st.Character.Money)
	res := d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.AddMoney, map[string]any{"amount": -5}))
	assert.False(t, res.Success)
}

func TestQuest_Notices(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	fx := &dispatch.Effects{}
	d.Dispatch(context.Background(), st, fx, call(tool.StartQuest, map[string]any{
		"questId": "q1", "title": "Le Loup", "description": "d", "objectives": []any{"Tuer le loup"},
	}))
	d.Dispatch(context.Background(), st, fx, call(tool.UpdateQuest, map[string]any{
		"questId": "q1", "objectiveToComplete": "Tuer le loup",
	}))
	q, ok := st.Character.Quests.Find("q1")
	require.True(t, ok)
	assert.Equal(t, quest.Completed, q.Status)

	texts := make([]string, 0, len(fx.Notices))
	for _, n := range fx.Notices {
		texts = append(texts, n.Text)
	}
	assert.Equal(t, []string{"Nouvelle quête: Le Loup", "Objectif terminé: Tuer le loup", "Quête terminée: Le Loup!"}, texts)

	res := d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.UpdateQuest, map[string]any{"questId": "zz"}))
	assert.False(t, res.Success)
}

func TestUpdateCharacterStats_RecomputesHP(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	st.Character.SetBaseStats(st.Character.BaseStats.With(stat.Technique, 8))
	require.Equal(t, 112, st.Character.MaxHP)

	fx := &dispatch.Effects{}
	d.Dispatch(context.Background(), st, fx, call(tool.UpdateCharacterStats, map[string]any{
		"updates": []any{map[string]any{"stat": "tec", "change": 2, "reason": "entraînement"}},
	}))
	assert.Equal(t, 120, st.Character.MaxHP)
	assert.Equal(t, 120, st.Character.CurrentHP)
	require.Len(t, fx.Notices, 1)
	assert.Equal(t, "Attribut permanent changé: TEC +2 (entraînement)", fx.Notices[0].Text)
}

func TestStatModifiers(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.ApplyStatModifier, map[string]any{"stat": "atk", "value": 2, "reason": "Potion de Force"}))
	assert.Equal(t, 12, st.Character.Effective(stat.Attack))
	d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.RemoveStatModifier, map[string]any{"reason": "Potion de Force"}))
	assert.Equal(t, 10, st.Character.Effective(stat.Attack))
}

func TestStatusEffects_CatalogDescribes(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.ApplyStatusEffect, map[string]any{"targetName": "joueur", "name": "Empoisonné", "description": ""}))
	require.Len(t, st.Character.StatusEffects, 1)
	assert.NotEmpty(t, st.Character.StatusEffects[0].Description)

	d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.RemoveStatusEffect, map[string]any{"targetName": "joueur", "effectName": "Empoisonné"}))
	assert.Empty(t, st.Character.StatusEffects)

	res := d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.ApplyStatusEffect, map[string]any{"targetName": "Personne", "name": "x", "description": "y"}))
	assert.True(t, res.Success, "unresolved targets are skipped")
}

func TestMap_PlacementAndPosition(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	res := d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.UpdateMap, map[string]any{
		"locations": []any{map[string]any{"id": "v1", "name": "Village", "description": "d", "type": "Village"}},
	}))
	require.True(t, res.Success)
	loc, ok := st.World.Find("v1")
	require.True(t, ok)

	d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.UpdatePlayerPosition, map[string]any{"locationId": "v1"}))
	assert.Equal(t, loc.Position, st.Character.Position)

	pos := st.Character.Position
	res = d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.UpdatePlayerPosition, map[string]any{"locationId": "nowhere"}))
	assert.True(t, res.Success)
	assert.Equal(t, pos, st.Character.Position)

	d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.UpdateTimeAndWeather, map[string]any{"time": "Nuit", "weather": "Orageux"}))
	assert.EqualValues(t, "Nuit", st.World.Time)
}

func TestGenerateSceneImage_MarksOwningMessage(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	id := st.AddMessage(history.Model, "Une tour se dresse.", false)
	fx := &dispatch.Effects{}
	res := d.Dispatch(context.Background(), st, fx, call(tool.GenerateSceneImage, map[string]any{"prompt": "a tower"}))
	require.True(t, res.Success)
	assert.Equal(t, dispatch.SceneImageStarted, res.Data)
	assert.True(t, st.Message(id).ImageIsLoading)
	require.Len(t, fx.Images, 1)
	assert.Equal(t, id, fx.Images[0].MessageID)
	assert.Equal(t, dispatch.ScenePromptPrefix+"a tower", fx.Images[0].Prompt)
}

func TestRequestSkillCheck(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.RequestSkillCheck, map[string]any{"skill": "cha", "difficulty": 14, "reason": "Convaincre le garde"}))
	require.NotNil(t, st.PendingCheck)
	assert.Equal(t, stat.Charisma, st.PendingCheck.Stat)
	assert.Equal(t, "c-requestSkillCheck", st.PendingCheck.CallID)
}

func TestEndGame(t *testing.T) {
	d := newDispatcher(t, &fakeActions{})
	st := newState(t)
	d.Dispatch(context.Background(), st, &dispatch.Effects{}, call(tool.EndGame, map[string]any{"reason": "La fin."}))
	assert.True(t, st.IsOver())
	assert.Equal(t, "La fin.", st.GameOverReason)
}

var testTime = time.UnixMilli(0)
