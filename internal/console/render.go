package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/condition"
	"github.com/cory-johannsen/taleweaver/internal/game/dice"
	"github.com/cory-johannsen/taleweaver/internal/game/dispatch"
	"github.com/cory-johannsen/taleweaver/internal/game/engine"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/quest"
	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
)

const urlPreview = 48

// RenderEvent formats one engine event. Narration increments are returned
// verbatim so streamed text joins up on the terminal.
func RenderEvent(ev engine.Event) string {
	switch ev.Kind {
	case engine.NarrationEvent:
		return ev.Text
	case engine.NoticeEvent:
		return RenderNotice(ev.Notice)
	case engine.VisualEvent:
		return RenderVisual(ev.Visual)
	case engine.ImageEvent:
		return RenderImage(ev.MessageID, ev.Text)
	}
	return ""
}

// RenderNotice formats a notification on its own line.
func RenderNotice(n dispatch.Notice) string {
	if n.Level == dispatch.Error {
		return "\n" + Colorf(BrightRed, "! %s", n.Text) + "\n"
	}
	return "\n" + Colorf(Cyan, "» %s", n.Text) + "\n"
}

// RenderVisual formats a combat annotation.
func RenderVisual(v combat.VisualEffect) string {
	color := Yellow
	switch v.Kind {
	case combat.DamageEffect:
		color = Red
	case combat.HealEffect:
		color = Green
	}
	return "\n" + Colorf(color, "  [%s] %s", v.TargetID, v.Content) + "\n"
}

// RenderImage reports a finished illustration.
func RenderImage(messageID, url string) string {
	if len(url) > urlPreview {
		url = url[:urlPreview] + "…"
	}
	where := "fond de combat"
	if messageID != "" {
		where = "message " + messageID
	}
	return "\n" + Colorf(Dim, "(illustration prête: %s, %s)", where, url) + "\n"
}

// RenderCheck formats a resolved roll.
func RenderCheck(res dice.CheckResult) string {
	outcome := Colorize(BrightRed, "Échec")
	if res.Success {
		outcome = Colorize(BrightGreen, "Succès")
	}
	switch {
	case res.CriticalSuccess:
		outcome += Colorize(BrightGreen, " critique")
	case res.CriticalFailure:
		outcome += Colorize(BrightRed, " critique")
	}
	if res.Difficulty > 0 {
		return fmt.Sprintf("d20 %d %+d = %d vs %d: %s", res.Roll, res.Modifier, res.Total, res.Difficulty, outcome)
	}
	return fmt.Sprintf("d20 %d %+d = %d", res.Roll, res.Modifier, res.Total)
}

// RenderPendingCheck describes a roll the player must make.
func RenderPendingCheck(c *session.SkillCheck) string {
	if c == nil {
		return ""
	}
	return Colorf(BrightYellow, "Jet de %s demandé (difficulté %d): %s. Tapez \"jet\".", c.Stat, c.Difficulty, c.Reason)
}

// RenderStatus formats the character sheet.
func RenderStatus(st *session.State) string {
	c := st.Character
	if c == nil {
		return Colorize(Dim, "Aucun personnage.")
	}
	var b strings.Builder
	b.WriteString(Colorf(BrightYellow, "%s", c.Name))
	fmt.Fprintf(&b, ", %s %s, niveau %d\n", c.Race, c.Class, c.Level)
	fmt.Fprintf(&b, "PV %s  Or %d  XP %d/%d\n", hpBar(c.CurrentHP, c.MaxHP), c.Money, c.XP, c.XPToNextLevel)
	for _, k := range stat.Keys {
		base := c.BaseStats.Get(k)
		eff := c.Effective(k)
		if eff != base {
			fmt.Fprintf(&b, "  %-4s %2d (%+d)\n", k, eff, eff-base)
		} else {
			fmt.Fprintf(&b, "  %-4s %2d\n", k, base)
		}
	}
	if c.StatPoints > 0 {
		b.WriteString(Colorf(BrightGreen, "%d point(s) à dépenser", c.StatPoints))
		b.WriteString("\n")
	}
	if s := effectNames(c.StatusEffects); s != "" {
		fmt.Fprintf(&b, "États: %s\n", s)
	}
	for _, comp := range c.Companions {
		fmt.Fprintf(&b, "Compagnon: %s (%s %s) PV %d/%d\n", comp.Name, comp.Race, comp.Class, comp.HP, comp.MaxHP)
	}
	if st.IsOver() {
		b.WriteString(Colorf(BrightRed, "FIN DE PARTIE: %s", st.GameOverReason))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderInventory formats the bag.
func RenderInventory(st *session.State) string {
	c := st.Character
	if c == nil || len(c.Inventory) == 0 {
		return Colorize(Dim, "Inventaire vide.")
	}
	var b strings.Builder
	b.WriteString(Colorize(BrightWhite, "Inventaire:"))
	b.WriteString("\n")
	for _, it := range c.Inventory {
		fmt.Fprintf(&b, "  %s x%d", Colorize(Green, it.Name), it.Quantity)
		if it.Description != "" {
			fmt.Fprintf(&b, " - %s", it.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderQuests formats the quest log.
func RenderQuests(st *session.State) string {
	c := st.Character
	if c == nil || len(c.Quests) == 0 {
		return Colorize(Dim, "Aucune quête.")
	}
	var b strings.Builder
	for _, q := range c.Quests {
		color := Yellow
		switch q.Status {
		case quest.Completed:
			color = Green
		case quest.Failed:
			color = Red
		}
		fmt.Fprintf(&b, "%s [%s]\n", Colorize(BrightWhite, q.Title), Colorize(color, string(q.Status)))
		for _, o := range q.Objectives {
			mark := " "
			if o.Completed {
				mark = "x"
			}
			fmt.Fprintf(&b, "  [%s] %s\n", mark, o.Description)
		}
	}
	return b.String()
}

// RenderMap lists discovered locations with their ids.
func RenderMap(st *session.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s\n", st.World.Time, st.World.Weather)
	n := 0
	for _, loc := range st.World.Locations {
		if !loc.Discovered {
			continue
		}
		n++
		fmt.Fprintf(&b, "  %s %s (%s) [%d,%d]\n", Colorize(BrightCyan, loc.ID), loc.Name, loc.Type, loc.Position.X, loc.Position.Y)
	}
	if n == 0 {
		b.WriteString(Colorize(Dim, "  Aucun lieu découvert."))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderCombat lists opponents and the available combat actions.
func RenderCombat(st *session.State) string {
	if !st.Combat.InCombat() {
		return Colorize(Dim, "Pas de combat en cours.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (tour: %s)\n", Colorize(BrightRed, "COMBAT"), st.Combat.TurnOwner)
	for _, o := range st.Combat.Opponents {
		line := fmt.Sprintf("  %s %s PV %s", o.ID, o.Name, hpBar(o.HP, o.MaxHP))
		if s := effectNames(o.StatusEffects); s != "" {
			line += " " + s
		}
		if o.IsDown() {
			line = Colorize(Dim, line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(st.Combat.Actions) > 0 {
		b.WriteString(Colorize(BrightWhite, "Actions:"))
		b.WriteString("\n")
		for _, a := range st.Combat.Actions {
			target := ""
			if a.NeedsTarget() {
				target = " <cible>"
			}
			fmt.Fprintf(&b, "  %s%s - %s (%s)\n", Colorize(BrightCyan, a.ID), target, a.Name, a.Skill)
		}
	}
	return b.String()
}

// RenderSessions lists stored sessions, marking the active one.
func RenderSessions(list []session.Summary, active string) string {
	if len(list) == 0 {
		return Colorize(Dim, "Aucune partie sauvegardée.")
	}
	var b strings.Builder
	for _, s := range list {
		mark := " "
		if s.ID == active {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s %s  %s  %s\n", mark, Colorize(BrightCyan, s.ID), s.Timestamp.Local().Format(time.DateTime), s.Name)
	}
	return b.String()
}

// RenderHelp lists commands by category.
func RenderHelp(r *Registry) string {
	categories := []struct {
		name  string
		label string
	}{
		{CategoryStory, "Récit"},
		{CategoryCombat, "Combat"},
		{CategoryCharacter, "Personnage"},
		{CategorySession, "Parties"},
		{CategorySystem, "Système"},
	}
	var b strings.Builder
	b.WriteString(Colorize(BrightWhite, "Commandes:"))
	b.WriteString("\n")
	byCategory := r.CommandsByCategory()
	for _, cat := range categories {
		cmds := byCategory[cat.name]
		if len(cmds) == 0 {
			continue
		}
		b.WriteString(Colorf(BrightYellow, "  %s:", cat.label))
		b.WriteString("\n")
		for _, cmd := range cmds {
			aliases := ""
			if len(cmd.Aliases) > 0 {
				aliases = " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			fmt.Fprintf(&b, "    %s %s%s: %s\n", Colorize(Green, cmd.Name), cmd.Usage, aliases, cmd.Help)
		}
	}
	b.WriteString(Colorize(Dim, "  Une ligne sans commande est envoyée comme une action (faire)."))
	b.WriteString("\n")
	return b.String()
}

func hpBar(hp, maxHP int) string {
	color := Green
	switch {
	case maxHP > 0 && hp*4 <= maxHP:
		color = Red
	case maxHP > 0 && hp*2 <= maxHP:
		color = Yellow
	}
	return Colorf(color, "%d/%d", hp, maxHP)
}

func effectNames(effects condition.Effects) string {
	if len(effects) == 0 {
		return ""
	}
	names := make([]string, len(effects))
	for i, e := range effects {
		names[i] = e.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// RenderTranscript formats the last n visible transcript messages.
func RenderTranscript(msgs []session.Message, n int) string {
	visible := make([]session.Message, 0, len(msgs))
	for _, m := range msgs {
		if !m.IsSystem && m.Content != "" {
			visible = append(visible, m)
		}
	}
	if n > 0 && len(visible) > n {
		visible = visible[len(visible)-n:]
	}
	var b strings.Builder
	for _, m := range visible {
		if m.Role == history.User {
			b.WriteString(Colorf(BrightCyan, "> %s", m.Content))
		} else {
			b.WriteString(m.Content)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}
