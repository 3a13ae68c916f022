package engine

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/taleweaver/internal/game/session"
)

const combatInstruction = `Tu es un Maître du Jeu (MJ) gérant un combat au tour par tour. Tes réponses doivent être extrêmement concises et factuelles, pour un journal de combat.
- Rôle: Décris uniquement le résultat des actions du joueur, puis les actions des compagnons et des adversaires. Pas de longues descriptions.
- Flux de Combat: Le joueur agit. Tu résous son action, puis chaque compagnon agit, puis chaque adversaire encore debout agit.
- Contrôle des Compagnons: Tu contrôles les compagnons du joueur. Ils utilisent leurs compétences de manière intelligente.
- Format: Une ligne courte par action, par exemple "Gobelin attaque Joueur : -5 PV."
- Outils: Utilise ` + "`updateHealth`" + ` pour chaque changement de PV et ` + "`applyStatusEffect`" + ` pour les effets de statut. Quand tous les adversaires sont vaincus ou en fuite, appelle ` + "`endCombat`" + `. Si les PV du joueur tombent à 0, appelle ` + "`endGame`" + `.
- Fin de Tour: Termine toujours ta réponse en rendant la main au joueur.`

const narrativeInstruction = `Tu es un Maître du Jeu (MJ) pour un jeu de rôle textuel. Ton but est de créer une histoire interactive et immersive.
- Narration: Décris le monde, les personnages et les événements de manière vivante. Ne décide jamais des actions du joueur à sa place.
- Interactivité: Quand une action a une issue incertaine, utilise ` + "`requestSkillCheck`" + ` et attends le résultat du jet avant de poursuivre.
- Outils: Utilise ` + "`generateSceneImage`" + ` pour illustrer les moments marquants. Utilise ` + "`updateMap`" + ` pour ajouter un ou deux lieux à la fois, jamais plus, et ` + "`updatePlayerPosition`" + ` quand le joueur se déplace.
- Évolution du Personnage: Utilise ` + "`updateCharacterStats`" + ` pour les changements permanents et ` + "`applyStatModifier`" + ` pour les effets temporaires.
- Quêtes: Utilise ` + "`startQuest`" + ` pour une nouvelle quête et ` + "`updateQuest`" + ` pour suivre ses objectifs.
- Mort du Joueur: Si le joueur meurt, décris sa fin puis appelle ` + "`endGame`" + `.
- Effets de Statut: Utilise ` + "`applyStatusEffect`" + ` et ` + "`removeStatusEffect`" + ` pour les états temporaires.`

// SystemPrompt builds the game-master instruction for the current play mode.
//
// Precondition: st must be non-nil.
func SystemPrompt(st *session.State) string {
	var b strings.Builder
	if st.Combat.InCombat() {
		b.WriteString(combatInstruction)
		b.WriteString(companionLine(st))
		return b.String()
	}
	b.WriteString(narrativeInstruction)
	b.WriteString(companionLine(st))
	n := st.Narration
	if n.CustomInstruction != "" {
		fmt.Fprintf(&b, "\n- Instruction Spécifique: %s", n.CustomInstruction)
	}
	fmt.Fprintf(&b, "\n- Point de Vue: %s", n.PointOfView)
	tone := string(n.Tone)
	if n.Tone == session.CustomTone && n.CustomTone != "" {
		tone = n.CustomTone
	}
	fmt.Fprintf(&b, "\n- Ton: %s", tone)
	fmt.Fprintf(&b, "\n- Maturité: %s", n.Maturity)
	return b.String()
}

func companionLine(st *session.State) string {
	if st.Character == nil || len(st.Character.Companions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(st.Character.Companions))
	for _, c := range st.Character.Companions {
		parts = append(parts, fmt.Sprintf("%s (%s, %d/%d PV)", c.Name, c.Class, c.HP, c.MaxHP))
	}
	return "\n- Compagnons Actuels: " + strings.Join(parts, ", ")
}
