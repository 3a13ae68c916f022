package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cory-johannsen/taleweaver/internal/game/character"
	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/history"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
)

// CombatActionCount is the number of actions requested for the player.
const CombatActionCount = 4

// SummaryPrompt builds the summarization request for span.
func SummaryPrompt(span []history.Turn, snap history.Snapshot) (string, error) {
	raw, err := json.Marshal(span)
	if err != nil {
		return "", fmt.Errorf("encoding summary span: %w", err)
	}
	var b strings.Builder
	b.WriteString("Tu es un assistant de résumé pour un jeu de rôle. Résume l'historique suivant. Sois très concis et factuel, style télégraphique. Liste les événements clés, décisions, PNJ importants et objets obtenus.\n\n")
	b.WriteString("État Actuel:\n")
	fmt.Fprintf(&b, "- Personnage: %s, %d PV, %d Or.\n", snap.CharacterName, snap.HP, snap.Money)
	fmt.Fprintf(&b, "- Compagnons: %s.\n", listOr(snap.Companions, "Aucun"))
	fmt.Fprintf(&b, "- Monde: Lieux [%s], %s, %s.\n", listOr(snap.Locations, "Aucun"), snap.Time, snap.Weather)
	fmt.Fprintf(&b, "- Inventaire: %s.\n\n", listOr(snap.Inventory, "Vide"))
	b.WriteString("Historique à résumer :\n")
	b.Write(raw)
	b.WriteString("\n\nProduis uniquement le résumé.")
	return b.String(), nil
}

func listOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

const actionRules = `Les valeurs de "skill" doivent être l'une de: "atk", "tec", "int", "cha".
Les valeurs de "type" d'effet doivent être l'une de: "DAMAGE", "HEAL", "APPLY_STATUS", "REMOVE_STATUS".
Les valeurs de "target" d'effet doivent être l'une de: "SELF", "OPPONENT", "ALLY".`

func statLine(b stat.Block) string {
	return fmt.Sprintf("ATK %d, TEC %d, INT %d, CHA %d", b.Atk, b.Tec, b.Int, b.Cha)
}

// CombatActionsPrompt builds the request for the player's combat actions.
func CombatActionsPrompt(c *character.Character, opponents []combat.Opponent) string {
	var b strings.Builder
	b.WriteString("Tu es un game designer créant des compétences de combat pour un JDR.\n")
	fmt.Fprintf(&b, "Basé sur le personnage et les adversaires, génère %d actions de combat thématiques, variées et équilibrées.\n", CombatActionCount)
	b.WriteString("Les actions doivent inclure un mélange d'attaques, de défense (via des effets de statut comme 'Garde levée'), de soutien (soins) et d'effets de statut (affaiblissements).\n")
	b.WriteString("Sois créatif et assure-toi que les actions correspondent au style du personnage.\n\n")
	b.WriteString("Personnage:\n")
	fmt.Fprintf(&b, "- Nom: %s\n- Race: %s\n- Classe: %s\n- Stats: %s\n- Histoire: %s\n\n", c.Name, c.Race, c.Class, statLine(c.BaseStats), c.Background)
	b.WriteString("Adversaires:\n")
	for _, o := range opponents {
		fmt.Fprintf(&b, "- %s (PV: %d)\n", o.Name, o.HP)
	}
	fmt.Fprintf(&b, "\nRéponds UNIQUEMENT avec un tableau JSON de %d objets \"CombatAction\". N'inclus pas de texte ou d'explication en dehors du JSON.\n", CombatActionCount)
	b.WriteString("L'ID de chaque action doit être unique, par exemple \"action_combat_1\", \"action_combat_2\", etc.\n")
	b.WriteString(actionRules)
	b.WriteString("\nPour \"APPLY_STATUS\", fournis un \"statusEffect\" court et descriptif (ex: \"Empoisonné\", \"Étourdi\", \"Enflammé\", \"Béni\", \"En Garde\").")
	return b.String()
}

// CompanionActionsPrompt builds the request for a recruit's actions.
func CompanionActionsPrompt(r character.Recruit) string {
	var b strings.Builder
	b.WriteString("Tu es un game designer créant des compétences de combat pour un compagnon de JDR.\n")
	b.WriteString("Basé sur le compagnon, génère 2-3 actions de combat thématiques et équilibrées.\n")
	b.WriteString("Si le compagnon est un soigneur (ex: Clerc), l'une des compétences doit être de type 'HEAL' et cibler 'SELF' ou 'ALLY'.\n\n")
	b.WriteString("Compagnon:\n")
	fmt.Fprintf(&b, "- Nom: %s\n- Race: %s\n- Classe: %s\n- Stats: %s\n- Histoire: %s\n\n", r.Name, r.Race, r.Class, statLine(r.Stats), r.Background)
	b.WriteString("Réponds UNIQUEMENT avec un tableau JSON de 2 ou 3 objets \"CombatAction\". N'inclus pas de texte ou d'explication en dehors du JSON.\n")
	b.WriteString("L'ID de chaque action doit être unique, par exemple \"comp_action_1\", etc.\n")
	b.WriteString(actionRules)
	return b.String()
}

// StatsPrompt builds the request for a creation stat block.
func StatsPrompt(p Profile) string {
	var b strings.Builder
	b.WriteString("Tu es un maître du jeu équilibrant un personnage. Basé sur la description suivante, attribue ses statistiques de base : Charisme (cha), Intelligence (int), Technique (tec), et Attaque (atk).\n")
	fmt.Fprintf(&b, "Chaque stat commence à %d. Tu as %d points supplémentaires à répartir logiquement entre les quatre stats. Le total des quatre stats DOIT être exactement de %d.\n",
		stat.Floor, stat.CreationPool, stat.CreationTotal)
	b.WriteString("Par exemple, un \"Géant Guerrier stupide\" devrait avoir une ATK très élevée, mais une INT et une TEC faibles. Un \"Érudit fragile\" aurait une INT élevée mais une ATK faible. Sois logique.\n\n")
	b.WriteString("Description du personnage:\n")
	fmt.Fprintf(&b, "- Race: %s\n- Classe: %s\n- Apparence: %s\n- Histoire: %s\n\n", p.Race, p.Class, p.Look, p.Background)
	b.WriteString("Réponds UNIQUEMENT avec l'objet JSON contenant les stats.")
	return b.String()
}

// FieldPrompt wraps a creative-writing request with the assistant preamble.
func FieldPrompt(prompt string) string {
	return "Tu es un assistant d'écriture pour un jeu de rôle. Tes réponses doivent être concises et directes, sans phrases introductives comme \"Bien sûr, voici...\". Réponds uniquement avec le contenu demandé.\n\n" + prompt
}

// CleanField strips the quotes and asterisks models wrap short answers in.
func CleanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\"")
	s = strings.TrimSuffix(s, "\"")
	s = strings.TrimPrefix(s, "*")
	s = strings.TrimSuffix(s, "*")
	return strings.TrimSpace(s)
}
