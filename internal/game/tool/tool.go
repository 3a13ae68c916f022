// Package tool defines the closed vocabulary of operations a generator may
// invoke, their argument schemas, the per-mode subsets, and the call/result
// wire types exchanged with generators.
package tool

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/inventory"
	"github.com/cory-johannsen/taleweaver/internal/game/quest"
	"github.com/cory-johannsen/taleweaver/internal/game/stat"
	"github.com/cory-johannsen/taleweaver/internal/game/world"
)

// Name identifies a tool.
type Name string

const (
	GenerateSceneImage      Name = "generateSceneImage"
	AddItemToInventory      Name = "addItemToInventory"
	RemoveItemFromInventory Name = "removeItemFromInventory"
	AddMoney                Name = "addMoney"
	RemoveMoney             Name = "removeMoney"
	RequestSkillCheck       Name = "requestSkillCheck"
	StartCombat             Name = "startCombat"
	UpdateHealth            Name = "updateHealth"
	EndCombat               Name = "endCombat"
	ApplyStatusEffect       Name = "applyStatusEffect"
	RemoveStatusEffect      Name = "removeStatusEffect"
	AwardXP                 Name = "awardXP"
	UpdateMap               Name = "updateMap"
	UpdatePlayerPosition    Name = "updatePlayerPosition"
	UpdateTimeAndWeather    Name = "updateTimeAndWeather"
	UnlockTrophy            Name = "unlockTrophy"
	StartQuest              Name = "startQuest"
	UpdateQuest             Name = "updateQuest"
	UpdateCharacterStats    Name = "updateCharacterStats"
	ApplyStatModifier       Name = "applyStatModifier"
	RemoveStatModifier      Name = "removeStatModifier"
	RecruitCompanion        Name = "recruitCompanion"
	DismissCompanion        Name = "dismissCompanion"
	EndGame                 Name = "endGame"
)

// Definition is the declaration of one tool.
type Definition struct {
	Name        Name
	Description string
	// Parameters is nil for tools without arguments.
	Parameters *jsonschema.Schema
}

var statKeys = enumOf(stat.Keys)

func enumOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// All is every tool, in declaration order.
var All = []Definition{
	{
		Name:        GenerateSceneImage,
		Description: "Génère une image de la scène (lieu, personnage important).",
		Parameters:  SchemaFor[SceneImageArgs](nil),
	},
	{
		Name:        AddItemToInventory,
		Description: "Ajoute des objets à l'inventaire du joueur.",
		Parameters: SchemaFor[AddItemsArgs](Enums{
			"items.type": enumOf([]inventory.Kind{inventory.Usable, inventory.Consumable, inventory.QuestItem}),
		}),
	},
	{
		Name:        RemoveItemFromInventory,
		Description: "Retire des objets de l'inventaire.",
		Parameters:  SchemaFor[RemoveItemArgs](nil),
	},
	{
		Name:        AddMoney,
		Description: "Ajoute de l'or au joueur.",
		Parameters:  SchemaFor[AddMoneyArgs](nil),
	},
	{
		Name:        RemoveMoney,
		Description: "Retire de l'or au joueur.",
		Parameters:  SchemaFor[RemoveMoneyArgs](nil),
	},
	{
		Name:        RequestSkillCheck,
		Description: "Demande au joueur un jet de compétence pour une action.",
		Parameters:  SchemaFor[SkillCheckArgs](Enums{"skill": statKeys}),
	},
	{
		Name:        StartCombat,
		Description: "Démarre un combat au tour par tour.",
		Parameters:  SchemaFor[StartCombatArgs](nil),
	},
	{
		Name:        UpdateHealth,
		Description: "Modifie les PV du joueur, d'un compagnon ou d'un adversaire.",
		Parameters:  SchemaFor[UpdateHealthArgs](nil),
	},
	{
		Name:        EndCombat,
		Description: "Termine le combat.",
	},
	{
		Name:        ApplyStatusEffect,
		Description: "Applique un effet de statut au joueur, à un compagnon ou à un ennemi.",
		Parameters:  SchemaFor[ApplyStatusArgs](nil),
	},
	{
		Name:        RemoveStatusEffect,
		Description: "Retire un effet de statut.",
		Parameters:  SchemaFor[RemoveStatusArgs](nil),
	},
	{
		Name:        AwardXP,
		Description: "Donne de l'XP au joueur.",
		Parameters:  SchemaFor[AwardXPArgs](nil),
	},
	{
		Name:        UpdateMap,
		Description: "Ajoute ou met à jour des lieux sur la carte. Le MJ doit créer l'ID et s'assurer qu'il est unique.",
		Parameters:  SchemaFor[UpdateMapArgs](Enums{"locations.type": enumOf(world.LocationTypes)}),
	},
	{
		Name:        UpdatePlayerPosition,
		Description: "Met à jour la position du joueur en le déplaçant vers un lieu existant.",
		Parameters:  SchemaFor[PlayerPositionArgs](nil),
	},
	{
		Name:        UpdateTimeAndWeather,
		Description: "Change l'heure et la météo.",
		Parameters: SchemaFor[TimeAndWeatherArgs](Enums{
			"time":    enumOf(world.Times),
			"weather": enumOf(world.Weathers),
		}),
	},
	{
		Name:        UnlockTrophy,
		Description: "Débloque un trophée pour le joueur.",
		Parameters:  SchemaFor[UnlockTrophyArgs](nil),
	},
	{
		Name:        StartQuest,
		Description: "Commence une nouvelle quête pour le joueur.",
		Parameters:  SchemaFor[StartQuestArgs](nil),
	},
	{
		Name:        UpdateQuest,
		Description: "Met à jour une quête existante.",
		Parameters: SchemaFor[UpdateQuestArgs](Enums{
			"status": enumOf([]quest.Status{quest.InProgress, quest.Completed, quest.Failed}),
		}),
	},
	{
		Name: UpdateCharacterStats,
		Description: "Modifie les attributs de base du joueur (CHA, INT, TEC, ATK) de façon permanente suite à un événement majeur de l'histoire " +
			"(ex: entraînement intensif, bénédiction divine, séquelle permanente). Utiliser pour des changements significatifs et durables.",
		Parameters: SchemaFor[UpdateStatsArgs](Enums{"updates.stat": statKeys}),
	},
	{
		Name:        ApplyStatModifier,
		Description: "Applique un modificateur temporaire ou conditionnel à un attribut du joueur (ex: potion de force, malédiction, équipement magique).",
		Parameters:  SchemaFor[StatModifierArgs](Enums{"stat": statKeys}),
	},
	{
		Name:        RemoveStatModifier,
		Description: "Retire un modificateur de stat actif sur le joueur, par son nom (raison).",
		Parameters:  SchemaFor[RemoveModifierArgs](nil),
	},
	{
		Name:        RecruitCompanion,
		Description: "Recrute un PNJ pour qu'il rejoigne le groupe du joueur en tant que compagnon.",
		Parameters:  SchemaFor[RecruitArgs](nil),
	},
	{
		Name:        DismissCompanion,
		Description: "Renvoie un compagnon du groupe du joueur.",
		Parameters:  SchemaFor[DismissArgs](nil),
	},
	{
		Name:        EndGame,
		Description: "Met fin à la partie lorsque le joueur meurt. Fournir une description finale dramatique de la mort du joueur.",
		Parameters:  SchemaFor[EndGameArgs](nil),
	},
}

var combatSubset = map[Name]bool{
	UpdateHealth:            true,
	EndCombat:               true,
	AddItemToInventory:      true,
	RemoveItemFromInventory: true,
	ApplyStatusEffect:       true,
	RemoveStatusEffect:      true,
	AwardXP:                 true,
	UnlockTrophy:            true,
	ApplyStatModifier:       true,
	RemoveStatModifier:      true,
	EndGame:                 true,
}

var byName = func() map[Name]Definition {
	m := make(map[Name]Definition, len(All))
	for _, d := range All {
		if _, dup := m[d.Name]; dup {
			panic("tool: duplicate definition " + string(d.Name))
		}
		m[d.Name] = d
		if d.Parameters != nil {
			rs, err := d.Parameters.Resolve(nil)
			if err != nil {
				panic(fmt.Sprintf("tool: resolving %s schema: %v", d.Name, err))
			}
			resolved[d.Name] = rs
		}
	}
	return m
}()

// Lookup returns the definition of n.
func Lookup(n Name) (Definition, bool) {
	d, ok := byName[n]
	return d, ok
}

// Allowed reports whether n is in the subset active for mode.
// Narrative mode allows every tool except EndCombat.
func Allowed(mode combat.Mode, n Name) bool {
	if _, known := byName[n]; !known {
		return false
	}
	if mode == combat.Combat {
		return combatSubset[n]
	}
	return n != EndCombat
}

// ForMode returns the definitions active for mode, in declaration order.
func ForMode(mode combat.Mode) []Definition {
	out := make([]Definition, 0, len(All))
	for _, d := range All {
		if Allowed(mode, d.Name) {
			out = append(out, d)
		}
	}
	return out
}
