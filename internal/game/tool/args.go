package tool

import "github.com/cory-johannsen/taleweaver/internal/game/stat"

// Argument types of each tool. Parameters schemas are derived from them and
// dispatch handlers decode calls into them. Fields without omitempty are
// required.

type SceneImageArgs struct {
	Prompt string `json:"prompt" jsonschema:"Prompt ANGLAIS détaillé pour l'image (scène, personnages, style)."`
}

type Item struct {
	Name        string `json:"name" jsonschema:"Nom de l'objet."`
	Description string `json:"description" jsonschema:"Description de l'objet."`
	Type        string `json:"type" jsonschema:"Type de l'objet."`
	Category    string `json:"category" jsonschema:"Catégorie de l'objet (ex: Potion, Arme, Quête, Divers)."`
	Quantity    *int   `json:"quantity,omitempty" jsonschema:"Quantité (défaut 1)."`
}

type AddItemsArgs struct {
	Items []Item `json:"items" jsonschema:"Objets à ajouter."`
}

type RemoveItemArgs struct {
	ItemName string `json:"itemName" jsonschema:"Le nom exact de l'objet à retirer."`
	Quantity *int   `json:"quantity,omitempty" jsonschema:"Quantité à retirer (défaut: tout)."`
}

type AddMoneyArgs struct {
	Amount int `json:"amount" jsonschema:"Le montant de pièces d'or à ajouter."`
}

type RemoveMoneyArgs struct {
	Amount int `json:"amount" jsonschema:"Le montant de pièces d'or à retirer."`
}

type SkillCheckArgs struct {
	Skill      string `json:"skill" jsonschema:"La compétence à tester (Charisme, Intelligence, Technique, Attaque)."`
	Difficulty int    `json:"difficulty" jsonschema:"Difficulté à atteindre (5-20)."`
	Reason     string `json:"reason" jsonschema:"Raison du jet (ex: 'Crocheter la serrure')."`
}

type Opponent struct {
	Name string `json:"name" jsonschema:"Nom de l'adversaire (ex: 'Gobelin chétif')."`
	HP   int    `json:"hp" jsonschema:"Points de vie maximum de l'adversaire."`
}

type StartCombatArgs struct {
	Opponents        []Opponent `json:"opponents" jsonschema:"Adversaires dans le combat."`
	SceneDescription string     `json:"sceneDescription" jsonschema:"Une courte description de l'environnement du combat pour générer une image de fond."`
}

type HealthUpdate struct {
	TargetName string `json:"targetName" jsonschema:"Cible ('Joueur', nom du compagnon ou nom de l'adversaire)."`
	HPChange   int    `json:"hpChange" jsonschema:"Changement PV (- pour dégâts, + pour soins)."`
}

type UpdateHealthArgs struct {
	Updates []HealthUpdate `json:"updates" jsonschema:"Liste des mises à jour de PV."`
}

type ApplyStatusArgs struct {
	TargetName  string `json:"targetName" jsonschema:"Cible ('Joueur', nom du compagnon ou nom de l'adversaire)."`
	Name        string `json:"name" jsonschema:"Nom de l'effet (ex: 'Empoisonné', 'Béni')."`
	Description string `json:"description" jsonschema:"Description de l'effet et de ses conséquences."`
}

type RemoveStatusArgs struct {
	TargetName string `json:"targetName" jsonschema:"Cible ('Joueur', nom du compagnon ou nom de l'adversaire)."`
	EffectName string `json:"effectName" jsonschema:"Le nom exact de l'effet à retirer."`
}

type AwardXPArgs struct {
	Amount int    `json:"amount" jsonschema:"Le nombre de points d'expérience à accorder."`
	Reason string `json:"reason" jsonschema:"La raison pour laquelle l'XP est accordée (ex: 'Pour avoir vaincu le Gobelin')."`
}

type Location struct {
	ID             string `json:"id" jsonschema:"ID unique du lieu (ex: 'village_depart_01')."`
	Name           string `json:"name" jsonschema:"Le nom du lieu."`
	Description    string `json:"description" jsonschema:"Une courte description."`
	Type           string `json:"type" jsonschema:"Le type de lieu."`
	NearLocationID string `json:"nearLocationId,omitempty" jsonschema:"(Optionnel) ID du lieu existant auquel ce nouveau lieu est adjacent."`
}

type UpdateMapArgs struct {
	Locations []Location `json:"locations" jsonschema:"Une liste de lieux à ajouter ou mettre à jour."`
}

type PlayerPositionArgs struct {
	LocationID string `json:"locationId" jsonschema:"ID du lieu où se trouve maintenant le joueur."`
}

type TimeAndWeatherArgs struct {
	Time    string `json:"time" jsonschema:"Le nouveau moment de la journée."`
	Weather string `json:"weather" jsonschema:"La nouvelle météo."`
}

type UnlockTrophyArgs struct {
	TrophyID string `json:"trophyId" jsonschema:"ID exact du trophée à débloquer."`
	Reason   string `json:"reason" jsonschema:"Raison du déblocage."`
}

type StartQuestArgs struct {
	QuestID     string   `json:"questId" jsonschema:"ID unique de la quête (ex: 'main_quest_01', 'side_goblin_slayer')."`
	Title       string   `json:"title" jsonschema:"Titre de la quête."`
	Description string   `json:"description" jsonschema:"Description narrative de la quête."`
	Objectives  []string `json:"objectives" jsonschema:"Liste des descriptions pour les premiers objectifs."`
}

type UpdateQuestArgs struct {
	QuestID             string `json:"questId" jsonschema:"ID de la quête à mettre à jour."`
	ObjectiveToComplete string `json:"objectiveToComplete,omitempty" jsonschema:"(Optionnel) La description exacte d'un objectif à marquer comme terminé."`
	NewObjective        string `json:"newObjective,omitempty" jsonschema:"(Optionnel) La description d'un nouvel objectif à ajouter."`
	Status              string `json:"status,omitempty" jsonschema:"(Optionnel) Changer le statut global de la quête (Terminée, Échouée)."`
	NewDescription      string `json:"newDescription,omitempty" jsonschema:"(Optionnel) Mettre à jour la description de la quête."`
}

type StatChange struct {
	Stat   string `json:"stat" jsonschema:"L'attribut à modifier."`
	Change int    `json:"change" jsonschema:"La valeur à ajouter (positive) ou retirer (négative) à l'attribut de base."`
	Reason string `json:"reason" jsonschema:"La raison narrative de ce changement permanent."`
}

type UpdateStatsArgs struct {
	Updates []StatChange `json:"updates" jsonschema:"Liste des attributs de base à modifier."`
}

type StatModifierArgs struct {
	Stat            string `json:"stat" jsonschema:"L'attribut affecté."`
	Value           int    `json:"value" jsonschema:"Le bonus (positif) ou malus (négatif) appliqué."`
	Reason          string `json:"reason" jsonschema:"La source du modificateur (ex: 'Potion de Force', 'Malédiction du Spectre')."`
	DurationInTurns *int   `json:"durationInTurns,omitempty" jsonschema:"(Optionnel) La durée en tours de combat. Si omis, l'effet est considéré comme passif/continu jusqu'à sa suppression."`
}

type RemoveModifierArgs struct {
	Reason string `json:"reason" jsonschema:"Le nom exact (raison) du modificateur à retirer (ex: 'Potion de Force')."`
}

type RecruitArgs struct {
	Name       string     `json:"name" jsonschema:"Nom du compagnon."`
	Race       string     `json:"race" jsonschema:"Race du compagnon."`
	Class      string     `json:"class" jsonschema:"Classe du compagnon."`
	Background string     `json:"background" jsonschema:"Courte histoire du compagnon."`
	HP         int        `json:"hp" jsonschema:"Points de vie maximum du compagnon."`
	Stats      stat.Block `json:"stats" jsonschema:"Attributs de base (cha, int, tec, atk)."`
}

type DismissArgs struct {
	Name   string `json:"name" jsonschema:"Nom exact du compagnon à renvoyer."`
	Reason string `json:"reason" jsonschema:"Raison du départ du compagnon."`
}

type EndGameArgs struct {
	Reason string `json:"reason" jsonschema:"La description narrative de la mort du joueur."`
}
