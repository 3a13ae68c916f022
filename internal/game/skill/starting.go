package skill

import "github.com/cory-johannsen/taleweaver/internal/game/stat"

// BasicAttack is known by every new character.
var BasicAttack = Action{
	ID:          "basicAttack",
	Name:        "Attaque de base",
	Description: "Une attaque simple avec votre arme.",
	Skill:       stat.Attack,
	Effects:     []Effect{{Type: Damage, Target: Opponent, MinValue: 5, MaxValue: 10}},
}

var classSkills = map[string]Action{
	"Guerrier": {
		ID:          "power_attack",
		Name:        "Attaque en puissance",
		Description: "Une frappe lourde et dévastatrice.",
		Skill:       stat.Attack,
		Effects:     []Effect{{Type: Damage, Target: Opponent, MinValue: 8, MaxValue: 16}},
	},
	"Mage": {
		ID:          "fireball",
		Name:        "Boule de feu",
		Description: "Lance une sphère de feu sur l'ennemi.",
		Skill:       stat.Intelligence,
		Effects:     []Effect{{Type: Damage, Target: Opponent, MinValue: 10, MaxValue: 20}},
	},
	"Voleur": {
		ID:          "backstab",
		Name:        "Attaque sournoise",
		Description: "Frappe un point vital de l'adversaire.",
		Skill:       stat.Technique,
		Effects:     []Effect{{Type: Damage, Target: Opponent, MinValue: 9, MaxValue: 14}},
	},
	"Rôdeur": {
		ID:          "poison_arrow",
		Name:        "Flèche empoisonnée",
		Description: "Une flèche enduite de poison.",
		Skill:       stat.Technique,
		Effects: []Effect{
			{Type: Damage, Target: Opponent, MinValue: 6, MaxValue: 10},
			{Type: ApplyStatus, Target: Opponent, StatusEffect: "Empoisonné"},
		},
	},
	"Clerc": {
		ID:          "heal",
		Name:        "Soin",
		Description: "Une prière qui referme les blessures.",
		Skill:       stat.Intelligence,
		Effects:     []Effect{{Type: Heal, Target: Self, MinValue: 10, MaxValue: 20}},
	},
}

// Classes lists the playable classes that carry a signature skill.
var Classes = []string{"Guerrier", "Mage", "Voleur", "Rôdeur", "Clerc"}

// Starting returns the skills a new character of class knows.
//
// Postcondition: result[0] is BasicAttack; an unknown class yields only BasicAttack.
func Starting(class string) Set {
	out := Set{BasicAttack}
	if a, ok := classSkills[class]; ok {
		out = append(out, a)
	}
	return out
}
