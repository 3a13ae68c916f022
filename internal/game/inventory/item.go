// Package inventory models the character's carried items and money.
package inventory

import "fmt"

// Kind classifies how an item may be used.
type Kind string

const (
	// Usable items can be used repeatedly.
	Usable Kind = "Utilisable"
	// Consumable items disappear after use.
	Consumable Kind = "Consommable"
	// QuestItem items matter to the story and cannot be used directly.
	QuestItem Kind = "Quête"
)

// ParseKind validates s as an item Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Usable, Consumable, QuestItem:
		return k, nil
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// Item is one inventory entry, identified by its exact Name.
//
// Invariant: Quantity >= 1 for every item held in a Bag.
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Kind        Kind   `json:"type"`
	Quantity    int    `json:"quantity"`
	Category    string `json:"category"`
}
