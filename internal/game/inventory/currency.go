package inventory

import "fmt"

// StartingGold is the purse of a new character.
const StartingGold = 50

// AddGold returns total+amount.
//
// Precondition: amount >= 0.
func AddGold(total, amount int) int {
	return total + amount
}

// RemoveGold returns total-amount floored at 0.
//
// Postcondition: result >= 0.
func RemoveGold(total, amount int) int {
	if amount >= total {
		return 0
	}
	return total - amount
}

// FormatGold returns a human-readable currency string, e.g. "1 pièce d'or" or "12 pièces d'or".
func FormatGold(total int) string {
	if total == 1 || total == 0 {
		return fmt.Sprintf("%d pièce d'or", total)
	}
	return fmt.Sprintf("%d pièces d'or", total)
}
