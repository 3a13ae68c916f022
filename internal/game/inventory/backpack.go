package inventory

import "fmt"

// Bag is the ordered list of items a character carries.
type Bag []Item

// Add returns the bag with item merged in by exact name.
// An existing entry keeps its description, kind, and category and gains quantity.
//
// Precondition: item.Quantity >= 1.
// Postcondition: the entry named item.Name has its quantity raised by item.Quantity,
// or is appended when absent.
func (b Bag) Add(item Item) (Bag, error) {
	if item.Quantity < 1 {
		return b, fmt.Errorf("bag: quantity must be >= 1, got %d", item.Quantity)
	}
	out := b.clone()
	for i := range out {
		if out[i].Name == item.Name {
			out[i].Quantity += item.Quantity
			return out, nil
		}
	}
	return append(out, item), nil
}

// Remove returns the bag with quantity units of name removed.
// A quantity <= 0 removes the whole entry. A missing name is a no-op.
//
// Postcondition: no entry with Quantity <= 0 remains.
func (b Bag) Remove(name string, quantity int) Bag {
	out := make(Bag, 0, len(b))
	for _, it := range b {
		if it.Name == name {
			if quantity <= 0 {
				continue
			}
			it.Quantity -= quantity
			if it.Quantity <= 0 {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// Find returns the item named name.
func (b Bag) Find(name string) (Item, bool) {
	for _, it := range b {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// Count returns the quantity held of name, or 0.
func (b Bag) Count(name string) int {
	it, _ := b.Find(name)
	return it.Quantity
}

func (b Bag) clone() Bag {
	out := make(Bag, len(b), len(b)+1)
	copy(out, b)
	return out
}
