package stat

import "fmt"

// RepairPolicy decides how a generated stat block that breaks the creation
// rules is brought back in line.
type RepairPolicy string

const (
	// FloorThenLog raises sub-floor values and accepts a wrong total.
	FloorThenLog RepairPolicy = "floor_then_log"
	// FloorThenRescale raises sub-floor values, then moves points until the total matches.
	FloorThenRescale RepairPolicy = "floor_then_rescale"
)

// ParseRepairPolicy validates s as a RepairPolicy.
func ParseRepairPolicy(s string) (RepairPolicy, error) {
	switch p := RepairPolicy(s); p {
	case FloorThenLog, FloorThenRescale:
		return p, nil
	}
	return "", fmt.Errorf("unknown stat repair policy %q", s)
}

// RepairReport describes what Repair changed.
type RepairReport struct {
	// Floored lists the attributes raised to Floor.
	Floored []Key
	// TotalBefore is the sum after flooring and before any rescale.
	TotalBefore int
	// Rescaled reports whether points were moved to reach CreationTotal.
	Rescaled bool
}

// TotalMismatch reports whether the floored block missed CreationTotal.
func (r RepairReport) TotalMismatch() bool {
	return r.TotalBefore != CreationTotal
}

// Repair applies policy to b.
//
// Postcondition: every attribute of the result is >= Floor. Under FloorThenRescale the
// result also sums to CreationTotal.
func Repair(b Block, policy RepairPolicy) (Block, RepairReport) {
	var report RepairReport
	for _, k := range Keys {
		if b.Get(k) < Floor {
			b = b.With(k, Floor)
			report.Floored = append(report.Floored, k)
		}
	}
	report.TotalBefore = b.Total()

	if policy != FloorThenRescale {
		return b, report
	}

	for b.Total() > CreationTotal {
		k, ok := highestAboveFloor(b)
		if !ok {
			break
		}
		b = b.Add(k, -1)
		report.Rescaled = true
	}
	for b.Total() < CreationTotal {
		b = b.Add(lowest(b), 1)
		report.Rescaled = true
	}
	return b, report
}

func highestAboveFloor(b Block) (Key, bool) {
	var best Key
	found := false
	for _, k := range Keys {
		if b.Get(k) <= Floor {
			continue
		}
		if !found || b.Get(k) > b.Get(best) {
			best, found = k, true
		}
	}
	return best, found
}

func lowest(b Block) Key {
	best := Keys[0]
	for _, k := range Keys[1:] {
		if b.Get(k) < b.Get(best) {
			best = k
		}
	}
	return best
}
