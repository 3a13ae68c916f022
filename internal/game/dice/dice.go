// Package dice provides the randomness abstraction and the pure roll arithmetic
// used by skill checks, combat actions, and HP bookkeeping.
package dice

import (
	"errors"
	"fmt"
)

// CheckDie is the number of sides of the die used for skill checks.
const CheckDie = 20

// ErrInvalidRange is returned when an effect range has max < min.
var ErrInvalidRange = errors.New("dice: invalid range")

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Modifier derives the check modifier for an effective stat value.
//
// Postcondition: Returns floor((value-10)/2), rounding toward negative infinity.
func Modifier(value int) int {
	diff := value - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// CheckResult is the full audit trail of a single d20 check.
//
// Invariant: Total == Roll + Modifier; Success == (Total >= Difficulty).
type CheckResult struct {
	Roll            int  `json:"roll"`
	Modifier        int  `json:"modifier"`
	Total           int  `json:"total"`
	Difficulty      int  `json:"difficulty"`
	Success         bool `json:"success"`
	CriticalSuccess bool `json:"criticalSuccess"`
	CriticalFailure bool `json:"criticalFailure"`
}

// String returns a human-readable audit string, e.g. "d20 14 +2 = 16 vs 15: success".
func (r CheckResult) String() string {
	outcome := "failure"
	if r.Success {
		outcome = "success"
	}
	return fmt.Sprintf("d20 %d %+d = %d vs %d: %s", r.Roll, r.Modifier, r.Total, r.Difficulty, outcome)
}

// ResolveCheck evaluates a check for an already drawn die value.
//
// Precondition: roll must be in [1, 20].
// Postcondition: Success depends only on roll+modifier >= difficulty; natural 1 and 20
// only set the critical flags.
func ResolveCheck(roll, modifier, difficulty int) CheckResult {
	if roll < 1 || roll > CheckDie {
		panic(fmt.Sprintf("dice: ResolveCheck called with roll %d outside [1,%d]", roll, CheckDie))
	}
	total := roll + modifier
	return CheckResult{
		Roll:            roll,
		Modifier:        modifier,
		Total:           total,
		Difficulty:      difficulty,
		Success:         total >= difficulty,
		CriticalSuccess: roll == CheckDie,
		CriticalFailure: roll == 1,
	}
}

// Check draws one d20 from src and resolves it against difficulty.
//
// Precondition: src must be non-nil.
func Check(src Source, modifier, difficulty int) CheckResult {
	return ResolveCheck(src.Intn(CheckDie)+1, modifier, difficulty)
}

// EffectValue draws a uniformly random integer in [min, max] inclusive.
//
// Postcondition: Returns a value in [min, max], or ErrInvalidRange when max < min.
func EffectValue(src Source, min, max int) (int, error) {
	if max < min {
		return 0, fmt.Errorf("%w: max %d < min %d", ErrInvalidRange, max, min)
	}
	return min + src.Intn(max-min+1), nil
}

// ApplyHPDelta returns current+delta clamped to [0, max].
//
// Every HP mutation in the game goes through this function.
//
// Precondition: max >= 0.
// Postcondition: 0 <= result <= max.
func ApplyHPDelta(current, max, delta int) int {
	hp := current + delta
	if hp > max {
		hp = max
	}
	if hp < 0 {
		hp = 0
	}
	return hp
}
