// Package dice provides the d10 dice-pool resolution engine: rolling a pool
// against a difficulty, counting successes and ones, and classifying the result.
package dice

import (
	"errors"
	"fmt"
)

// Sides is the number of faces on every die in a pool.
const Sides = 10

// DefaultDifficulty is the target number used when a roll names none.
const DefaultDifficulty = 6

// Difficulty bounds accepted by RollPool.
const (
	MinDifficulty = 2
	MaxDifficulty = 10
)

// MaxPool is the largest pool RollPool will draw.
const MaxPool = 100

// ErrInvalidDifficulty indicates a difficulty outside [MinDifficulty, MaxDifficulty].
var ErrInvalidDifficulty = errors.New("dice: difficulty must be between 2 and 10")

// ErrPoolTooLarge indicates a pool above MaxPool.
var ErrPoolTooLarge = errors.New("dice: pool exceeds 100 dice")

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Outcome classifies a pool result.
type Outcome int

const (
	// Failure is a roll with no net successes and no ones.
	Failure Outcome = iota
	// Success is a roll with at least one net success.
	Success
	// Botch is a roll with no net successes and at least one 1.
	Botch
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Failure:
		return "failure"
	case Success:
		return "success"
	case Botch:
		return "botch"
	default:
		return "unknown"
	}
}

// PoolResult holds the full audit trail for a single pool roll.
//
// Invariant: Successes + Ones <= len(Rolls).
type PoolResult struct {
	Rolls      []int // individual die results in roll order
	Difficulty int   // target number; a die succeeds when it is >= Difficulty
	Successes  int   // dice at or above Difficulty
	Ones       int   // dice showing 1
}

// Net returns successes minus ones. The value may be negative; callers that
// display a count clamp it themselves.
//
// Postcondition: return value == r.Successes - r.Ones.
func (r PoolResult) Net() int {
	return r.Successes - r.Ones
}

// Botch reports whether the roll botched: no net successes and at least one 1.
//
// Postcondition: returns true iff Net() <= 0 && Ones > 0.
func (r PoolResult) Botch() bool {
	return r.Net() <= 0 && r.Ones > 0
}

// Outcome returns the classification of the roll.
func (r PoolResult) Outcome() Outcome {
	switch {
	case r.Botch():
		return Botch
	case r.Net() > 0:
		return Success
	default:
		return Failure
	}
}

// String returns an audit string such as "4 dice vs 6 → [9 8 3 1] net 1".
func (r PoolResult) String() string {
	return fmt.Sprintf("%d dice vs %d → %v net %d", len(r.Rolls), r.Difficulty, r.Rolls, r.Net())
}

// Tally counts successes and ones for rolls against difficulty.
// It is the pure counting step of RollPool and is exported so that callers
// holding recorded dice can rebuild a PoolResult.
//
// Postcondition: result.Rolls is rolls (not copied); counts are consistent with it.
func Tally(rolls []int, difficulty int) PoolResult {
	r := PoolResult{Rolls: rolls, Difficulty: difficulty}
	for _, d := range rolls {
		if d == 1 {
			r.Ones++
			// A 1 never counts as a success, even against difficulty 1.
			continue
		}
		if d >= difficulty {
			r.Successes++
		}
	}
	return r
}
