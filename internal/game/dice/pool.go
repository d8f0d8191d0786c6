package dice

import "fmt"

// RollPool draws max(pool, 0) d10 from src and tallies them against difficulty.
//
// Precondition: src must be non-nil.
// Postcondition: On success len(result.Rolls) == max(pool, 0) and every roll is in [1, 10].
// Returns ErrInvalidDifficulty (wrapped) without drawing any dice when difficulty
// is outside [MinDifficulty, MaxDifficulty], and ErrPoolTooLarge (wrapped) when
// pool exceeds MaxPool.
func RollPool(src Source, pool, difficulty int) (PoolResult, error) {
	if difficulty < MinDifficulty || difficulty > MaxDifficulty {
		return PoolResult{}, fmt.Errorf("rolling pool of %d vs %d: %w", pool, difficulty, ErrInvalidDifficulty)
	}
	if pool > MaxPool {
		return PoolResult{}, fmt.Errorf("rolling pool of %d vs %d: %w", pool, difficulty, ErrPoolTooLarge)
	}
	if pool < 0 {
		pool = 0
	}
	rolls := make([]int, pool)
	for i := range rolls {
		rolls[i] = src.Intn(Sides) + 1
	}
	return Tally(rolls, difficulty), nil
}
