package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged pool rolling.
// All rolls are logged at debug level with pool size, difficulty, dice and counts.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil || logger == nil {
		panic("dice: NewLoggedRoller precondition violated: src and logger must be non-nil")
	}
	return &Roller{src: src, logger: logger}
}

// RollPool rolls pool dice against difficulty and logs the result.
//
// Postcondition: result logged at debug on success; returns PoolResult or error.
func (r *Roller) RollPool(pool, difficulty int) (PoolResult, error) {
	result, err := RollPool(r.src, pool, difficulty)
	if err != nil {
		r.logger.Debug("dice pool rejected",
			zap.Int("pool", pool),
			zap.Int("difficulty", difficulty),
			zap.Error(err),
		)
		return PoolResult{}, err
	}
	r.logger.Debug("dice pool",
		zap.Int("pool", len(result.Rolls)),
		zap.Int("difficulty", result.Difficulty),
		zap.Ints("dice", result.Rolls),
		zap.Int("successes", result.Successes),
		zap.Int("ones", result.Ones),
		zap.Bool("botch", result.Botch()),
	)
	return result, nil
}

// Roll evaluates a composed pool and logs the result.
//
// Postcondition: Equivalent to RollPool(c.Size, c.Difficulty).
func (r *Roller) Roll(c Composition) (PoolResult, error) {
	return r.RollPool(c.Size, c.Difficulty)
}
