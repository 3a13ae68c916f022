package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged rolling.
// Every check and effect roll is logged at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source {
	return r.src
}

// Check rolls a d20 check and logs the result.
//
// Postcondition: result logged; result.Success == (result.Total >= difficulty).
func (r *Roller) Check(reason string, modifier, difficulty int) CheckResult {
	result := Check(r.src, modifier, difficulty)
	r.logger.Debug("skill check",
		zap.String("reason", reason),
		zap.Int("roll", result.Roll),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total),
		zap.Int("difficulty", result.Difficulty),
		zap.Bool("success", result.Success),
	)
	return result
}

// EffectValue draws a value in [min, max] and logs it.
//
// Postcondition: Returns a value in [min, max] or ErrInvalidRange.
func (r *Roller) EffectValue(min, max int) (int, error) {
	v, err := EffectValue(r.src, min, max)
	if err != nil {
		r.logger.Warn("effect roll rejected",
			zap.Int("min", min),
			zap.Int("max", max),
			zap.Error(err),
		)
		return 0, err
	}
	r.logger.Debug("effect roll",
		zap.Int("min", min),
		zap.Int("max", max),
		zap.Int("value", v),
	)
	return v, nil
}
