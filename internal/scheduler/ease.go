package scheduler

// Ease factor bounds. The default matches the value assumed for items that
// arrive without one.
const (
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.5
	DefaultEaseFactor = 2.5
)

// UpdateEaseFactor adjusts a spaced-repetition ease multiplier from an
// observed performance score. Pure function of its arguments.
//
// Performance at or above 0.8 grows the ease by 10%, between 0.6 and 0.8
// leaves it alone, and anything lower shrinks it by 20%. The result is
// clamped to [MinEaseFactor, MaxEaseFactor].
func UpdateEaseFactor(currentEase, performance float64) float64 {
	newEase := currentEase
	switch {
	case performance >= 0.8:
		newEase = currentEase * 1.1
	case performance >= 0.6:
		// unchanged
	default:
		newEase = currentEase * 0.8
	}

	if newEase < MinEaseFactor {
		return MinEaseFactor
	}
	if newEase > MaxEaseFactor {
		return MaxEaseFactor
	}
	return newEase
}
