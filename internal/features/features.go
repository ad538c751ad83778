package features

import "github.com/Vishakh-Neelakantan/Mnemic/internal/domain"

// Count is the width of the feature vector the scaler and model were
// fitted on.
const Count = 9

// DefaultEaseFactor is used when an item arrives without an ease factor.
const DefaultEaseFactor = 2.5

// Vector assembles the feature vector for one item. The element order is
// a hard contract with the fitted scaler: it must match the column order
// used at training time or every prediction is silently wrong.
func Vector(difficultyCode, subjectCode int, item domain.StudyItem) []float64 {
	ease := DefaultEaseFactor
	if item.EaseFactor != nil {
		ease = *item.EaseFactor
	}
	return []float64{
		float64(difficultyCode),
		float64(subjectCode),
		item.ResponseTime,
		float64(item.PreviousAttempts),
		item.SuccessRate,
		item.DaysSinceLastReview,
		float64(item.StudyStreak),
		item.CurrentAccuracy,
		ease,
	}
}
