package scheduler

import "github.com/Vishakh-Neelakantan/Mnemic/internal/domain"

// difficultyWeights biases priority so harder items surface sooner.
// Unknown labels fall through to 1.0.
var difficultyWeights = map[string]float64{
	"easy":   1.0,
	"medium": 0.8,
	"hard":   0.6,
}

// Priority computes a sortable urgency score for one item given its
// predicted interval. Lower means more urgent. The score only carries
// relative order, so it is deliberately unbounded.
func Priority(item domain.StudyItem, intervalDays float64) float64 {
	priority := intervalDays

	if w, ok := difficultyWeights[item.Difficulty]; ok {
		priority *= w
	}

	if item.SuccessRate < 0.6 {
		priority *= 0.7
	}

	return priority
}
