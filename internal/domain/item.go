package domain

// StudyItem carries the review signals for a single learning item.
// Items are transient: they arrive with a request, get scored, and are
// discarded with the response. Numeric fields outside their documented
// ranges are not rejected here; the prediction pipeline clamps its
// outputs regardless of input extremity.
type StudyItem struct {
	ItemID              string   `json:"item_id" validate:"required"`
	Difficulty          string   `json:"difficulty" validate:"required"`
	Subject             string   `json:"subject" validate:"required"`
	ResponseTime        float64  `json:"response_time"`
	PreviousAttempts    int      `json:"previous_attempts"`
	SuccessRate         float64  `json:"success_rate"`
	DaysSinceLastReview float64  `json:"days_since_last_review"`
	StudyStreak         int      `json:"study_streak"`
	CurrentAccuracy     float64  `json:"current_accuracy"`
	EaseFactor          *float64 `json:"ease_factor,omitempty"`
}

// ScheduleEntry is one row of a generated study schedule.
// NextReviewDate is computed from the full-precision interval while
// DaysUntilReview truncates it, so the two can disagree by design.
type ScheduleEntry struct {
	ItemID          string  `json:"item_id"`
	Subject         string  `json:"subject"`
	Difficulty      string  `json:"difficulty"`
	NextReviewDate  string  `json:"next_review_date"`
	DaysUntilReview int     `json:"days_until_review"`
	Priority        float64 `json:"priority"`
	SuccessRate     float64 `json:"success_rate"`
}
