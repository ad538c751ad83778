package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/Vishakh-Neelakantan/Mnemic/internal/domain"
)

const dateLayout = "2006-01-02"

// BuildSchedule predicts an interval for every item and returns the ones
// falling inside the look-ahead horizon, most urgent first.
//
// An item whose next review lands beyond now + daysAhead is silently
// dropped; that is the horizon doing its job, not an error. A prediction
// failure on any item aborts the whole batch — there is no partial
// schedule.
//
// The sort on priority is stable, so items with equal priority keep their
// input order.
func (s *Service) BuildSchedule(items []domain.StudyItem, daysAhead int, now time.Time) ([]domain.ScheduleEntry, error) {
	if !s.Ready() {
		return nil, ErrModelUnavailable
	}

	horizon := now.AddDate(0, 0, daysAhead)
	entries := make([]domain.ScheduleEntry, 0, len(items))

	for _, item := range items {
		interval, err := s.Predict(item)
		if err != nil {
			return nil, fmt.Errorf("predicting item %s: %w", item.ItemID, err)
		}

		// The date is computed from the full-precision interval; the
		// displayed day count truncates it. The two can disagree and that
		// mismatch is kept.
		nextReview := now.Add(time.Duration(interval * float64(24*time.Hour)))
		if nextReview.After(horizon) {
			continue
		}

		entries = append(entries, domain.ScheduleEntry{
			ItemID:          item.ItemID,
			Subject:         item.Subject,
			Difficulty:      item.Difficulty,
			NextReviewDate:  nextReview.Format(dateLayout),
			DaysUntilReview: int(interval),
			Priority:        Priority(item, interval),
			SuccessRate:     item.SuccessRate,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Priority < entries[j].Priority
	})

	return entries, nil
}
