package scheduler

import (
	"fmt"
	"math"

	"github.com/Vishakh-Neelakantan/Mnemic/internal/domain"
	"github.com/Vishakh-Neelakantan/Mnemic/internal/encoding"
	"github.com/Vishakh-Neelakantan/Mnemic/internal/features"
	"github.com/Vishakh-Neelakantan/Mnemic/internal/model"
)

// Interval bounds in days. Every prediction is clamped into this range no
// matter how extreme the inputs are.
const (
	MinIntervalDays = 1.0
	MaxIntervalDays = 90.0
)

// difficultyMultipliers adjusts the model's interval per difficulty.
// Unknown labels fall through to 1.0.
var difficultyMultipliers = map[string]float64{
	"easy":   1.2,
	"medium": 1.0,
	"hard":   0.7,
}

// Service predicts review intervals and builds schedules. Its collaborators
// are loaded once at startup and never mutated, so a single Service is safe
// for concurrent request handlers.
type Service struct {
	scorer     model.Scorer
	scaler     model.Scaler
	difficulty *encoding.Encoder
	subject    *encoding.Encoder
}

// NewService wires the fitted collaborators into a Service. It fails if any
// collaborator is missing; a Service is never constructed half-loaded.
func NewService(scorer model.Scorer, scaler model.Scaler, difficulty, subject *encoding.Encoder) (*Service, error) {
	if scorer == nil || scaler == nil || difficulty == nil || subject == nil {
		return nil, ErrModelUnavailable
	}
	return &Service{
		scorer:     scorer,
		scaler:     scaler,
		difficulty: difficulty,
		subject:    subject,
	}, nil
}

// Ready reports whether the service holds all of its collaborators.
func (s *Service) Ready() bool {
	return s != nil && s.scorer != nil && s.scaler != nil && s.difficulty != nil && s.subject != nil
}

// Predict returns the optimal next-review interval in days for one item,
// always within [MinIntervalDays, MaxIntervalDays].
//
// The model's scalar output is rescaled to days, then dampened by success
// rate, then weighted by difficulty. The success-rate branches are ordered:
// a rate below 0.3 takes precedence over the below-0.6 branch.
func (s *Service) Predict(item domain.StudyItem) (float64, error) {
	if !s.Ready() {
		return 0, ErrModelUnavailable
	}

	vec := features.Vector(
		s.difficulty.Encode(item.Difficulty),
		s.subject.Encode(item.Subject),
		item,
	)

	scaled, err := s.scaler.Transform(vec)
	if err != nil {
		return 0, fmt.Errorf("scaling features: %w", err)
	}
	scalar, err := s.scorer.Infer(scaled)
	if err != nil {
		return 0, fmt.Errorf("scoring features: %w", err)
	}

	// The trained model ends in a sigmoid, but the interface only promises
	// a scalar; clamp so the [1, 90] invariant cannot leak.
	scalar = math.Max(0, math.Min(scalar, 1))

	// Scale from [0, 1] back to [1, 90] days, matching the training data.
	days := 1 + scalar*89

	switch {
	case item.SuccessRate < 0.3:
		days = math.Max(MinIntervalDays, days*0.3)
	case item.SuccessRate < 0.6:
		days = math.Max(MinIntervalDays, days*0.6)
	case item.SuccessRate > 0.9:
		days = math.Min(MaxIntervalDays, days*1.3)
	}

	days *= difficultyMultiplier(item.Difficulty)

	return math.Max(MinIntervalDays, math.Min(days, MaxIntervalDays)), nil
}

func difficultyMultiplier(difficulty string) float64 {
	if m, ok := difficultyMultipliers[difficulty]; ok {
		return m
	}
	return 1.0
}
