package scheduler

import (
	"math"
	"testing"
)

func TestUpdateEaseFactor(t *testing.T) {
	cases := []struct {
		name        string
		currentEase float64
		performance float64
		expected    float64
	}{
		// 2.0 * 1.1 = 2.2
		{"good performance grows ease", 2.0, 0.9, 2.2},
		{"boundary 0.8 grows ease", 2.0, 0.8, 2.2},
		{"middling performance leaves ease alone", 2.0, 0.7, 2.0},
		{"boundary 0.6 leaves ease alone", 2.0, 0.6, 2.0},
		// 1.4 * 0.8 = 1.12, clamped up to 1.3
		{"poor performance shrinks ease, clamped at floor", 1.4, 0.5, 1.3},
		{"poor performance shrinks ease", 2.0, 0.2, 1.6},
		// 2.4 * 1.1 = 2.64, clamped down to 2.5
		{"growth clamped at ceiling", 2.4, 0.95, 2.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			newEase := UpdateEaseFactor(tc.currentEase, tc.performance)
			if math.Abs(newEase-tc.expected) > 1e-9 {
				t.Errorf("Expected ease %v, but got %v", tc.expected, newEase)
			}
		})
	}
}

func TestUpdateEaseFactorStaysWithinBounds(t *testing.T) {
	eases := []float64{-5, 0, 1.0, 1.3, 2.0, 2.5, 100}
	performances := []float64{-1, 0, 0.5, 0.6, 0.8, 1, 10}

	for _, ease := range eases {
		for _, perf := range performances {
			newEase := UpdateEaseFactor(ease, perf)
			if newEase < MinEaseFactor || newEase > MaxEaseFactor {
				t.Errorf("Expected ease in [%v, %v] for ease=%v perf=%v, but got %v",
					MinEaseFactor, MaxEaseFactor, ease, perf, newEase)
			}
		}
	}
}
