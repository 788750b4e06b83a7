// Package decay implements Component A: the pure decay-score, next-review,
// and box-transition functions (spec §4.A). These never suspend and never
// touch a store — they are grounded on the teacher's SM2Algorithm
// (scheduler-service/internal/algorithms/sm2.go), generalized from SM-2's
// easiness-factor model to the spec's forgetting-curve decay score.
package decay

import (
	"math"
	"time"
)

// DefaultStability is the stability constant used when the caller does not
// supply one, matching spec §4.A's default argument.
const DefaultStability = 6.0

// IntervalDays is the Leitner box interval table from spec §4.A.
var IntervalDays = map[int]int{
	1: 1, 2: 2, 3: 4, 4: 7, 5: 14, 6: 30, 7: 60, 8: 120,
}

const MaxBox = 8
const MinBox = 1

// Score computes the forgetting-curve decay score, spec §4.A:
//
//	exp(-Δdays / (stability · (0.5 + success_rate))), clamped to [0,1].
//
// A nil lastAttemptDate (never attempted) returns 1.0.
func Score(lastAttemptDate *time.Time, successRate float64, stability float64, now time.Time) float64 {
	if lastAttemptDate == nil {
		return 1.0
	}
	if stability <= 0 {
		stability = DefaultStability
	}
	if successRate < 0 {
		successRate = 0
	}
	if successRate > 1 {
		successRate = 1
	}

	deltaDays := now.Sub(*lastAttemptDate).Hours() / 24.0
	if deltaDays < 0 {
		deltaDays = 0
	}

	score := math.Exp(-deltaDays / (stability * (0.5 + successRate)))
	return clamp01(score)
}

// NextReview computes the next review timestamp from the box-level interval
// table (spec §4.A). Box 1 with a nil lastAttemptDate yields "now".
func NextReview(boxLevel int, lastAttemptDate *time.Time, now time.Time) time.Time {
	if lastAttemptDate == nil {
		if boxLevel == 1 {
			return now
		}
		lastAttemptDate = &now
	}

	days, ok := IntervalDays[boxLevel]
	if !ok {
		days = IntervalDays[MinBox]
	}
	return lastAttemptDate.AddDate(0, 0, days)
}

// Transition applies a box transition for an attempt outcome, spec §4.A:
// success increments (capped at 8); failure resets to max(1, current-2) and
// increments consecutiveFailures. Three consecutive failures force the box
// to 1 and an immediate review.
//
// consecutiveFailuresIn is the count *before* this attempt; the function
// returns the updated count and whether an immediate review was forced.
func Transition(currentBox int, success bool, consecutiveFailuresIn int) (newBox int, consecutiveFailuresOut int, forcedImmediateReview bool) {
	if success {
		newBox = currentBox + 1
		if newBox > MaxBox {
			newBox = MaxBox
		}
		return newBox, 0, false
	}

	consecutiveFailuresOut = consecutiveFailuresIn + 1
	newBox = currentBox - 2
	if newBox < MinBox {
		newBox = MinBox
	}

	if consecutiveFailuresOut >= 3 {
		return MinBox, consecutiveFailuresOut, true
	}
	return newBox, consecutiveFailuresOut, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
