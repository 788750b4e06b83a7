package decay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScore_NilLastAttempt(t *testing.T) {
	assert.Equal(t, 1.0, Score(nil, 0.5, DefaultStability, time.Now()))
}

func TestScore_MonotonicInElapsedDays(t *testing.T) {
	now := time.Now()
	recent := now.Add(-1 * 24 * time.Hour)
	stale := now.Add(-30 * 24 * time.Hour)

	scoreRecent := Score(&recent, 0.8, DefaultStability, now)
	scoreStale := Score(&stale, 0.8, DefaultStability, now)

	assert.Greater(t, scoreRecent, scoreStale)
}

func TestScore_MonotonicInSuccessRate(t *testing.T) {
	now := time.Now()
	last := now.Add(-10 * 24 * time.Hour)

	lowRate := Score(&last, 0.1, DefaultStability, now)
	highRate := Score(&last, 0.9, DefaultStability, now)

	assert.Greater(t, highRate, lowRate)
}

func TestScore_MonotonicInStability(t *testing.T) {
	now := time.Now()
	last := now.Add(-10 * 24 * time.Hour)

	lowStability := Score(&last, 0.5, 2.0, now)
	highStability := Score(&last, 0.5, 12.0, now)

	assert.Greater(t, highStability, lowStability)
}

func TestScore_ClampedToUnitInterval(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour) // negative elapsed days
	score := Score(&future, 1.0, DefaultStability, now)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestNextReview_Box1NilLastAttempt(t *testing.T) {
	now := time.Now()
	due := NextReview(1, nil, now)
	assert.Equal(t, now, due)
}

func TestNextReview_IntervalTable(t *testing.T) {
	now := time.Now()
	for box, days := range IntervalDays {
		due := NextReview(box, &now, now)
		assert.Equal(t, now.AddDate(0, 0, days), due)
	}
}

func TestNextReview_UnknownBoxFallsBackToBox1(t *testing.T) {
	now := time.Now()
	due := NextReview(99, &now, now)
	assert.Equal(t, now.AddDate(0, 0, IntervalDays[1]), due)
}

func TestTransition_SuccessIncrementsCapped(t *testing.T) {
	newBox, failures, forced := Transition(8, true, 2)
	assert.Equal(t, 8, newBox)
	assert.Equal(t, 0, failures)
	assert.False(t, forced)

	newBox, _, _ = Transition(3, true, 0)
	assert.Equal(t, 4, newBox)
}

func TestTransition_SuccessNeverDecreasesBox(t *testing.T) {
	for box := 1; box <= 8; box++ {
		newBox, _, _ := Transition(box, true, 0)
		assert.GreaterOrEqual(t, newBox, box)
	}
}

func TestTransition_FailureNeverIncreasesBox(t *testing.T) {
	for box := 1; box <= 8; box++ {
		newBox, _, _ := Transition(box, false, 0)
		assert.LessOrEqual(t, newBox, box)
	}
}

func TestTransition_FailureResetsByTwoFloorOne(t *testing.T) {
	newBox, failures, forced := Transition(5, false, 0)
	assert.Equal(t, 3, newBox)
	assert.Equal(t, 1, failures)
	assert.False(t, forced)

	newBox, _, _ = Transition(1, false, 0)
	assert.Equal(t, 1, newBox)
}

func TestTransition_ThreeConsecutiveFailuresForceBox1(t *testing.T) {
	box, failures, forced := Transition(6, false, 0)
	assert.Equal(t, 4, box)
	assert.False(t, forced)

	box, failures, forced = Transition(box, false, failures)
	assert.Equal(t, 2, box)
	assert.False(t, forced)

	box, failures, forced = Transition(box, false, failures)
	assert.Equal(t, 1, box)
	assert.Equal(t, 3, failures)
	assert.True(t, forced)
}
