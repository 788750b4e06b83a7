package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"adaptive-engine/internal/models"
)

func TestDue_FiltersOnReviewScheduleAndCooldown(t *testing.T) {
	now := time.Now()
	past := now.Add(-1 * time.Hour)
	future := now.Add(1 * time.Hour)

	ups := []models.UserProblem{
		{ProblemID: "p1", ReviewSchedule: past},
		{ProblemID: "p2", ReviewSchedule: future},
		{ProblemID: "p3", ReviewSchedule: past, CooldownUntil: &future},
		{ProblemID: "p4", ReviewSchedule: past, CooldownUntil: &past},
	}

	due := Due(ups, map[string]float64{}, now)
	ids := map[string]bool{}
	for _, up := range due {
		ids[up.ProblemID] = true
	}
	assert.True(t, ids["p1"])
	assert.False(t, ids["p2"])
	assert.False(t, ids["p3"])
	assert.True(t, ids["p4"])
}

func TestDue_SortOrder(t *testing.T) {
	now := time.Now()
	t1 := now.Add(-3 * time.Hour)
	t2 := now.Add(-2 * time.Hour)

	ups := []models.UserProblem{
		{ProblemID: "late-high-decay", ReviewSchedule: t2, AttemptStats: models.AttemptStats{Total: 5}},
		{ProblemID: "early", ReviewSchedule: t1, AttemptStats: models.AttemptStats{Total: 1}},
		{ProblemID: "late-low-decay", ReviewSchedule: t2, AttemptStats: models.AttemptStats{Total: 2}},
	}
	decayScores := map[string]float64{
		"late-high-decay": 0.9,
		"early":            0.5,
		"late-low-decay":   0.1,
	}

	due := Due(ups, decayScores, now)
	assert.Equal(t, []string{"early", "late-low-decay", "late-high-decay"}, []string{due[0].ProblemID, due[1].ProblemID, due[2].ProblemID})
}

func TestLearningAndMastered_SplitByBox(t *testing.T) {
	now := time.Now()
	past := now.Add(-1 * time.Hour)
	due := []models.UserProblem{
		{ProblemID: "a", BoxLevel: 1, ReviewSchedule: past},
		{ProblemID: "b", BoxLevel: 5, ReviewSchedule: past},
		{ProblemID: "c", BoxLevel: 6, ReviewSchedule: past},
		{ProblemID: "d", BoxLevel: 8, ReviewSchedule: past},
	}
	learning := Learning(due)
	mastered := Mastered(due)
	assert.Len(t, learning, 2)
	assert.Len(t, mastered, 2)
}
