// Package scheduler implements Component D: the daily review scheduler
// (spec §4.D). It is a pure function over a UserProblem set and "now",
// grounded on the teacher's due-queue builder in
// scheduler-service/internal/service/scheduler_service.go.
package scheduler

import (
	"sort"
	"time"

	"adaptive-engine/internal/models"
)

// Due returns the problems due for review at now, sorted by
// review_schedule ascending, then decay_score ascending (staler first),
// then total_attempts ascending (spec §4.D). decayScores supplies each
// UserProblem's current decay score (computed by the caller via
// internal/decay, since Score needs a success-rate and stability the
// scheduler does not itself own).
func Due(userProblems []models.UserProblem, decayScores map[string]float64, now time.Time) []models.UserProblem {
	due := make([]models.UserProblem, 0, len(userProblems))
	for _, up := range userProblems {
		if isDue(up, now) {
			due = append(due, up)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if !a.ReviewSchedule.Equal(b.ReviewSchedule) {
			return a.ReviewSchedule.Before(b.ReviewSchedule)
		}
		scoreA, scoreB := decayScores[a.ProblemID], decayScores[b.ProblemID]
		if scoreA != scoreB {
			return scoreA < scoreB
		}
		return a.AttemptStats.Total < b.AttemptStats.Total
	})
	return due
}

// isDue reports whether up is due: review_schedule <= now and
// cooldown_until <= now (spec §4.D, §8 item 12).
func isDue(up models.UserProblem, now time.Time) bool {
	if up.ReviewSchedule.After(now) {
		return false
	}
	if up.CooldownUntil != nil && up.CooldownUntil.After(now) {
		return false
	}
	return true
}

// Learning filters due to box levels 1-5 (spec §4.D).
func Learning(due []models.UserProblem) []models.UserProblem {
	return filterByBox(due, 1, 5)
}

// Mastered filters due to box levels 6-8 (spec §4.D).
func Mastered(due []models.UserProblem) []models.UserProblem {
	return filterByBox(due, 6, 8)
}

func filterByBox(due []models.UserProblem, min, max int) []models.UserProblem {
	out := make([]models.UserProblem, 0, len(due))
	for _, up := range due {
		if up.BoxLevel >= min && up.BoxLevel <= max {
			out = append(out, up)
		}
	}
	return out
}
