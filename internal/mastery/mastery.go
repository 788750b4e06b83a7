// Package mastery implements Component B: the Tag-Mastery engine (spec
// §4.B). It recomputes TagMastery rows from UserProblem + Attempt state,
// grounded on the teacher's tag-aggregation pass in
// user-service/internal/service/mastery_service.go, generalized to the
// spec's adaptive-threshold escape hatches.
package mastery

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"adaptive-engine/internal/config"
	"adaptive-engine/internal/decay"
	"adaptive-engine/internal/models"
)

// memberState is one problem's contribution to a tag's aggregate.
type memberState struct {
	total      int
	successful int
	stability  float64
	decayScore float64
}

// Recompute rebuilds every TagMastery row touched by userProblems, spec
// §4.B. problemsByID supplies each UserProblem's tags; existing supplies
// the prior struggle_history so escape-hatch counters carry forward. The
// full rebuild is O(|userProblems|), matching the spec's "full rebuild is
// acceptable" note.
//
// Recompute never mutates existing or userProblems; it returns a fresh
// slice, sorted by tag so repeated calls over identical inputs yield
// byte-identical output (spec §8 item 8, tag recompute idempotence).
func Recompute(
	cfg config.MasteryConfig,
	problemsByID map[int]models.Problem,
	userProblems []models.UserProblem,
	existing map[string]models.TagMastery,
	userID string,
	now time.Time,
) []models.TagMastery {
	members := map[string][]memberState{}
	lastAttemptByTag := map[string]*time.Time{}

	for _, up := range userProblems {
		problem, ok := problemsByID[up.LeetcodeID]
		if !ok {
			continue
		}
		stability := up.Stability
		if stability <= 0 {
			stability = decay.DefaultStability
		}
		score := decay.Score(up.LastAttemptDate, up.AttemptStats.SuccessRate(), stability, now)

		for _, tag := range problem.Tags {
			members[tag] = append(members[tag], memberState{
				total:      up.AttemptStats.Total,
				successful: up.AttemptStats.Successful,
				stability:  stability,
				decayScore: score,
			})
			if up.LastAttemptDate != nil {
				if cur := lastAttemptByTag[tag]; cur == nil || up.LastAttemptDate.After(*cur) {
					t := *up.LastAttemptDate
					lastAttemptByTag[tag] = &t
				}
			}
		}
	}

	rows := make([]models.TagMastery, 0, len(members))
	for tag, states := range members {
		rows = append(rows, recomputeTag(cfg, tag, userID, states, lastAttemptByTag[tag], existing[tag]))
	}
	sortByTag(rows)
	return rows
}

func recomputeTag(cfg config.MasteryConfig, tag, userID string, states []memberState, lastAttempt *time.Time, prior models.TagMastery) models.TagMastery {
	var total, successful int
	weights := make([]float64, 0, len(states))
	scores := make([]float64, 0, len(states))
	for _, m := range states {
		total += m.total
		successful += m.successful
		weights = append(weights, m.stability)
		scores = append(scores, m.decayScore)
	}

	decayScore := 0.0
	if len(scores) > 0 {
		decayScore = stat.Mean(scores, weights)
	}

	mastered := Mastered(cfg, total, successful, prior.Struggle.ConsecutiveStruggles)
	struggle := NextStruggle(cfg, prior.Struggle, total, mastered)

	return models.TagMastery{
		Tag:                tag,
		UserID:             userID,
		TotalAttempts:      total,
		SuccessfulAttempts: successful,
		DecayScore:         decayScore,
		Mastered:           mastered,
		LastAttemptDate:    lastAttempt,
		Struggle:           struggle,
	}
}

func sortByTag(rows []models.TagMastery) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j-1].Tag > rows[j].Tag; j-- {
			rows[j-1], rows[j] = rows[j], rows[j-1]
		}
	}
}

// Mastered applies the adaptive-threshold decision from spec §4.B to a
// total/successful attempt count and a consecutive-struggle count.
func Mastered(cfg config.MasteryConfig, totalAttempts, successfulAttempts, consecutiveStruggles int) bool {
	if totalAttempts == 0 {
		return false
	}
	rate := float64(successfulAttempts) / float64(totalAttempts)

	if totalAttempts >= cfg.BaseMinAttempts && rate >= cfg.BaseSuccessRate {
		return true
	}
	if totalAttempts >= cfg.LightAttempts && rate >= cfg.LightSuccessRate {
		return true
	}
	if totalAttempts >= cfg.ModerateAttempts && rate >= cfg.ModerateSuccessRate {
		return true
	}
	if consecutiveStruggles >= cfg.HeavyConsecutiveStruggle && rate >= cfg.HeavySuccessRate {
		return true
	}
	return false
}

// NextStruggle advances struggle_history for one recompute pass: it
// increments consecutive_struggles when the tag still evaluates as "not
// mastered" with >= base_min_attempts, and resets on mastery (spec §4.B).
func NextStruggle(cfg config.MasteryConfig, prior models.StruggleHistory, totalAttempts int, mastered bool) models.StruggleHistory {
	if mastered {
		return models.StruggleHistory{}
	}
	next := prior
	if totalAttempts >= cfg.BaseMinAttempts {
		next.ConsecutiveStruggles++
	}
	return next
}
