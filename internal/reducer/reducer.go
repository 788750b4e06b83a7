// Package reducer implements Component G: the Post-Session Reducer (spec
// §4.G). It takes a completed Session and its attempts and produces
// updated UserProblem rows, TagMastery rows, a SessionAnalytics row, and
// a new SessionState — each step idempotent. Grounded on the teacher's
// post-session aggregation pass in
// scheduler-service/internal/service/session_reducer.go.
package reducer

import (
	"sort"
	"time"

	"adaptive-engine/internal/config"
	"adaptive-engine/internal/decay"
	"adaptive-engine/internal/ladder"
	"adaptive-engine/internal/mastery"
	"adaptive-engine/internal/models"
)

// Input bundles everything the reducer needs for one completed session.
type Input struct {
	Session              models.Session
	Attempts             []models.Attempt
	ProblemsByLeetcodeID map[int]models.Problem
	UserProblemsByID     map[string]models.UserProblem // keyed by ProblemID
	ExistingTagMastery   map[string]models.TagMastery
	AllUserProblems      []models.UserProblem // for the full §4.B rebuild
	PriorState           models.SessionState
	Ladders              []models.PatternLadder
	Now                  time.Time
}

// Output bundles the reducer's effects for the caller to persist.
type Output struct {
	UpdatedUserProblems []models.UserProblem
	TagMastery          []models.TagMastery
	MasteryDeltas       []models.MasteryDelta
	Analytics           models.SessionAnalytics
	NextState           models.SessionState
	UpdatedLadders      []models.PatternLadder
	LaddersToRegenerate []string
}

// Apply runs the full reducer pipeline, spec §4.G steps 1-6.
func Apply(cfg *config.Config, in Input) Output {
	updatedUserProblems, touchedTags := applyAttempts(in)

	allUserProblems := mergeUserProblems(in.AllUserProblems, updatedUserProblems)
	newMastery := mastery.Recompute(cfg.Mastery, in.ProblemsByLeetcodeID, allUserProblems, in.ExistingTagMastery, in.Session.UserID, in.Now)

	deltas := masteryDeltas(in.ExistingTagMastery, newMastery, touchedTags)

	analytics := computeAnalytics(in)

	nextState := updateSessionState(cfg.Settings, in.PriorState, analytics)

	updatedLadders, readyTags := updateLadders(in)

	return Output{
		UpdatedUserProblems: updatedUserProblems,
		TagMastery:          newMastery,
		MasteryDeltas:       deltas,
		Analytics:           analytics,
		NextState:           nextState,
		UpdatedLadders:      updatedLadders,
		LaddersToRegenerate: readyTags,
	}
}

// applyAttempts runs step 1: box transition, attempt_stats,
// consecutive_failures, last_attempt_date, and review_schedule
// recomputation for every attempt in the session.
func applyAttempts(in Input) ([]models.UserProblem, map[string]bool) {
	touchedTags := map[string]bool{}
	updated := map[string]models.UserProblem{}

	for _, a := range in.Attempts {
		up, ok := in.UserProblemsByID[a.ProblemID]
		if !ok {
			continue
		}
		if existing, seen := updated[a.ProblemID]; seen {
			up = existing
		}

		newBox, failures, forced := decay.Transition(up.BoxLevel, a.Success, up.ConsecutiveFailures)
		up.BoxLevel = newBox
		up.ConsecutiveFailures = failures
		if a.Success {
			up.AttemptStats = up.AttemptStats.RecordSuccess()
		} else {
			up.AttemptStats = up.AttemptStats.RecordFailure()
		}
		attemptDate := a.AttemptDate
		up.LastAttemptDate = &attemptDate

		if forced {
			up.ReviewSchedule = in.Now
		} else {
			up.ReviewSchedule = decay.NextReview(up.BoxLevel, up.LastAttemptDate, in.Now)
		}
		up.Version++

		updated[a.ProblemID] = up

		if problem, ok := in.ProblemsByLeetcodeID[up.LeetcodeID]; ok {
			for _, tag := range problem.Tags {
				touchedTags[tag] = true
			}
		}
	}

	out := make([]models.UserProblem, 0, len(updated))
	ids := make([]string, 0, len(updated))
	for id := range updated {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out = append(out, updated[id])
	}
	return out, touchedTags
}

func mergeUserProblems(all []models.UserProblem, updated []models.UserProblem) []models.UserProblem {
	byID := map[string]models.UserProblem{}
	for _, up := range all {
		byID[up.ProblemID] = up
	}
	for _, up := range updated {
		byID[up.ProblemID] = up
	}
	out := make([]models.UserProblem, 0, len(byID))
	for _, up := range byID {
		out = append(out, up)
	}
	return out
}

// masteryDeltas implements step 3: for each touched tag, emit
// {pre_mastered, post_mastered, strength_delta, decay_delta}, dropping
// no-op deltas.
func masteryDeltas(before map[string]models.TagMastery, after []models.TagMastery, touchedTags map[string]bool) []models.MasteryDelta {
	afterByTag := map[string]models.TagMastery{}
	for _, r := range after {
		afterByTag[r.Tag] = r
	}

	tags := make([]string, 0, len(touchedTags))
	for tag := range touchedTags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var deltas []models.MasteryDelta
	for _, tag := range tags {
		pre := before[tag]
		post := afterByTag[tag]

		strengthDelta := post.TotalAttempts - pre.TotalAttempts
		decayDelta := post.DecayScore - pre.DecayScore

		if pre.Mastered == post.Mastered && strengthDelta == 0 && decayDelta == 0 {
			continue
		}
		deltas = append(deltas, models.MasteryDelta{
			Tag:           tag,
			PreMastered:   pre.Mastered,
			PostMastered:  post.Mastered,
			StrengthDelta: strengthDelta,
			DecayDelta:    decayDelta,
		})
	}
	return deltas
}

// computeAnalytics implements step 4.
func computeAnalytics(in Input) models.SessionAnalytics {
	total := len(in.Attempts)
	successCount := 0
	var totalTime int
	difficultyCounts := map[models.Difficulty]int{}
	accuracyByTag := map[string]struct{ success, total int }{}

	for _, a := range in.Attempts {
		if a.Success {
			successCount++
		}
		totalTime += a.TimeSpentSeconds

		up := in.UserProblemsByID[a.ProblemID]
		if p, ok := in.ProblemsByLeetcodeID[up.LeetcodeID]; ok {
			difficultyCounts[p.Difficulty]++
			for _, tag := range p.Tags {
				s := accuracyByTag[tag]
				s.total++
				if a.Success {
					s.success++
				}
				accuracyByTag[tag] = s
			}
		}
	}

	accuracy := 0.0
	if total > 0 {
		accuracy = float64(successCount) / float64(total)
	}
	avgTime := 0.0
	if total > 0 {
		avgTime = float64(totalTime) / float64(total)
	}

	predominant := models.Easy
	best := -1
	for _, d := range []models.Difficulty{models.Easy, models.Medium, models.Hard} {
		if difficultyCounts[d] > best {
			best = difficultyCounts[d]
			predominant = d
		}
	}

	var strong, weak []string
	tags := make([]string, 0, len(accuracyByTag))
	for tag := range accuracyByTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		s := accuracyByTag[tag]
		rate := float64(s.success) / float64(s.total)
		if rate >= 0.8 {
			strong = append(strong, tag)
		}
		if rate <= 0.4 {
			weak = append(weak, tag)
		}
	}

	return models.SessionAnalytics{
		SessionID:             in.Session.SessionID,
		UserID:                in.Session.UserID,
		CompletedAt:           in.Now,
		Accuracy:              accuracy,
		AvgTimeSeconds:        avgTime,
		StrongTags:            strong,
		WeakTags:              weak,
		PredominantDifficulty: predominant,
	}
}

// updateSessionState implements step 5: increment counters, record
// last_performance, and update escape-hatch counters. The tag-window
// counter is left as is; settings.Compute resets it when the window widens.
func updateSessionState(cfg config.SettingsConfig, prior models.SessionState, analytics models.SessionAnalytics) models.SessionState {
	next := prior
	next.NumSessionsCompleted++
	next.Version++

	efficiency := 0.0
	if analytics.AvgTimeSeconds > 0 {
		efficiency = 1.0 / (1.0 + analytics.AvgTimeSeconds/60.0)
	}
	next.LastPerformance = models.LastPerformance{
		Accuracy:        analytics.Accuracy,
		EfficiencyScore: efficiency,
	}

	if prior.CurrentDifficultyCap == next.CurrentDifficultyCap {
		next.EscapeHatches.SessionsAtCurrentDifficulty = prior.EscapeHatches.SessionsAtCurrentDifficulty + 1
	} else {
		next.EscapeHatches.SessionsAtCurrentDifficulty = 0
	}

	return next
}

// updateLadders implements step 6: mark attempted problems in any
// ladder they belong to and report which ladders are ready to
// regenerate (all entries attempted).
func updateLadders(in Input) ([]models.PatternLadder, []string) {
	ladders := append([]models.PatternLadder(nil), in.Ladders...)
	var regenerate []string
	for _, a := range in.Attempts {
		up := in.UserProblemsByID[a.ProblemID]
		_, ready := ladder.MarkAttempted(ladders, up.LeetcodeID)
		regenerate = append(regenerate, ready...)
	}
	return ladders, dedupStrings(regenerate)
}

func dedupStrings(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
