// Package settings implements Component E: Adaptive Session Settings
// (spec §4.E). It computes the next session's configuration from
// SessionState, last performance, and recency-of-practice, grounded on
// the teacher's onboarding/promotion/demotion decision table in
// user-service/internal/service/progression_service.go.
package settings

import (
	"time"

	"adaptive-engine/internal/config"
	"adaptive-engine/internal/models"
)

// Input bundles every signal the decision table needs (spec §4.E).
type Input struct {
	State               models.SessionState
	FocusTags           []string
	LastAttemptAt       *time.Time
	DaysSinceLastAttempt int
	Now                 time.Time
}

// Compute derives the next SessionState from the current one, the
// decision table, the tag-window expansion rule, and the difficulty
// escape hatches (spec §4.E). Malformed input (nil focus tags, a zero
// SessionState) never panics; it falls back to onboarding defaults.
func Compute(cfg config.SettingsConfig, in Input) models.SessionState {
	state := in.State
	if state.UserID == "" {
		return onboardingDefaults(cfg, in.Now)
	}

	next := state
	next.Version = state.Version + 1
	// Re-derived by applyTagWindow unless the demotion row narrows it.
	next.CurrentAllowedTags = nil

	switch {
	case state.NumSessionsCompleted < cfg.OnboardingSessions:
		next.SessionLength = cfg.OnboardingLength
		next.NewProblemCount = cfg.OnboardingNewCount
		next.CurrentDifficultyCap = models.Easy

	case state.LastPerformance.Accuracy >= cfg.PromoteAccuracyMin &&
		state.LastPerformance.EfficiencyScore >= cfg.PromoteEfficiencyMin &&
		in.DaysSinceLastAttempt <= cfg.PromoteRecencyDays:
		next.SessionLength = min(state.SessionLength+1, cfg.MaxSessionLength)
		next.NewProblemCount = min(state.NewProblemCount+1, cfg.MaxNewProblemCount)
		next.CurrentDifficultyCap = state.CurrentDifficultyCap.Promote()
		next.EscapeHatches.SessionsWithoutPromotion = 0

	case state.LastPerformance.Accuracy <= cfg.DemoteAccuracyMax &&
		in.DaysSinceLastAttempt >= cfg.DemoteRecencyDays:
		next.SessionLength = min(5, state.SessionLength)
		next.NewProblemCount = 1
		next.CurrentDifficultyCap = models.Easy
		next.CurrentAllowedTags = firstN(in.FocusTags, 1)

	default:
		// otherwise: carry settings forward unchanged.
	}

	// Session-based difficulty escape hatch (spec §4.E): too many sessions
	// at the same difficulty forces a promotion attempt regardless of the
	// table above.
	if next.EscapeHatches.SessionsAtCurrentDifficulty >= cfg.DifficultySessionCap {
		next.CurrentDifficultyCap = next.CurrentDifficultyCap.Promote()
		next.EscapeHatches.SessionsAtCurrentDifficulty = 0
	}

	applyTagWindow(cfg, &next, state, in)

	return next
}

// applyTagWindow sets current_allowed_tags to the first tag_index+1
// focus tags and applies the OR-based expansion rule plus the
// stagnation fallback (spec §4.E).
func applyTagWindow(cfg config.SettingsConfig, next *models.SessionState, prior models.SessionState, in Input) {
	tagIndex := prior.TagIndex
	sessionsAtWidth := prior.SessionsAtCurrentTagCount + 1

	expand := sessionsAtWidth >= cfg.ExpansionSessionWindow &&
		(prior.LastPerformance.Accuracy >= cfg.ExpansionAccuracyMin || prior.LastPerformance.EfficiencyScore >= cfg.ExpansionEfficiencyMin)
	stagnant := sessionsAtWidth >= cfg.StagnationSessionCount

	if expand || stagnant {
		tagIndex++
		sessionsAtWidth = 0
	}

	next.TagIndex = tagIndex
	next.SessionsAtCurrentTagCount = sessionsAtWidth
	if next.CurrentAllowedTags != nil {
		// demotion branch already narrowed the window explicitly.
		return
	}
	next.CurrentAllowedTags = firstN(in.FocusTags, tagIndex+1)
}

func onboardingDefaults(cfg config.SettingsConfig, now time.Time) models.SessionState {
	state := *models.NewSessionState("", now)
	state.SessionLength = cfg.OnboardingLength
	state.NewProblemCount = cfg.OnboardingNewCount
	return state
}

func firstN(tags []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if n >= len(tags) {
		return append([]string(nil), tags...)
	}
	return append([]string(nil), tags[:n]...)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// TagEffectivelyMastered applies the time-based per-tag escape hatch
// (spec §4.E): a tag counts as mastered for progression decisions if it
// hasn't been attempted in daysSinceLastAttempt >= threshold days and its
// success rate still clears the bar.
func TagEffectivelyMastered(cfg config.SettingsConfig, daysSinceLastAttempt int, successRate float64) bool {
	return daysSinceLastAttempt >= cfg.TagMasteryRecencyDays && successRate >= cfg.TagMasterySuccessRate
}
