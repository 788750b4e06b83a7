// Package engine wires the core components behind the inbound API (spec
// §6). staleness.go implements the bit-exact staleness classifier table.
package engine

import (
	"time"

	"adaptive-engine/internal/models"
)

// StalenessClass is one of the table's named outcomes (spec §6).
type StalenessClass string

const (
	ClassActive               StalenessClass = "active"
	ClassInterviewActive      StalenessClass = "interview_active"
	ClassInterviewStale       StalenessClass = "interview_stale"
	ClassInterviewAbandoned   StalenessClass = "interview_abandoned"
	ClassTrackingActive       StalenessClass = "tracking_active"
	ClassTrackingStale        StalenessClass = "tracking_stale"
	ClassAbandonedAtStart     StalenessClass = "abandoned_at_start"
	ClassAutoCompleteCandidate StalenessClass = "auto_complete_candidate"
	ClassStalledWithProgress  StalenessClass = "stalled_with_progress"
	ClassTrackingOnlyUser     StalenessClass = "tracking_only_user"
	ClassUnclear              StalenessClass = "unclear"
)

// RecommendedAction is the action mapping from spec §6.
type RecommendedAction string

const (
	ActionNoAction             RecommendedAction = "no_action"
	ActionExpire               RecommendedAction = "expire"
	ActionAutoComplete         RecommendedAction = "auto_complete"
	ActionCreateNewTracking    RecommendedAction = "create_new_tracking"
	ActionRefreshGuidedSession RecommendedAction = "refresh_guided_session"
	ActionFlagForUserChoice    RecommendedAction = "flag_for_user_choice"
)

// StalenessInput bundles the signals the classifier table keys on.
type StalenessInput struct {
	Session            models.Session
	Now                time.Time
	AttemptCount        int
	ProgressRatio       float64 // attempted / session_length
	OutsideSessionOnly  bool    // every attempt on record came from outside this session
}

// StalenessResult is the classifier's bit-exact output (spec §6).
type StalenessResult struct {
	Class  StalenessClass
	Action RecommendedAction
}

// ClassifyStaleSession implements the bit-exact table in spec §6.
func ClassifyStaleSession(in StalenessInput) StalenessResult {
	s := in.Session
	if s.Status == models.StatusCompleted {
		return result(ClassActive)
	}

	hoursStale := in.Now.Sub(s.LastActivityTime).Hours()
	isInterview := s.SessionType == models.SessionInterviewLike || s.SessionType == models.SessionFullInterview
	isTracking := s.Origin == models.OriginTracking
	isGenerator := s.Origin == models.OriginGenerator

	// The generic "active" cutoff (spec §6: "last_activity ≤ 6h (≤3h for
	// interview) → active") governs every session that is neither
	// interview-typed nor tracking-origin; the interview and tracking rows
	// below have their own, distinct "active" classes and must be reached
	// even when within the generic window.
	if !isInterview && !isTracking && hoursStale <= 6.0 {
		return result(ClassActive)
	}

	switch {
	case isInterview && hoursStale <= 3:
		return result(ClassInterviewActive)
	case isInterview && hoursStale > 3 && hoursStale <= 6 && in.AttemptCount > 0:
		return result(ClassInterviewStale)
	case isInterview && hoursStale > 3 && hoursStale <= 6 && in.AttemptCount == 0:
		return result(ClassInterviewStale)
	case isInterview && hoursStale > 6 && in.AttemptCount == 0:
		return result(ClassInterviewAbandoned)
	case isInterview && hoursStale > 6 && in.AttemptCount > 0:
		return result(ClassInterviewStale)

	case isTracking && hoursStale <= 6:
		return result(ClassTrackingActive)
	case isTracking && hoursStale > 6:
		return result(ClassTrackingStale)

	case isGenerator && hoursStale > 24 && in.AttemptCount == 0:
		return result(ClassAbandonedAtStart)
	case isGenerator && hoursStale > 12 && in.ProgressRatio >= 0.75:
		return result(ClassAutoCompleteCandidate)
	case isGenerator && hoursStale > 48 && in.AttemptCount > 0:
		return result(ClassStalledWithProgress)
	case isGenerator && hoursStale > 12 && in.OutsideSessionOnly:
		return result(ClassTrackingOnlyUser)
	}

	return result(ClassUnclear)
}

func result(class StalenessClass) StalenessResult {
	action := ActionNoAction
	switch class {
	case ClassAbandonedAtStart, ClassInterviewAbandoned:
		action = ActionExpire
	case ClassAutoCompleteCandidate:
		action = ActionAutoComplete
	case ClassTrackingStale:
		action = ActionCreateNewTracking
	case ClassTrackingOnlyUser:
		action = ActionRefreshGuidedSession
	case ClassStalledWithProgress, ClassInterviewStale:
		action = ActionFlagForUserChoice
	}
	return StalenessResult{Class: class, Action: action}
}
