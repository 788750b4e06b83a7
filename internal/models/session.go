package models

import "time"

// SessionStatus is the Session lifecycle state (spec §3, §5).
type SessionStatus string

const (
	StatusDraft      SessionStatus = "draft"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusExpired    SessionStatus = "expired"
)

// SessionType distinguishes how a session was produced (spec §3).
type SessionType string

const (
	SessionStandard      SessionType = "standard"
	SessionInterviewLike SessionType = "interview-like"
	SessionFullInterview SessionType = "full-interview"
	SessionTracking      SessionType = "tracking"
)

// SessionOrigin names the subsystem that produced a session (spec §3, §6).
type SessionOrigin string

const (
	OriginGenerator SessionOrigin = "generator"
	OriginTracking  SessionOrigin = "tracking"
	OriginInterview SessionOrigin = "interview"
)

// SelectionReasonType tags why a problem was placed into a session
// (spec §3, §4.F).
type SelectionReasonType string

const (
	ReasonTriggeredReview SelectionReasonType = "triggered_review"
	ReasonLearningReview  SelectionReasonType = "learning_review"
	ReasonNew             SelectionReasonType = "new"
	ReasonPassiveMastered SelectionReasonType = "passive_mastered"
	ReasonFallback        SelectionReasonType = "fallback"
)

// SelectionReason explains the pipeline origin of a SessionProblem.
type SelectionReason struct {
	Type             SelectionReasonType `json:"type"`
	Reason           string              `json:"reason"`
	TriggeredBy      int                 `json:"triggered_by,omitempty"`
	AggregateStrength float64            `json:"aggregate_strength,omitempty"`
}

// SessionProblem carries a normalized Problem plus why it was selected.
type SessionProblem struct {
	Problem         Problem         `json:"problem"`
	SelectionReason SelectionReason `json:"selection_reason"`
}

// Session is the unit of practice the assembler produces (spec §3).
type Session struct {
	SessionID        string           `json:"session_id" gorm:"column:session_id;primaryKey"`
	UserID           string           `json:"user_id" gorm:"column:user_id"`
	Date             time.Time        `json:"date" gorm:"column:date"`
	Status           SessionStatus    `json:"status" gorm:"column:status"`
	Problems         []SessionProblem `json:"problems" gorm:"column:problems;serializer:json"`
	Attempts         []Attempt        `json:"attempts" gorm:"-"`
	SessionType      SessionType      `json:"session_type" gorm:"column:session_type"`
	Origin           SessionOrigin    `json:"origin" gorm:"column:origin"`
	LastActivityTime time.Time        `json:"last_activity_time" gorm:"column:last_activity_time"`
}

func (Session) TableName() string { return "sessions" }

// RemoveProblem drops the entry for leetcodeID from the session's problem
// list and reports whether one was found (used by skip_problem, spec §6).
func (s *Session) RemoveProblem(leetcodeID int) bool {
	for i, sp := range s.Problems {
		if sp.Problem.LeetcodeID == leetcodeID {
			s.Problems = append(s.Problems[:i], s.Problems[i+1:]...)
			return true
		}
	}
	return false
}

// LeetcodeIDs returns the ordered list of problem IDs in the session.
func (s Session) LeetcodeIDs() []int {
	ids := make([]int, 0, len(s.Problems))
	for _, sp := range s.Problems {
		ids = append(ids, sp.Problem.LeetcodeID)
	}
	return ids
}

// EscapeHatches tracks the progression stagnation counters (spec §3).
type EscapeHatches struct {
	SessionsAtCurrentDifficulty int             `json:"sessions_at_current_difficulty"`
	SessionsWithoutPromotion    int             `json:"sessions_without_promotion"`
	Activated                  map[string]bool `json:"activated"`
	CurrentPromotionType       string          `json:"current_promotion_type,omitempty"`
}

// LastPerformance summarizes the previous session's outcome (spec §3).
type LastPerformance struct {
	Accuracy        float64 `json:"accuracy"`
	EfficiencyScore float64 `json:"efficiency_score"`
}

// SessionState is the per-user singleton mutated only by Adaptive Session
// Settings (start) and the Post-Session Reducer (end) — spec §3.
type SessionState struct {
	UserID                  string            `json:"user_id" gorm:"column:user_id;primaryKey"`
	NumSessionsCompleted    int               `json:"num_sessions_completed" gorm:"column:num_sessions_completed"`
	CurrentDifficultyCap    Difficulty        `json:"current_difficulty_cap" gorm:"column:current_difficulty_cap"`
	TagIndex                int               `json:"tag_index" gorm:"column:tag_index"`
	SessionLength           int               `json:"session_length" gorm:"column:session_length"`
	NewProblemCount         int               `json:"new_problem_count" gorm:"column:new_problem_count"`
	CurrentAllowedTags      []string          `json:"current_allowed_tags" gorm:"column:current_allowed_tags;serializer:json"`
	LastPerformance         LastPerformance   `json:"last_performance" gorm:"embedded;embeddedPrefix:last_perf_"`
	EscapeHatches           EscapeHatches     `json:"escape_hatches" gorm:"column:escape_hatches;serializer:json"`
	SessionsAtCurrentTagCount int             `json:"sessions_at_current_tag_count" gorm:"column:sessions_at_current_tag_count"`
	TierStartedAt           time.Time         `json:"tier_started_at" gorm:"column:tier_started_at"`
	Version                 int               `json:"version" gorm:"column:version"`
}

func (SessionState) TableName() string { return "session_states" }

// NewSessionState returns the onboarding-default SessionState for a brand
// new user (spec §4.E onboarding row).
func NewSessionState(userID string, now time.Time) *SessionState {
	return &SessionState{
		UserID:               userID,
		CurrentDifficultyCap: Easy,
		TagIndex:             0,
		SessionLength:        4,
		NewProblemCount:      4,
		CurrentAllowedTags:   nil,
		EscapeHatches: EscapeHatches{
			Activated: map[string]bool{},
		},
		TierStartedAt: now,
		Version:       1,
	}
}

// SessionAnalytics is an append-only per-completed-session record
// (spec §3).
type SessionAnalytics struct {
	SessionID           string            `json:"session_id" gorm:"column:session_id;primaryKey"`
	UserID              string            `json:"user_id" gorm:"column:user_id"`
	CompletedAt         time.Time         `json:"completed_at" gorm:"column:completed_at"`
	Accuracy            float64           `json:"accuracy" gorm:"column:accuracy"`
	AvgTimeSeconds      float64           `json:"avg_time_seconds" gorm:"column:avg_time_seconds"`
	StrongTags          []string          `json:"strong_tags" gorm:"column:strong_tags;serializer:json"`
	WeakTags            []string          `json:"weak_tags" gorm:"column:weak_tags;serializer:json"`
	PredominantDifficulty Difficulty      `json:"predominant_difficulty" gorm:"column:predominant_difficulty"`
}

func (SessionAnalytics) TableName() string { return "session_analytics" }

// MasteryDelta describes how a tag's mastery state changed across a
// reducer pass (spec §4.G step 3).
type MasteryDelta struct {
	Tag           string  `json:"tag"`
	PreMastered   bool    `json:"pre_mastered"`
	PostMastered  bool    `json:"post_mastered"`
	StrengthDelta int     `json:"strength_delta"`
	DecayDelta    float64 `json:"decay_delta"`
}
