package models

import "time"

// AttemptStats tracks the total/successful/unsuccessful invariant from
// spec §3: successful + unsuccessful == total.
type AttemptStats struct {
	Total        int `json:"total" gorm:"column:total"`
	Successful   int `json:"successful" gorm:"column:successful"`
	Unsuccessful int `json:"unsuccessful" gorm:"column:unsuccessful"`
}

// Valid checks the AttemptStats invariant.
func (s AttemptStats) Valid() bool {
	return s.Successful+s.Unsuccessful == s.Total && s.Successful >= 0 && s.Unsuccessful >= 0
}

// RecordSuccess returns stats updated for a successful attempt.
func (s AttemptStats) RecordSuccess() AttemptStats {
	return AttemptStats{Total: s.Total + 1, Successful: s.Successful + 1, Unsuccessful: s.Unsuccessful}
}

// RecordFailure returns stats updated for a failed attempt.
func (s AttemptStats) RecordFailure() AttemptStats {
	return AttemptStats{Total: s.Total + 1, Successful: s.Successful, Unsuccessful: s.Unsuccessful + 1}
}

// SuccessRate returns Successful/Total, or 0 when there have been no
// attempts yet.
func (s AttemptStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Total)
}

// UserProblem is the per-user, per-problem spaced-repetition record
// (spec §3). Box levels 1-5 are learning, 6-8 are mastered.
type UserProblem struct {
	ProblemID           string       `json:"problem_id" gorm:"column:problem_id;primaryKey"`
	UserID              string       `json:"user_id" gorm:"column:user_id;primaryKey"`
	LeetcodeID          int          `json:"leetcode_id" gorm:"column:leetcode_id"`
	BoxLevel            int          `json:"box_level" gorm:"column:box_level"`
	Stability           float64      `json:"stability" gorm:"column:stability"`
	ReviewSchedule      time.Time    `json:"review_schedule" gorm:"column:review_schedule"`
	LastAttemptDate     *time.Time   `json:"last_attempt_date" gorm:"column:last_attempt_date"`
	AttemptStats        AttemptStats `json:"attempt_stats" gorm:"embedded;embeddedPrefix:attempt_"`
	PerceivedDifficulty float64      `json:"perceived_difficulty" gorm:"column:perceived_difficulty"`
	ConsecutiveFailures int          `json:"consecutive_failures" gorm:"column:consecutive_failures"`
	CooldownUntil       *time.Time   `json:"cooldown_until" gorm:"column:cooldown_until"`
	Version             int          `json:"version" gorm:"column:version"`
}

func (UserProblem) TableName() string { return "user_problems" }

// IsLearning reports whether the problem is in a learning box (1-5).
func (up UserProblem) IsLearning() bool { return up.BoxLevel >= 1 && up.BoxLevel <= 5 }

// IsMastered reports whether the problem is in a mastered box (6-8).
func (up UserProblem) IsMastered() bool { return up.BoxLevel >= 6 && up.BoxLevel <= 8 }

// NewUserProblem creates a fresh UserProblem at box 1, due immediately, as
// described for "Box 1 with null last_attempt_date" in spec §4.A.
func NewUserProblem(problemID, userID string, leetcodeID int, now time.Time) *UserProblem {
	return &UserProblem{
		ProblemID:      problemID,
		UserID:         userID,
		LeetcodeID:     leetcodeID,
		BoxLevel:       1,
		Stability:      6.0,
		ReviewSchedule: now,
		Version:        1,
	}
}

// Attempt is an append-only practice event (spec §3).
type Attempt struct {
	AttemptID           string     `json:"attempt_id" gorm:"column:attempt_id;primaryKey"`
	ProblemID           string     `json:"problem_id" gorm:"column:problem_id"`
	UserID              string     `json:"user_id" gorm:"column:user_id"`
	AttemptDate         time.Time  `json:"attempt_date" gorm:"column:attempt_date"`
	Success             bool       `json:"success" gorm:"column:success"`
	TimeSpentSeconds    int        `json:"time_spent_seconds" gorm:"column:time_spent_seconds"`
	PerceivedDifficulty float64    `json:"perceived_difficulty" gorm:"column:perceived_difficulty"`
	SessionID           *string    `json:"session_id" gorm:"column:session_id"`
}

func (Attempt) TableName() string { return "attempts" }
