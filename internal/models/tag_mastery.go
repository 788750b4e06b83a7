package models

import "time"

// StruggleHistory tracks the escape-hatch bookkeeping for a tag (spec §4.B).
type StruggleHistory struct {
	ConsecutiveStruggles int `json:"consecutive_struggles" gorm:"column:consecutive_struggles"`
	DaysWithoutProgress  int `json:"days_without_progress" gorm:"column:days_without_progress"`
	TotalAttempts        int `json:"total_attempts" gorm:"column:struggle_total_attempts"`
}

// TagMastery is the per-tag mastery roll-up (spec §3).
type TagMastery struct {
	Tag                string          `json:"tag" gorm:"column:tag;primaryKey"`
	UserID             string          `json:"user_id" gorm:"column:user_id;primaryKey"`
	TotalAttempts      int             `json:"total_attempts" gorm:"column:total_attempts"`
	SuccessfulAttempts int             `json:"successful_attempts" gorm:"column:successful_attempts"`
	DecayScore         float64         `json:"decay_score" gorm:"column:decay_score"`
	Mastered           bool            `json:"mastered" gorm:"column:mastered"`
	LastAttemptDate    *time.Time      `json:"last_attempt_date" gorm:"column:last_attempt_date"`
	Struggle           StruggleHistory `json:"struggle_history" gorm:"embedded"`
}

func (TagMastery) TableName() string { return "tag_masteries" }

// SuccessRate returns SuccessfulAttempts/TotalAttempts, or 0 with no attempts.
func (t TagMastery) SuccessRate() float64 {
	if t.TotalAttempts == 0 {
		return 0
	}
	return float64(t.SuccessfulAttempts) / float64(t.TotalAttempts)
}

// TierClassification orders tag tiers (spec §3).
type TierClassification string

const (
	CoreConcept        TierClassification = "Core Concept"
	FundamentalTechnique TierClassification = "Fundamental Technique"
	AdvancedTechnique   TierClassification = "Advanced Technique"
)

// Rank orders tiers for progression comparisons.
func (t TierClassification) Rank() int {
	switch t {
	case CoreConcept:
		return 0
	case FundamentalTechnique:
		return 1
	case AdvancedTechnique:
		return 2
	default:
		return 0
	}
}

// Next returns the tier after t, or t itself if already at the top.
func (t TierClassification) Next() TierClassification {
	switch t {
	case CoreConcept:
		return FundamentalTechnique
	case FundamentalTechnique:
		return AdvancedTechnique
	default:
		return AdvancedTechnique
	}
}

// TagRelationship is a read-only catalog edge list: tag -> related tag ->
// weight, forming a weighted undirected graph (spec §9).
type TagRelationship struct {
	Tag            string             `json:"tag" gorm:"column:tag;primaryKey"`
	Classification TierClassification `json:"classification" gorm:"column:classification"`
	Related        map[string]float64 `json:"related" gorm:"column:related;serializer:json"`
}

func (TagRelationship) TableName() string { return "tag_relationships" }
