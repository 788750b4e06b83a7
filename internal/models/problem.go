package models

// Difficulty is the catalog difficulty band (spec §3).
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Rank orders difficulties for comparisons (cap enforcement, guard rails).
func (d Difficulty) Rank() int {
	switch d {
	case Easy:
		return 0
	case Medium:
		return 1
	case Hard:
		return 2
	default:
		return 0
	}
}

// LessOrEqual reports whether d does not exceed cap.
func (d Difficulty) LessOrEqual(cap Difficulty) bool {
	return d.Rank() <= cap.Rank()
}

// Promote returns the next difficulty up, capped at Hard.
func (d Difficulty) Promote() Difficulty {
	switch d {
	case Easy:
		return Medium
	case Medium:
		return Hard
	default:
		return Hard
	}
}

// Problem is an immutable catalog entry, read-only to the engine.
type Problem struct {
	LeetcodeID int        `json:"leetcode_id" gorm:"column:leetcode_id;primaryKey"`
	Title      string     `json:"title" gorm:"column:title"`
	Slug       string     `json:"slug" gorm:"column:slug;uniqueIndex"`
	Difficulty Difficulty `json:"difficulty" gorm:"column:difficulty"`
	Tags       []string   `json:"tags" gorm:"column:tags;serializer:json"`
}

func (Problem) TableName() string { return "problems" }

// HasTag reports whether the problem carries tag (lowercase, per spec §3).
func (p Problem) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether the problem carries at least one of tags.
func (p Problem) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if p.HasTag(t) {
			return true
		}
	}
	return false
}
