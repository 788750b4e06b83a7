package models

// LadderEntry is one rung of a pattern ladder (spec §3).
type LadderEntry struct {
	LeetcodeID  int        `json:"leetcode_id"`
	Difficulty  Difficulty `json:"difficulty"`
	DecayScore  float64    `json:"decay_score"`
	Connections int        `json:"connections"`
	Attempted   bool       `json:"attempted"`
}

// PatternLadder is a per-tag ordered sequence of catalog problems
// (spec §3, §4.H).
type PatternLadder struct {
	Tag        string        `json:"tag" gorm:"column:tag;primaryKey"`
	UserID     string        `json:"user_id" gorm:"column:user_id;primaryKey"`
	Problems   []LadderEntry `json:"problems" gorm:"column:problems;serializer:json"`
	LadderSize int           `json:"ladder_size" gorm:"column:ladder_size"`
}

func (PatternLadder) TableName() string { return "pattern_ladders" }

// AllAttempted reports whether every entry has been attempted, the
// regeneration trigger from spec §4.H.
func (p PatternLadder) AllAttempted() bool {
	if len(p.Problems) == 0 {
		return false
	}
	for _, e := range p.Problems {
		if !e.Attempted {
			return false
		}
	}
	return true
}

// MarkAttempted flags leetcodeID as attempted if present in the ladder,
// reporting whether anything changed.
func (p *PatternLadder) MarkAttempted(leetcodeID int) bool {
	for i := range p.Problems {
		if p.Problems[i].LeetcodeID == leetcodeID && !p.Problems[i].Attempted {
			p.Problems[i].Attempted = true
			return true
		}
	}
	return false
}

// LadderSizeForRole returns the ladder size by role, spec §4.H: 12 for
// focus tags, 9 for tier tags, 5 for all other tags.
func LadderSizeForRole(isFocusTag, isTierTag bool) int {
	switch {
	case isFocusTag:
		return 12
	case isTierTag:
		return 9
	default:
		return 5
	}
}
