package tier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"adaptive-engine/internal/models"
)

func relationships() []models.TagRelationship {
	return []models.TagRelationship{
		{Tag: "array", Classification: models.CoreConcept, Related: map[string]float64{"hash-table": 0.8, "two-pointers": 0.5}},
		{Tag: "hash-table", Classification: models.CoreConcept, Related: map[string]float64{"array": 0.8}},
		{Tag: "two-pointers", Classification: models.CoreConcept, Related: map[string]float64{"array": 0.5}},
		{Tag: "strings", Classification: models.CoreConcept, Related: map[string]float64{}},
		{Tag: "dynamic-programming", Classification: models.FundamentalTechnique, Related: map[string]float64{}},
	}
}

func TestCompute_OnboardingReturnsTopFiveCoreConceptTags(t *testing.T) {
	result := Compute(relationships(), map[string]models.TagMastery{}, time.Time{}, time.Now())
	assert.Equal(t, models.CoreConcept, result.Tier)
	assert.Equal(t, []string{"array", "hash-table", "two-pointers", "strings"}, result.FocusTags)
}

func TestCompute_CurrentTierIsLowestBelowThreshold(t *testing.T) {
	now := time.Now()
	mastery := map[string]models.TagMastery{
		"array":        {Tag: "array", Mastered: true, SuccessfulAttempts: 8, TotalAttempts: 10},
		"hash-table":   {Tag: "hash-table", Mastered: true, SuccessfulAttempts: 8, TotalAttempts: 10},
		"two-pointers": {Tag: "two-pointers", Mastered: true, SuccessfulAttempts: 8, TotalAttempts: 10},
		"strings":      {Tag: "strings", Mastered: true, SuccessfulAttempts: 8, TotalAttempts: 10},
	}
	result := Compute(relationships(), mastery, now.Add(-10*24*time.Hour), now)
	assert.Equal(t, models.FundamentalTechnique, result.Tier)
}

func TestCompute_FocusTagsSortedBySuccessRateDescending(t *testing.T) {
	now := time.Now()
	mastery := map[string]models.TagMastery{
		"array":      {Tag: "array", SuccessfulAttempts: 1, TotalAttempts: 10},
		"hash-table": {Tag: "hash-table", SuccessfulAttempts: 8, TotalAttempts: 10},
	}
	result := Compute(relationships(), mastery, now, now)
	assert.Equal(t, models.CoreConcept, result.Tier)
	// hash-table (0.8 success rate) should precede array (0.1)
	assert.Contains(t, result.FocusTags, "hash-table")
	hashIdx, arrayIdx := -1, -1
	for i, tag := range result.FocusTags {
		if tag == "hash-table" {
			hashIdx = i
		}
		if tag == "array" {
			arrayIdx = i
		}
	}
	assert.True(t, hashIdx < arrayIdx)
}

func TestCompute_TimeBasedEscapeAdvancesTier(t *testing.T) {
	now := time.Now()
	mastery := map[string]models.TagMastery{
		"array":      {Tag: "array", Mastered: true, SuccessfulAttempts: 8, TotalAttempts: 10},
		"hash-table": {Tag: "hash-table", Mastered: true, SuccessfulAttempts: 8, TotalAttempts: 10},
	}
	// 2 of 4 core tags mastered = 0.5 fraction, below 0.8 so tier stays Core
	// unless the 30-day/0.60 escape hatch fires. 0.5 < 0.60 so no escape.
	result := Compute(relationships(), mastery, now.Add(-31*24*time.Hour), now)
	assert.Equal(t, models.CoreConcept, result.Tier)
	assert.False(t, result.TierAdvanced)
}

func TestCompute_TimeBasedEscapeFiresAtSixtyPercent(t *testing.T) {
	now := time.Now()
	mastery := map[string]models.TagMastery{
		"array":        {Tag: "array", Mastered: true, SuccessfulAttempts: 8, TotalAttempts: 10},
		"hash-table":   {Tag: "hash-table", Mastered: true, SuccessfulAttempts: 8, TotalAttempts: 10},
		"two-pointers": {Tag: "two-pointers", Mastered: true, SuccessfulAttempts: 8, TotalAttempts: 10},
	}
	// 3 of 4 core tags mastered = 0.75 fraction >= 0.60, and 31 days elapsed.
	result := Compute(relationships(), mastery, now.Add(-31*24*time.Hour), now)
	assert.Equal(t, models.FundamentalTechnique, result.Tier)
	assert.True(t, result.TierAdvanced)
}

func TestCompute_SeedsNewTagsWhenFewerThanFiveUnmastered(t *testing.T) {
	rels := []models.TagRelationship{
		{Tag: "array", Classification: models.CoreConcept, Related: map[string]float64{}},
		{Tag: "hash-table", Classification: models.CoreConcept, Related: map[string]float64{"array": 0.9}},
	}
	mastery := map[string]models.TagMastery{
		"array": {Tag: "array", Mastered: true, SuccessfulAttempts: 8, TotalAttempts: 10},
	}
	result := Compute(rels, mastery, time.Now(), time.Now())
	assert.Contains(t, result.FocusTags, "hash-table")
}
