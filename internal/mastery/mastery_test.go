package mastery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"adaptive-engine/internal/config"
	"adaptive-engine/internal/models"
)

func testCfg() config.MasteryConfig {
	return config.MasteryConfig{
		BaseSuccessRate:          0.80,
		BaseMinAttempts:          4,
		LightAttempts:            10,
		LightSuccessRate:         0.75,
		ModerateAttempts:         20,
		ModerateSuccessRate:      0.70,
		HeavyConsecutiveStruggle: 6,
		HeavySuccessRate:         0.65,
	}
}

func TestMastered_BaseThreshold(t *testing.T) {
	cfg := testCfg()
	assert.True(t, Mastered(cfg, 4, 4, 0))
	assert.False(t, Mastered(cfg, 3, 3, 0))
	assert.False(t, Mastered(cfg, 4, 3, 0))
}

func TestMastered_LightEscapeHatch(t *testing.T) {
	cfg := testCfg()
	assert.True(t, Mastered(cfg, 12, 9, 0)) // rate 0.75: under the 0.80 base bar, passes only via attempts >= 10 and rate >= 0.75
	assert.False(t, Mastered(cfg, 9, 7, 0)) // rate 0.777 but attempts < 10, and < base
}

func TestMastered_ModerateEscapeHatch(t *testing.T) {
	cfg := testCfg()
	assert.True(t, Mastered(cfg, 20, 14, 0)) // rate 0.70
	assert.False(t, Mastered(cfg, 20, 13, 0))
}

func TestMastered_HeavyStruggleEscapeHatch(t *testing.T) {
	cfg := testCfg()
	assert.True(t, Mastered(cfg, 8, 6, 6)) // rate 0.75 >= 0.65, struggles >= 6
	assert.False(t, Mastered(cfg, 8, 6, 5))
}

func TestMastered_ZeroAttemptsNeverMastered(t *testing.T) {
	cfg := testCfg()
	assert.False(t, Mastered(cfg, 0, 0, 10))
}

func TestNextStruggle_IncrementsWhenNotMasteredAboveMinAttempts(t *testing.T) {
	cfg := testCfg()
	next := NextStruggle(cfg, models.StruggleHistory{ConsecutiveStruggles: 2}, 5, false)
	assert.Equal(t, 3, next.ConsecutiveStruggles)
}

func TestNextStruggle_ResetsOnMastery(t *testing.T) {
	cfg := testCfg()
	next := NextStruggle(cfg, models.StruggleHistory{ConsecutiveStruggles: 5}, 10, true)
	assert.Equal(t, 0, next.ConsecutiveStruggles)
}

func TestNextStruggle_NoIncrementBelowMinAttempts(t *testing.T) {
	cfg := testCfg()
	next := NextStruggle(cfg, models.StruggleHistory{ConsecutiveStruggles: 1}, 2, false)
	assert.Equal(t, 1, next.ConsecutiveStruggles)
}

func TestRecompute_AggregatesAcrossMemberProblems(t *testing.T) {
	cfg := testCfg()
	now := time.Now()
	last := now.Add(-2 * 24 * time.Hour)

	problems := map[int]models.Problem{
		1: {LeetcodeID: 1, Tags: []string{"array", "hash-table"}},
		2: {LeetcodeID: 2, Tags: []string{"array"}},
	}
	userProblems := []models.UserProblem{
		{LeetcodeID: 1, Stability: 6.0, LastAttemptDate: &last, AttemptStats: models.AttemptStats{Total: 3, Successful: 2, Unsuccessful: 1}},
		{LeetcodeID: 2, Stability: 6.0, LastAttemptDate: &last, AttemptStats: models.AttemptStats{Total: 5, Successful: 4, Unsuccessful: 1}},
	}

	rows := Recompute(cfg, problems, userProblems, map[string]models.TagMastery{}, "u1", now)
	assert.Len(t, rows, 2)

	var array, hashTable *models.TagMastery
	for i := range rows {
		switch rows[i].Tag {
		case "array":
			array = &rows[i]
		case "hash-table":
			hashTable = &rows[i]
		}
	}
	assert.NotNil(t, array)
	assert.NotNil(t, hashTable)
	assert.Equal(t, 8, array.TotalAttempts)    // 3 + 5
	assert.Equal(t, 6, array.SuccessfulAttempts) // 2 + 4
	assert.Equal(t, 3, hashTable.TotalAttempts)
}

func TestRecompute_IsIdempotent(t *testing.T) {
	cfg := testCfg()
	now := time.Now()
	last := now.Add(-1 * 24 * time.Hour)

	problems := map[int]models.Problem{
		1: {LeetcodeID: 1, Tags: []string{"array"}},
	}
	userProblems := []models.UserProblem{
		{LeetcodeID: 1, Stability: 6.0, LastAttemptDate: &last, AttemptStats: models.AttemptStats{Total: 4, Successful: 4}},
	}

	first := Recompute(cfg, problems, userProblems, map[string]models.TagMastery{}, "u1", now)
	existing := map[string]models.TagMastery{}
	for _, r := range first {
		existing[r.Tag] = r
	}
	second := Recompute(cfg, problems, userProblems, existing, "u1", now)

	assert.Equal(t, first, second)
}

func TestRecompute_EmptyInput(t *testing.T) {
	cfg := testCfg()
	rows := Recompute(cfg, map[int]models.Problem{}, nil, map[string]models.TagMastery{}, "u1", time.Now())
	assert.Empty(t, rows)
}
