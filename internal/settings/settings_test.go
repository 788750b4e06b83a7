package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptive-engine/internal/config"
	"adaptive-engine/internal/models"
)

func testCfg() config.SettingsConfig {
	return config.SettingsConfig{
		OnboardingSessions:     3,
		OnboardingLength:       4,
		OnboardingNewCount:     4,
		MaxSessionLength:       10,
		MaxNewProblemCount:     7,
		PromoteAccuracyMin:     0.85,
		PromoteEfficiencyMin:   0.7,
		PromoteRecencyDays:     3,
		DemoteAccuracyMax:      0.5,
		DemoteRecencyDays:      5,
		ExpansionSessionWindow: 3,
		ExpansionAccuracyMin:   0.7,
		ExpansionEfficiencyMin: 0.6,
		StagnationSessionCount: 5,
		DifficultySessionCap:   10,
		TagMasteryRecencyDays:  20,
		TagMasterySuccessRate:  0.6,
	}
}

func TestCompute_Onboarding(t *testing.T) {
	cfg := testCfg()
	now := time.Now()
	state := models.SessionState{UserID: "u1", NumSessionsCompleted: 1, CurrentDifficultyCap: models.Medium}
	next := Compute(cfg, Input{State: state, FocusTags: []string{"array"}, DaysSinceLastAttempt: 0, Now: now})

	assert.Equal(t, 4, next.SessionLength)
	assert.Equal(t, 4, next.NewProblemCount)
	assert.Equal(t, models.Easy, next.CurrentDifficultyCap)
}

func TestCompute_Promotion(t *testing.T) {
	cfg := testCfg()
	state := models.SessionState{
		UserID:               "u1",
		NumSessionsCompleted: 10,
		SessionLength:        6,
		NewProblemCount:      4,
		CurrentDifficultyCap: models.Medium,
		LastPerformance:      models.LastPerformance{Accuracy: 0.9, EfficiencyScore: 0.8},
	}
	next := Compute(cfg, Input{State: state, FocusTags: []string{"array", "hash-table"}, DaysSinceLastAttempt: 1, Now: time.Now()})

	assert.Equal(t, 7, next.SessionLength)
	assert.Equal(t, 5, next.NewProblemCount)
	assert.Contains(t, []models.Difficulty{models.Medium, models.Hard}, next.CurrentDifficultyCap)
}

func TestCompute_Demotion(t *testing.T) {
	cfg := testCfg()
	state := models.SessionState{
		UserID:               "u1",
		NumSessionsCompleted: 5,
		SessionLength:        6,
		CurrentDifficultyCap: models.Easy,
		LastPerformance:      models.LastPerformance{Accuracy: 0.4},
	}
	next := Compute(cfg, Input{State: state, FocusTags: []string{"array", "hash-table"}, DaysSinceLastAttempt: 6, Now: time.Now()})

	assert.Equal(t, 5, next.SessionLength)
	assert.Equal(t, 1, next.NewProblemCount)
	require.Len(t, next.CurrentAllowedTags, 1)
	assert.Equal(t, "array", next.CurrentAllowedTags[0])
}

func TestCompute_TagWindowExpansionOnAccuracy(t *testing.T) {
	cfg := testCfg()
	state := models.SessionState{
		UserID:                    "u1",
		NumSessionsCompleted:      10,
		TagIndex:                  0,
		SessionsAtCurrentTagCount: 2, // this is the 3rd session at this width
		LastPerformance:           models.LastPerformance{Accuracy: 0.75, EfficiencyScore: 0.3},
	}
	next := Compute(cfg, Input{State: state, FocusTags: []string{"array", "hash-table", "strings"}, DaysSinceLastAttempt: 10, Now: time.Now()})
	assert.Equal(t, 1, next.TagIndex)
	assert.Equal(t, 0, next.SessionsAtCurrentTagCount)
	assert.Len(t, next.CurrentAllowedTags, 2)
}

func TestCompute_TagWindowStagnationFallback(t *testing.T) {
	cfg := testCfg()
	state := models.SessionState{
		UserID:                    "u1",
		NumSessionsCompleted:      10,
		TagIndex:                  0,
		SessionsAtCurrentTagCount: 4, // 5th session at this width
		LastPerformance:           models.LastPerformance{Accuracy: 0.2, EfficiencyScore: 0.1},
	}
	next := Compute(cfg, Input{State: state, FocusTags: []string{"array", "hash-table"}, DaysSinceLastAttempt: 10, Now: time.Now()})
	assert.Equal(t, 1, next.TagIndex)
}

func TestCompute_DifficultySessionEscapeHatch(t *testing.T) {
	cfg := testCfg()
	state := models.SessionState{
		UserID:               "u1",
		NumSessionsCompleted: 10,
		CurrentDifficultyCap: models.Easy,
		EscapeHatches:        models.EscapeHatches{SessionsAtCurrentDifficulty: 10},
	}
	next := Compute(cfg, Input{State: state, FocusTags: []string{"array"}, DaysSinceLastAttempt: 10, Now: time.Now()})
	assert.Equal(t, models.Medium, next.CurrentDifficultyCap)
	assert.Equal(t, 0, next.EscapeHatches.SessionsAtCurrentDifficulty)
}

func TestCompute_MalformedInputFallsBackToOnboarding(t *testing.T) {
	cfg := testCfg()
	next := Compute(cfg, Input{State: models.SessionState{}, FocusTags: nil, Now: time.Now()})
	assert.Equal(t, 4, next.SessionLength)
	assert.Equal(t, 4, next.NewProblemCount)
	assert.Equal(t, models.Easy, next.CurrentDifficultyCap)
}

func TestTagEffectivelyMastered(t *testing.T) {
	cfg := testCfg()
	assert.True(t, TagEffectivelyMastered(cfg, 20, 0.6))
	assert.False(t, TagEffectivelyMastered(cfg, 19, 0.6))
	assert.False(t, TagEffectivelyMastered(cfg, 20, 0.59))
}
