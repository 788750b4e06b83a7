package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"adaptive-engine/internal/models"
)

func TestClassifyStaleSession_Completed(t *testing.T) {
	now := time.Now()
	s := models.Session{Status: models.StatusCompleted}
	result := ClassifyStaleSession(StalenessInput{Session: s, Now: now})
	assert.Equal(t, ClassActive, result.Class)
	assert.Equal(t, ActionNoAction, result.Action)
}

func TestClassifyStaleSession_RecentActivityIsActive(t *testing.T) {
	now := time.Now()
	s := models.Session{Status: models.StatusInProgress, LastActivityTime: now.Add(-5 * time.Hour)}
	result := ClassifyStaleSession(StalenessInput{Session: s, Now: now})
	assert.Equal(t, ClassActive, result.Class)
}

func TestClassifyStaleSession_TrackingActive(t *testing.T) {
	now := time.Now()
	s := models.Session{
		Status: models.StatusInProgress, Origin: models.OriginTracking,
		LastActivityTime: now.Add(-2 * time.Hour),
	}
	result := ClassifyStaleSession(StalenessInput{Session: s, Now: now})
	assert.Equal(t, ClassTrackingActive, result.Class)
	assert.Equal(t, ActionNoAction, result.Action)
}

func TestClassifyStaleSession_InterviewActive(t *testing.T) {
	now := time.Now()
	s := models.Session{
		Status: models.StatusInProgress, SessionType: models.SessionInterviewLike,
		LastActivityTime: now.Add(-2 * time.Hour),
	}
	result := ClassifyStaleSession(StalenessInput{Session: s, Now: now})
	assert.Equal(t, ClassInterviewActive, result.Class)
	assert.Equal(t, ActionNoAction, result.Action)
}

func TestClassifyStaleSession_AbandonedAtStart(t *testing.T) {
	now := time.Now()
	s := models.Session{
		Status: models.StatusInProgress, Origin: models.OriginGenerator,
		LastActivityTime: now.Add(-25 * time.Hour),
	}
	result := ClassifyStaleSession(StalenessInput{Session: s, Now: now, AttemptCount: 0})
	assert.Equal(t, ClassAbandonedAtStart, result.Class)
	assert.Equal(t, ActionExpire, result.Action)
}

func TestClassifyStaleSession_AutoCompleteCandidate(t *testing.T) {
	now := time.Now()
	s := models.Session{
		Status: models.StatusInProgress, Origin: models.OriginGenerator,
		LastActivityTime: now.Add(-13 * time.Hour),
	}
	result := ClassifyStaleSession(StalenessInput{Session: s, Now: now, AttemptCount: 3, ProgressRatio: 0.8})
	assert.Equal(t, ClassAutoCompleteCandidate, result.Class)
	assert.Equal(t, ActionAutoComplete, result.Action)
}

func TestClassifyStaleSession_InterviewAbandoned(t *testing.T) {
	now := time.Now()
	s := models.Session{
		Status: models.StatusInProgress, SessionType: models.SessionInterviewLike,
		LastActivityTime: now.Add(-7 * time.Hour),
	}
	result := ClassifyStaleSession(StalenessInput{Session: s, Now: now, AttemptCount: 0})
	assert.Equal(t, ClassInterviewAbandoned, result.Class)
	assert.Equal(t, ActionExpire, result.Action)
}

func TestClassifyStaleSession_TrackingStale(t *testing.T) {
	now := time.Now()
	s := models.Session{
		Status: models.StatusInProgress, Origin: models.OriginTracking,
		LastActivityTime: now.Add(-7 * time.Hour),
	}
	result := ClassifyStaleSession(StalenessInput{Session: s, Now: now})
	assert.Equal(t, ClassTrackingStale, result.Class)
	assert.Equal(t, ActionCreateNewTracking, result.Action)
}

func TestClassifyStaleSession_StalledWithProgress(t *testing.T) {
	now := time.Now()
	s := models.Session{
		Status: models.StatusInProgress, Origin: models.OriginGenerator,
		LastActivityTime: now.Add(-49 * time.Hour),
	}
	result := ClassifyStaleSession(StalenessInput{Session: s, Now: now, AttemptCount: 2, ProgressRatio: 0.3})
	assert.Equal(t, ClassStalledWithProgress, result.Class)
	assert.Equal(t, ActionFlagForUserChoice, result.Action)
}

func TestClassifyStaleSession_Unclear(t *testing.T) {
	now := time.Now()
	s := models.Session{
		Status: models.StatusInProgress, Origin: models.OriginGenerator,
		LastActivityTime: now.Add(-13 * time.Hour),
	}
	result := ClassifyStaleSession(StalenessInput{Session: s, Now: now, AttemptCount: 1, ProgressRatio: 0.2})
	assert.Equal(t, ClassUnclear, result.Class)
	assert.Equal(t, ActionNoAction, result.Action)
}
