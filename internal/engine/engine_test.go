package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"adaptive-engine/internal/clock"
	"adaptive-engine/internal/config"
	"adaptive-engine/internal/enginetest"
	"adaptive-engine/internal/errs"
	"adaptive-engine/internal/logger"
	"adaptive-engine/internal/models"
)

func testDeps(t *testing.T, now time.Time) (Deps, *enginetest.MockCatalog, *enginetest.MockUserProblems, *enginetest.MockAttempts, *enginetest.MockSessions, *enginetest.MockTagMastery, *enginetest.MockTagRelationships, *enginetest.MockLadders, *enginetest.MockAnalytics, *enginetest.MockSessionStates, *enginetest.MockEvents) {
	t.Helper()
	cfg := config.Load()

	catalog := new(enginetest.MockCatalog)
	userProblems := new(enginetest.MockUserProblems)
	attempts := new(enginetest.MockAttempts)
	sessions := new(enginetest.MockSessions)
	tagMastery := new(enginetest.MockTagMastery)
	tagRelationships := new(enginetest.MockTagRelationships)
	ladders := new(enginetest.MockLadders)
	analytics := new(enginetest.MockAnalytics)
	sessionStates := new(enginetest.MockSessionStates)
	events := new(enginetest.MockEvents)

	deps := Deps{
		Catalog:          catalog,
		UserProblems:     userProblems,
		Attempts:         attempts,
		Sessions:         sessions,
		TagMastery:       tagMastery,
		TagRelationships: tagRelationships,
		Ladders:          ladders,
		Analytics:        analytics,
		SessionStates:    sessionStates,
		Clock:            clock.Fixed{T: now},
		Config:           cfg,
		Logger:           logger.New(&cfg.Logging),
		Metrics:          nil,
		Events:           events,
	}
	return deps, catalog, userProblems, attempts, sessions, tagMastery, tagRelationships, ladders, analytics, sessionStates, events
}

func sampleCatalog() []models.Problem {
	return []models.Problem{
		{LeetcodeID: 1, Title: "Two Sum", Slug: "two-sum", Difficulty: models.Easy, Tags: []string{"array"}},
		{LeetcodeID: 2, Title: "Add Two Numbers", Slug: "add-two-numbers", Difficulty: models.Medium, Tags: []string{"linked-list"}},
		{LeetcodeID: 3, Title: "Longest Substring", Slug: "longest-substring", Difficulty: models.Easy, Tags: []string{"string"}},
		{LeetcodeID: 4, Title: "Median of Arrays", Slug: "median-arrays", Difficulty: models.Hard, Tags: []string{"array"}},
	}
}

func TestStartSession_OnboardingNewUser(t *testing.T) {
	now := time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC)
	deps, catalog, userProblems, _, sessions, tagMastery, tagRelationships, _, _, sessionStates, events := testDeps(t, now)

	sessions.On("GetLatest", mock.Anything, "user-1").Return(nil, errs.New(errs.NotFound, "no session"))
	sessionStates.On("Get", mock.Anything, "user-1").Return(nil, errs.New(errs.NotFound, "no state"))
	tagRelationships.On("ListAll", mock.Anything).Return([]models.TagRelationship{}, nil)
	tagMastery.On("ListByUser", mock.Anything, "user-1").Return([]models.TagMastery{}, nil)
	userProblems.On("ListByUser", mock.Anything, "user-1").Return([]models.UserProblem{}, nil)
	catalog.On("ListWithFilter", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(sampleCatalog(), nil)
	sessions.On("ByType", mock.Anything, "user-1", models.SessionStandard).Return([]models.Session{}, nil)
	sessions.On("Put", mock.Anything, mock.Anything).Return(nil)
	sessionStates.On("Put", mock.Anything, mock.Anything).Return(nil)

	e := New(deps)
	session, err := e.StartSession(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, models.StatusInProgress, session.Status)
	assert.Equal(t, models.OriginGenerator, session.Origin)
	assert.NotEmpty(t, session.SessionID)

	events.AssertNotCalled(t, "PublishTierAdvanced", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartSession_ResumesInProgressSession(t *testing.T) {
	now := time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC)
	deps, _, _, _, sessions, _, _, _, _, _, _ := testDeps(t, now)

	existing := &models.Session{
		SessionID:        "sess-existing",
		UserID:           "user-1",
		Status:           models.StatusInProgress,
		Problems:         []models.SessionProblem{{Problem: models.Problem{LeetcodeID: 1}}},
		LastActivityTime: now.Add(-5 * time.Minute),
	}
	sessions.On("GetLatest", mock.Anything, "user-1").Return(existing, nil)

	e := New(deps)
	session, err := e.StartSession(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-existing", session.SessionID)

	sessions.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestStartSession_CancelledContext(t *testing.T) {
	deps, _, _, _, _, _, _, _, _, _, _ := testDeps(t, time.Now())
	e := New(deps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.StartSession(ctx, "user-1")
	require.Error(t, err)
	assert.Equal(t, errs.Cancelled, errs.KindOf(err))
}

func TestRecordAttempt_NotLastProblem(t *testing.T) {
	now := time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC)
	deps, _, _, attempts, sessions, _, _, _, _, _, _ := testDeps(t, now)

	session := &models.Session{
		SessionID: "sess-1",
		UserID:    "user-1",
		Status:    models.StatusInProgress,
		Problems: []models.SessionProblem{
			{Problem: models.Problem{LeetcodeID: 1}},
			{Problem: models.Problem{LeetcodeID: 2}},
		},
	}
	sessions.On("Get", mock.Anything, "sess-1").Return(session, nil)
	attempts.On("Append", mock.Anything, mock.Anything).Return(nil)
	sessions.On("Put", mock.Anything, mock.Anything).Return(nil)

	e := New(deps)
	attempt := models.Attempt{AttemptID: "a1", ProblemID: "p1", UserID: "user-1", Success: true}
	err := e.RecordAttempt(context.Background(), "sess-1", attempt, 1)
	require.NoError(t, err)

	assert.Len(t, session.Problems, 1)
	assert.Equal(t, 2, session.Problems[0].Problem.LeetcodeID)
	assert.Equal(t, models.StatusInProgress, session.Status)
}

func TestRecordAttempt_LastProblemCompletesSession(t *testing.T) {
	now := time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC)
	deps, _, userProblems, attempts, sessions, tagMastery, _, ladders, analytics, sessionStates, events := testDeps(t, now)

	session := &models.Session{
		SessionID: "sess-1",
		UserID:    "user-1",
		Status:    models.StatusInProgress,
		Problems:  []models.SessionProblem{{Problem: models.Problem{LeetcodeID: 1}}},
	}
	sessions.On("Get", mock.Anything, "sess-1").Return(session, nil)
	attempts.On("Append", mock.Anything, mock.Anything).Return(nil)
	sessions.On("Put", mock.Anything, mock.Anything).Return(nil)

	userProblems.On("ListByUser", mock.Anything, "user-1").Return([]models.UserProblem{}, nil)
	tagMastery.On("ListByUser", mock.Anything, "user-1").Return([]models.TagMastery{}, nil)
	state := models.NewSessionState("user-1", now)
	sessionStates.On("Get", mock.Anything, "user-1").Return(state, nil)
	ladders.On("ListByUser", mock.Anything, "user-1").Return([]models.PatternLadder{}, nil)
	tagMastery.On("Replace", mock.Anything, "user-1", mock.Anything).Return(nil)
	analytics.On("Put", mock.Anything, mock.Anything).Return(nil)
	sessionStates.On("Put", mock.Anything, mock.Anything).Return(nil)
	events.On("PublishSessionCompleted", mock.Anything, mock.Anything).Return(nil)

	e := New(deps)
	attempt := models.Attempt{AttemptID: "a1", ProblemID: "p1", UserID: "user-1", Success: true}
	err := e.RecordAttempt(context.Background(), "sess-1", attempt, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, session.Status)
}

func TestCompleteSession_Idempotent(t *testing.T) {
	now := time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC)
	deps, _, _, _, sessions, _, _, _, analytics, _, _ := testDeps(t, now)

	session := &models.Session{
		SessionID: "sess-1",
		UserID:    "user-1",
		Status:    models.StatusCompleted,
	}
	sessions.On("Get", mock.Anything, "sess-1").Return(session, nil)
	prior := []models.SessionAnalytics{{SessionID: "sess-1", UserID: "user-1", Accuracy: 0.8}}
	analytics.On("ListByUser", mock.Anything, "user-1", 1).Return(prior, nil)

	e := New(deps)
	out, err := e.CompleteSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0.8, out.Accuracy)

	sessions.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSkipProblem_RemovesFromSession(t *testing.T) {
	now := time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC)
	deps, _, _, _, sessions, _, _, _, _, _, _ := testDeps(t, now)

	session := &models.Session{
		SessionID: "sess-1",
		UserID:    "user-1",
		Status:    models.StatusInProgress,
		Problems: []models.SessionProblem{
			{Problem: models.Problem{LeetcodeID: 1}},
			{Problem: models.Problem{LeetcodeID: 2}},
		},
	}
	sessions.On("Get", mock.Anything, "sess-1").Return(session, nil)
	sessions.On("Put", mock.Anything, mock.Anything).Return(nil)

	e := New(deps)
	updated, err := e.SkipProblem(context.Background(), "sess-1", 1)
	require.NoError(t, err)
	assert.Len(t, updated.Problems, 1)
	assert.Equal(t, 2, updated.Problems[0].Problem.LeetcodeID)
}

func TestClassifyStaleSession_Delegates(t *testing.T) {
	now := time.Date(2026, 7, 29, 9, 0, 0, 0, time.UTC)
	deps, _, _, _, _, _, _, _, _, _, _ := testDeps(t, now)
	e := New(deps)

	session := models.Session{
		SessionID:        "sess-1",
		Status:           models.StatusInProgress,
		LastActivityTime: now.Add(-48 * time.Hour),
		Problems:         []models.SessionProblem{{Problem: models.Problem{LeetcodeID: 1}}},
	}
	result := e.ClassifyStaleSession(context.Background(), session)
	assert.NotEmpty(t, result.Action)
}

