// Package enginetest provides testify-mock adapters for every outbound
// port (internal/ports), reusable across engine-level tests. Grounded on
// user-service/internal/testutils/mocks.go's MockCache pattern: one
// struct embedding mock.Mock per collaborator, one method per port
// method, args.Get/.Error extracting the configured return values.
package enginetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"adaptive-engine/internal/models"
)

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) GetBySlug(ctx context.Context, slug string) (*models.Problem, error) {
	args := m.Called(ctx, slug)
	p, _ := args.Get(0).(*models.Problem)
	return p, args.Error(1)
}

func (m *MockCatalog) GetByID(ctx context.Context, leetcodeID int) (*models.Problem, error) {
	args := m.Called(ctx, leetcodeID)
	p, _ := args.Get(0).(*models.Problem)
	return p, args.Error(1)
}

func (m *MockCatalog) ListWithFilter(ctx context.Context, tags []string, difficultyCap models.Difficulty, excludeIDs []int, limit int) ([]models.Problem, error) {
	args := m.Called(ctx, tags, difficultyCap, excludeIDs, limit)
	rows, _ := args.Get(0).([]models.Problem)
	return rows, args.Error(1)
}

type MockUserProblems struct{ mock.Mock }

func (m *MockUserProblems) Get(ctx context.Context, userID, problemID string) (*models.UserProblem, error) {
	args := m.Called(ctx, userID, problemID)
	up, _ := args.Get(0).(*models.UserProblem)
	return up, args.Error(1)
}

func (m *MockUserProblems) Put(ctx context.Context, up *models.UserProblem) error {
	args := m.Called(ctx, up)
	return args.Error(0)
}

func (m *MockUserProblems) ListDue(ctx context.Context, userID string, now time.Time, boxMin, boxMax int) ([]models.UserProblem, error) {
	args := m.Called(ctx, userID, now, boxMin, boxMax)
	rows, _ := args.Get(0).([]models.UserProblem)
	return rows, args.Error(1)
}

func (m *MockUserProblems) ListByUser(ctx context.Context, userID string) ([]models.UserProblem, error) {
	args := m.Called(ctx, userID)
	rows, _ := args.Get(0).([]models.UserProblem)
	return rows, args.Error(1)
}

type MockAttempts struct{ mock.Mock }

func (m *MockAttempts) Append(ctx context.Context, a *models.Attempt) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAttempts) ListByRecency(ctx context.Context, userID string, limit int) ([]models.Attempt, error) {
	args := m.Called(ctx, userID, limit)
	rows, _ := args.Get(0).([]models.Attempt)
	return rows, args.Error(1)
}

func (m *MockAttempts) ListBySession(ctx context.Context, sessionID string) ([]models.Attempt, error) {
	args := m.Called(ctx, sessionID)
	rows, _ := args.Get(0).([]models.Attempt)
	return rows, args.Error(1)
}

type MockSessions struct{ mock.Mock }

func (m *MockSessions) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	s, _ := args.Get(0).(*models.Session)
	return s, args.Error(1)
}

func (m *MockSessions) Put(ctx context.Context, s *models.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessions) GetLatest(ctx context.Context, userID string) (*models.Session, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(*models.Session)
	return s, args.Error(1)
}

func (m *MockSessions) ByType(ctx context.Context, userID string, t models.SessionType) ([]models.Session, error) {
	args := m.Called(ctx, userID, t)
	rows, _ := args.Get(0).([]models.Session)
	return rows, args.Error(1)
}

type MockTagMastery struct{ mock.Mock }

func (m *MockTagMastery) Get(ctx context.Context, userID, tag string) (*models.TagMastery, error) {
	args := m.Called(ctx, userID, tag)
	row, _ := args.Get(0).(*models.TagMastery)
	return row, args.Error(1)
}

func (m *MockTagMastery) ListByUser(ctx context.Context, userID string) ([]models.TagMastery, error) {
	args := m.Called(ctx, userID)
	rows, _ := args.Get(0).([]models.TagMastery)
	return rows, args.Error(1)
}

func (m *MockTagMastery) Replace(ctx context.Context, userID string, rows []models.TagMastery) error {
	args := m.Called(ctx, userID, rows)
	return args.Error(0)
}

type MockTagRelationships struct{ mock.Mock }

func (m *MockTagRelationships) Get(ctx context.Context, tag string) (*models.TagRelationship, error) {
	args := m.Called(ctx, tag)
	row, _ := args.Get(0).(*models.TagRelationship)
	return row, args.Error(1)
}

func (m *MockTagRelationships) ListByClassification(ctx context.Context, classification models.TierClassification) ([]models.TagRelationship, error) {
	args := m.Called(ctx, classification)
	rows, _ := args.Get(0).([]models.TagRelationship)
	return rows, args.Error(1)
}

func (m *MockTagRelationships) ListAll(ctx context.Context) ([]models.TagRelationship, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]models.TagRelationship)
	return rows, args.Error(1)
}

type MockLadders struct{ mock.Mock }

func (m *MockLadders) Get(ctx context.Context, userID, tag string) (*models.PatternLadder, error) {
	args := m.Called(ctx, userID, tag)
	row, _ := args.Get(0).(*models.PatternLadder)
	return row, args.Error(1)
}

func (m *MockLadders) Put(ctx context.Context, l *models.PatternLadder) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLadders) ListByUser(ctx context.Context, userID string) ([]models.PatternLadder, error) {
	args := m.Called(ctx, userID)
	rows, _ := args.Get(0).([]models.PatternLadder)
	return rows, args.Error(1)
}

type MockAnalytics struct{ mock.Mock }

func (m *MockAnalytics) Put(ctx context.Context, a *models.SessionAnalytics) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAnalytics) ListByUser(ctx context.Context, userID string, limit int) ([]models.SessionAnalytics, error) {
	args := m.Called(ctx, userID, limit)
	rows, _ := args.Get(0).([]models.SessionAnalytics)
	return rows, args.Error(1)
}

type MockSessionStates struct{ mock.Mock }

func (m *MockSessionStates) Get(ctx context.Context, userID string) (*models.SessionState, error) {
	args := m.Called(ctx, userID)
	row, _ := args.Get(0).(*models.SessionState)
	return row, args.Error(1)
}

func (m *MockSessionStates) Put(ctx context.Context, s *models.SessionState) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type MockEvents struct{ mock.Mock }

func (m *MockEvents) PublishSessionCompleted(ctx context.Context, analytics models.SessionAnalytics) error {
	args := m.Called(ctx, analytics)
	return args.Error(0)
}

func (m *MockEvents) PublishTierAdvanced(ctx context.Context, userID string, newTier models.TierClassification) error {
	args := m.Called(ctx, userID, newTier)
	return args.Error(0)
}
