package postgres

import (
	"context"

	"adaptive-engine/internal/errs"
	"adaptive-engine/internal/metrics"
	"adaptive-engine/internal/models"
)

// AttemptStore is the GORM-backed ports.AttemptLog adapter. Attempts are
// append-only, mirroring the teacher's activity_repository.go insert-only
// event log.
type AttemptStore struct {
	db *DB
}

func NewAttemptStore(db *DB) *AttemptStore { return &AttemptStore{db: db} }

func (s *AttemptStore) Append(ctx context.Context, a *models.Attempt) error {
	timer := metrics.NewTimer()
	err := s.db.WithContext(ctx).Create(a).Error
	s.db.recordOp("attempt.append", timer, err)
	if err != nil {
		return errs.Wrap(errs.StoreUnavailable, "failed to append attempt", err)
	}
	return nil
}

func (s *AttemptStore) ListByRecency(ctx context.Context, userID string, limit int) ([]models.Attempt, error) {
	timer := metrics.NewTimer()
	var rows []models.Attempt
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("attempt_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	s.db.recordOp("attempt.list_by_recency", timer, err)
	if err != nil {
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to list attempts by recency", err)
	}
	return rows, nil
}

func (s *AttemptStore) ListBySession(ctx context.Context, sessionID string) ([]models.Attempt, error) {
	timer := metrics.NewTimer()
	var rows []models.Attempt
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("attempt_date").Find(&rows).Error
	s.db.recordOp("attempt.list_by_session", timer, err)
	if err != nil {
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to list attempts by session", err)
	}
	return rows, nil
}
