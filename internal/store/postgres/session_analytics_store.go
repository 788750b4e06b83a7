package postgres

import (
	"context"

	"adaptive-engine/internal/errs"
	"adaptive-engine/internal/metrics"
	"adaptive-engine/internal/models"
)

// SessionAnalyticsStore is the GORM-backed ports.SessionAnalyticsStore
// adapter over the append-only per-session analytics record (spec §3).
type SessionAnalyticsStore struct {
	db *DB
}

func NewSessionAnalyticsStore(db *DB) *SessionAnalyticsStore { return &SessionAnalyticsStore{db: db} }

func (s *SessionAnalyticsStore) Put(ctx context.Context, a *models.SessionAnalytics) error {
	timer := metrics.NewTimer()
	err := s.db.WithContext(ctx).Save(a).Error
	s.db.recordOp("session_analytics.put", timer, err)
	if err != nil {
		return errs.Wrap(errs.StoreUnavailable, "failed to save session analytics", err)
	}
	return nil
}

func (s *SessionAnalyticsStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.SessionAnalytics, error) {
	timer := metrics.NewTimer()
	var rows []models.SessionAnalytics
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("completed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	s.db.recordOp("session_analytics.list_by_user", timer, err)
	if err != nil {
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to list session analytics", err)
	}
	return rows, nil
}
