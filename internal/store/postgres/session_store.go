package postgres

import (
	"context"
	"errors"

	"adaptive-engine/internal/errs"
	"adaptive-engine/internal/metrics"
	"adaptive-engine/internal/models"

	"gorm.io/gorm"
)

// SessionStore is the GORM-backed ports.SessionStore adapter.
type SessionStore struct {
	db       *DB
	attempts *AttemptStore
}

func NewSessionStore(db *DB, attempts *AttemptStore) *SessionStore {
	return &SessionStore{db: db, attempts: attempts}
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	timer := metrics.NewTimer()
	var session models.Session
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	s.db.recordOp("session.get", timer, err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.NotFound, "session not found")
		}
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to query session", err)
	}
	if err := s.hydrateAttempts(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) Put(ctx context.Context, session *models.Session) error {
	timer := metrics.NewTimer()
	err := s.db.WithContext(ctx).Save(session).Error
	s.db.recordOp("session.put", timer, err)
	if err != nil {
		return errs.Wrap(errs.StoreUnavailable, "failed to save session", err)
	}
	return nil
}

// GetLatest returns the most recently started session for userID,
// regardless of status — StartSession (spec §6) uses this to detect an
// in-progress session that may need staleness classification.
func (s *SessionStore) GetLatest(ctx context.Context, userID string) (*models.Session, error) {
	timer := metrics.NewTimer()
	var session models.Session
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC").First(&session).Error
	s.db.recordOp("session.get_latest", timer, err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.NotFound, "no session found")
		}
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to query latest session", err)
	}
	if err := s.hydrateAttempts(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) ByType(ctx context.Context, userID string, t models.SessionType) ([]models.Session, error) {
	timer := metrics.NewTimer()
	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND session_type = ?", userID, t).
		Order("date DESC").
		Find(&sessions).Error
	s.db.recordOp("session.by_type", timer, err)
	if err != nil {
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to list sessions by type", err)
	}
	for i := range sessions {
		if err := s.hydrateAttempts(ctx, &sessions[i]); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (s *SessionStore) hydrateAttempts(ctx context.Context, session *models.Session) error {
	attempts, err := s.attempts.ListBySession(ctx, session.SessionID)
	if err != nil {
		return err
	}
	session.Attempts = attempts
	return nil
}
