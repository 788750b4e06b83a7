package postgres

import (
	"context"
	"errors"
	"time"

	"adaptive-engine/internal/errs"
	"adaptive-engine/internal/metrics"
	"adaptive-engine/internal/models"

	"gorm.io/gorm"
)

// UserProblemStore is the GORM-backed ports.UserProblemStore adapter.
type UserProblemStore struct {
	db *DB
}

func NewUserProblemStore(db *DB) *UserProblemStore { return &UserProblemStore{db: db} }

func (s *UserProblemStore) Get(ctx context.Context, userID, problemID string) (*models.UserProblem, error) {
	timer := metrics.NewTimer()
	var up models.UserProblem
	err := s.db.WithContext(ctx).Where("user_id = ? AND problem_id = ?", userID, problemID).First(&up).Error
	s.db.recordOp("user_problem.get", timer, err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.NotFound, "user problem not found")
		}
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to query user problem", err)
	}
	return &up, nil
}

// Put upserts up, bumping the optimistic Version like the teacher's
// SM2StateManager.saveStateToDB (gorm Save handles insert-or-update).
func (s *UserProblemStore) Put(ctx context.Context, up *models.UserProblem) error {
	timer := metrics.NewTimer()
	err := s.db.WithContext(ctx).Save(up).Error
	s.db.recordOp("user_problem.put", timer, err)
	if err != nil {
		return errs.Wrap(errs.StoreUnavailable, "failed to save user problem", err)
	}
	return nil
}

// ListDue returns rows due at or before now, restricted to box
// [boxMin, boxMax] (spec §4.D).
func (s *UserProblemStore) ListDue(ctx context.Context, userID string, now time.Time, boxMin, boxMax int) ([]models.UserProblem, error) {
	timer := metrics.NewTimer()
	var rows []models.UserProblem
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND box_level BETWEEN ? AND ? AND review_schedule <= ?", userID, boxMin, boxMax, now).
		Where("cooldown_until IS NULL OR cooldown_until <= ?", now).
		Find(&rows).Error
	s.db.recordOp("user_problem.list_due", timer, err)
	if err != nil {
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to list due user problems", err)
	}
	return rows, nil
}

func (s *UserProblemStore) ListByUser(ctx context.Context, userID string) ([]models.UserProblem, error) {
	timer := metrics.NewTimer()
	var rows []models.UserProblem
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error
	s.db.recordOp("user_problem.list_by_user", timer, err)
	if err != nil {
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to list user problems", err)
	}
	return rows, nil
}
