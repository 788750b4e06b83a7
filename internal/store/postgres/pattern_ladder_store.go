package postgres

import (
	"context"
	"errors"

	"adaptive-engine/internal/errs"
	"adaptive-engine/internal/metrics"
	"adaptive-engine/internal/models"

	"gorm.io/gorm"
)

// PatternLadderStore is the GORM-backed ports.PatternLadderStore adapter.
type PatternLadderStore struct {
	db *DB
}

func NewPatternLadderStore(db *DB) *PatternLadderStore { return &PatternLadderStore{db: db} }

func (s *PatternLadderStore) Get(ctx context.Context, userID, tag string) (*models.PatternLadder, error) {
	timer := metrics.NewTimer()
	var row models.PatternLadder
	err := s.db.WithContext(ctx).Where("user_id = ? AND tag = ?", userID, tag).First(&row).Error
	s.db.recordOp("pattern_ladder.get", timer, err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.NotFound, "pattern ladder not found")
		}
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to query pattern ladder", err)
	}
	return &row, nil
}

func (s *PatternLadderStore) Put(ctx context.Context, l *models.PatternLadder) error {
	timer := metrics.NewTimer()
	err := s.db.WithContext(ctx).Save(l).Error
	s.db.recordOp("pattern_ladder.put", timer, err)
	if err != nil {
		return errs.Wrap(errs.StoreUnavailable, "failed to save pattern ladder", err)
	}
	return nil
}

func (s *PatternLadderStore) ListByUser(ctx context.Context, userID string) ([]models.PatternLadder, error) {
	timer := metrics.NewTimer()
	var rows []models.PatternLadder
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error
	s.db.recordOp("pattern_ladder.list_by_user", timer, err)
	if err != nil {
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to list pattern ladders", err)
	}
	return rows, nil
}
