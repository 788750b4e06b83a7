package postgres

import (
	"context"
	"errors"

	"adaptive-engine/internal/errs"
	"adaptive-engine/internal/metrics"
	"adaptive-engine/internal/models"

	"gorm.io/gorm"
)

// TagMasteryStore is the GORM-backed ports.TagMasteryStore adapter.
type TagMasteryStore struct {
	db *DB
}

func NewTagMasteryStore(db *DB) *TagMasteryStore { return &TagMasteryStore{db: db} }

func (s *TagMasteryStore) Get(ctx context.Context, userID, tag string) (*models.TagMastery, error) {
	timer := metrics.NewTimer()
	var row models.TagMastery
	err := s.db.WithContext(ctx).Where("user_id = ? AND tag = ?", userID, tag).First(&row).Error
	s.db.recordOp("tag_mastery.get", timer, err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.NotFound, "tag mastery not found")
		}
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to query tag mastery", err)
	}
	return &row, nil
}

func (s *TagMasteryStore) ListByUser(ctx context.Context, userID string) ([]models.TagMastery, error) {
	timer := metrics.NewTimer()
	var rows []models.TagMastery
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error
	s.db.recordOp("tag_mastery.list_by_user", timer, err)
	if err != nil {
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to list tag mastery", err)
	}
	return rows, nil
}

// Replace atomically swaps userID's tag mastery rows inside a transaction
// (spec §4.B: "a recompute pass either replaces a tag row atomically or
// leaves it unchanged"), mirroring the teacher's transaction usage in
// scheduler_state_repository.go's Update.
func (s *TagMasteryStore) Replace(ctx context.Context, userID string, rows []models.TagMastery) error {
	timer := metrics.NewTimer()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.TagMastery{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	s.db.recordOp("tag_mastery.replace", timer, err)
	if err != nil {
		return errs.Wrap(errs.StoreUnavailable, "failed to replace tag mastery", err)
	}
	return nil
}
