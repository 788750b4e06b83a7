package postgres

import (
	"context"
	"errors"

	"adaptive-engine/internal/errs"
	"adaptive-engine/internal/metrics"
	"adaptive-engine/internal/models"

	"gorm.io/gorm"
)

// TagRelationshipStore is the GORM-backed ports.TagRelationshipStore
// adapter over the read-only tag-relationship catalog (spec §9).
type TagRelationshipStore struct {
	db *DB
}

func NewTagRelationshipStore(db *DB) *TagRelationshipStore { return &TagRelationshipStore{db: db} }

func (s *TagRelationshipStore) Get(ctx context.Context, tag string) (*models.TagRelationship, error) {
	timer := metrics.NewTimer()
	var row models.TagRelationship
	err := s.db.WithContext(ctx).Where("tag = ?", tag).First(&row).Error
	s.db.recordOp("tag_relationship.get", timer, err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.NotFound, "tag relationship not found")
		}
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to query tag relationship", err)
	}
	return &row, nil
}

func (s *TagRelationshipStore) ListByClassification(ctx context.Context, classification models.TierClassification) ([]models.TagRelationship, error) {
	timer := metrics.NewTimer()
	var rows []models.TagRelationship
	err := s.db.WithContext(ctx).Where("classification = ?", classification).Find(&rows).Error
	s.db.recordOp("tag_relationship.list_by_classification", timer, err)
	if err != nil {
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to list tag relationships by classification", err)
	}
	return rows, nil
}

func (s *TagRelationshipStore) ListAll(ctx context.Context) ([]models.TagRelationship, error) {
	timer := metrics.NewTimer()
	var rows []models.TagRelationship
	err := s.db.WithContext(ctx).Find(&rows).Error
	s.db.recordOp("tag_relationship.list_all", timer, err)
	if err != nil {
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to list tag relationships", err)
	}
	return rows, nil
}
