package postgres

import (
	"context"
	"errors"
	"fmt"

	"adaptive-engine/internal/errs"
	"adaptive-engine/internal/metrics"
	"adaptive-engine/internal/models"

	"gorm.io/gorm"
)

// ProblemStore is the GORM-backed ports.ProblemCatalog adapter. The
// catalog is read-mostly reference data, grounded on the teacher's
// SM2StateManager query shape in scheduler-service/internal/state/
// sm2_manager.go.
type ProblemStore struct {
	db *DB
}

func NewProblemStore(db *DB) *ProblemStore { return &ProblemStore{db: db} }

func (s *ProblemStore) GetBySlug(ctx context.Context, slug string) (*models.Problem, error) {
	timer := metrics.NewTimer()
	var p models.Problem
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error
	s.db.recordOp("problem.get_by_slug", timer, err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.NotFound, "problem not found")
		}
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to query problem by slug", err)
	}
	return &p, nil
}

func (s *ProblemStore) GetByID(ctx context.Context, leetcodeID int) (*models.Problem, error) {
	timer := metrics.NewTimer()
	var p models.Problem
	err := s.db.WithContext(ctx).Where("leetcode_id = ?", leetcodeID).First(&p).Error
	s.db.recordOp("problem.get_by_id", timer, err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.NotFound, "problem not found")
		}
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to query problem by id", err)
	}
	return &p, nil
}

// ListWithFilter returns up to limit problems tagged with any of tags (all
// tags when tags is empty), at or below difficultyCap, excluding excludeIDs.
func (s *ProblemStore) ListWithFilter(ctx context.Context, tags []string, difficultyCap models.Difficulty, excludeIDs []int, limit int) ([]models.Problem, error) {
	timer := metrics.NewTimer()

	allowed := make([]models.Difficulty, 0, 3)
	for _, d := range []models.Difficulty{models.Easy, models.Medium, models.Hard} {
		if d.LessOrEqual(difficultyCap) {
			allowed = append(allowed, d)
		}
	}

	q := s.db.WithContext(ctx).Model(&models.Problem{}).Where("difficulty IN ?", allowed)
	if len(excludeIDs) > 0 {
		q = q.Where("leetcode_id NOT IN ?", excludeIDs)
	}
	if len(tags) > 0 {
		// tags is a JSON array column; match any overlap via a per-tag OR
		// of the JSON-contains predicate, consistent with the teacher's
		// use of serializer:json columns elsewhere (models.Problem.Tags).
		clause := ""
		args := make([]interface{}, 0, len(tags))
		for i, tag := range tags {
			if i > 0 {
				clause += " OR "
			}
			clause += "tags::jsonb @> ?"
			args = append(args, fmt.Sprintf(`["%s"]`, tag))
		}
		q = q.Where(clause, args...)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var problems []models.Problem
	err := q.Order("leetcode_id").Find(&problems).Error
	s.db.recordOp("problem.list_with_filter", timer, err)
	if err != nil {
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to list problems", err)
	}
	return problems, nil
}
