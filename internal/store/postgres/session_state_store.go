package postgres

import (
	"context"
	"encoding/json"

	"adaptive-engine/internal/errs"
	"adaptive-engine/internal/metrics"
	"adaptive-engine/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionStateStore is the pgx-backed ports.SessionStateStore adapter,
// grounded on user-service/internal/repository/scheduler_state_repository.go's
// Update: a transaction that reads the stored version, rejects the write
// on mismatch, and otherwise updates in place with version = version + 1.
// Unlike the rest of internal/store/postgres this one bypasses GORM,
// mirroring the teacher's own split between scheduler-service's GORM
// models and user-service's hand-rolled pgx repositories.
type SessionStateStore struct {
	pool *pgxpool.Pool
	m    *metrics.Metrics
}

func NewSessionStateStore(pool *pgxpool.Pool, m *metrics.Metrics) *SessionStateStore {
	return &SessionStateStore{pool: pool, m: m}
}

const sessionStateColumns = `user_id, num_sessions_completed, current_difficulty_cap, tag_index,
	session_length, new_problem_count, current_allowed_tags, last_perf_accuracy,
	last_perf_efficiency_score, escape_hatches, sessions_at_current_tag_count,
	tier_started_at, version`

func scanSessionState(row pgx.Row) (*models.SessionState, error) {
	var s models.SessionState
	var allowedTagsJSON, escapeHatchesJSON []byte
	err := row.Scan(
		&s.UserID, &s.NumSessionsCompleted, &s.CurrentDifficultyCap, &s.TagIndex,
		&s.SessionLength, &s.NewProblemCount, &allowedTagsJSON, &s.LastPerformance.Accuracy,
		&s.LastPerformance.EfficiencyScore, &escapeHatchesJSON, &s.SessionsAtCurrentTagCount,
		&s.TierStartedAt, &s.Version,
	)
	if err != nil {
		return nil, err
	}
	if len(allowedTagsJSON) > 0 {
		if err := json.Unmarshal(allowedTagsJSON, &s.CurrentAllowedTags); err != nil {
			return nil, err
		}
	}
	if len(escapeHatchesJSON) > 0 {
		if err := json.Unmarshal(escapeHatchesJSON, &s.EscapeHatches); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func (s *SessionStateStore) Get(ctx context.Context, userID string) (*models.SessionState, error) {
	timer := metrics.NewTimer()
	row := s.pool.QueryRow(ctx, "SELECT "+sessionStateColumns+" FROM session_states WHERE user_id = $1", userID)
	state, err := scanSessionState(row)
	s.recordOp("session_state.get", timer, err)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errs.New(errs.NotFound, "session state not found")
		}
		return nil, errs.Wrap(errs.StoreUnavailable, "failed to query session state", err)
	}
	return state, nil
}

// Put writes state only if the stored version still matches
// state.Version-1, surfacing errs.StaleTransaction on mismatch (spec §7).
// A row that doesn't exist yet (state.Version==1) is inserted directly.
func (s *SessionStateStore) Put(ctx context.Context, state *models.SessionState) error {
	timer := metrics.NewTimer()
	err := s.put(ctx, state)
	s.recordOp("session_state.put", timer, err)
	return err
}

func (s *SessionStateStore) put(ctx context.Context, state *models.SessionState) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errs.Wrap(errs.StoreUnavailable, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var currentVersion int
	lookupErr := tx.QueryRow(ctx, "SELECT version FROM session_states WHERE user_id = $1", state.UserID).Scan(&currentVersion)

	allowedTagsJSON, err := json.Marshal(state.CurrentAllowedTags)
	if err != nil {
		return errs.Wrap(errs.InvalidInput, "failed to marshal current_allowed_tags", err)
	}
	escapeHatchesJSON, err := json.Marshal(state.EscapeHatches)
	if err != nil {
		return errs.Wrap(errs.InvalidInput, "failed to marshal escape_hatches", err)
	}

	if lookupErr == pgx.ErrNoRows {
		_, err := tx.Exec(ctx, `
			INSERT INTO session_states (`+sessionStateColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			state.UserID, state.NumSessionsCompleted, state.CurrentDifficultyCap, state.TagIndex,
			state.SessionLength, state.NewProblemCount, allowedTagsJSON, state.LastPerformance.Accuracy,
			state.LastPerformance.EfficiencyScore, escapeHatchesJSON, state.SessionsAtCurrentTagCount,
			state.TierStartedAt, state.Version,
		)
		if err != nil {
			return errs.Wrap(errs.StoreUnavailable, "failed to insert session state", err)
		}
		return tx.Commit(ctx)
	}
	if lookupErr != nil {
		return errs.Wrap(errs.StoreUnavailable, "failed to read current version", lookupErr)
	}

	if currentVersion != state.Version-1 {
		return errs.New(errs.StaleTransaction, "session state version mismatch")
	}

	_, err = tx.Exec(ctx, `
		UPDATE session_states SET
			num_sessions_completed = $2, current_difficulty_cap = $3, tag_index = $4,
			session_length = $5, new_problem_count = $6, current_allowed_tags = $7,
			last_perf_accuracy = $8, last_perf_efficiency_score = $9, escape_hatches = $10,
			sessions_at_current_tag_count = $11, tier_started_at = $12, version = $13
		WHERE user_id = $1`,
		state.UserID, state.NumSessionsCompleted, state.CurrentDifficultyCap, state.TagIndex,
		state.SessionLength, state.NewProblemCount, allowedTagsJSON, state.LastPerformance.Accuracy,
		state.LastPerformance.EfficiencyScore, escapeHatchesJSON, state.SessionsAtCurrentTagCount,
		state.TierStartedAt, state.Version,
	)
	if err != nil {
		return errs.Wrap(errs.StoreUnavailable, "failed to update session state", err)
	}
	return tx.Commit(ctx)
}

func (s *SessionStateStore) recordOp(op string, timer metrics.Timer, err error) {
	if s.m == nil {
		return
	}
	s.m.RecordDBOperation(op, err)
	s.m.ObserveDuration(op, timer)
}
