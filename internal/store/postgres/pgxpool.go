package postgres

import (
	"context"
	"time"

	"adaptive-engine/internal/config"
	"adaptive-engine/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPgxPool opens a raw pgx connection pool alongside the GORM *DB,
// grounded on user-service's pgxpool.Pool usage
// (internal/repository/scheduler_state_repository.go). SessionStateStore
// uses this pool directly rather than GORM so its optimistic-locking
// transaction can follow the teacher's hand-rolled version-check SQL
// exactly instead of GORM's generic Save semantics.
func NewPgxPool(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MaxConnIdleTime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("connected to postgres via pgx pool")
	return pool, nil
}
