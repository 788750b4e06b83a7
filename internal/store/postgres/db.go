// Package postgres implements every outbound port in internal/ports
// against a GORM-backed Postgres database. Grounded on scheduler-service/
// internal/database/database.go: a DB wrapper around *gorm.DB carrying
// the logger and metrics the teacher's repositories thread through every
// query.
package postgres

import (
	"context"
	"fmt"
	"time"

	"adaptive-engine/internal/config"
	"adaptive-engine/internal/logger"
	"adaptive-engine/internal/metrics"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB wraps *gorm.DB with the metrics/logging the teacher's stores use.
type DB struct {
	*gorm.DB
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// New opens a pooled Postgres connection per cfg.
func New(cfg config.DatabaseConfig, m *metrics.Metrics, log *logger.Logger) (*DB, error) {
	gormLog := gormlogger.New(
		log,
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established")

	return &DB{DB: db, metrics: m, logger: log}, nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) Health(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (db *DB) recordOp(op string, timer metrics.Timer, err error) {
	db.metrics.RecordDBOperation(op, err)
	db.metrics.ObserveDuration(op, timer)
}
