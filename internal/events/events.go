// Package events publishes domain events to Kafka. Grounded on
// event-service/internal/models/events.go's BaseEvent envelope and
// event-service/internal/publisher/kafka_publisher.go's writer setup,
// scaled down to the two outbound event types the engine emits (spec
// §6 StartSession/CompleteSession side effects) instead of the
// teacher's full attempt/session/placement surface.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"adaptive-engine/internal/config"
	"adaptive-engine/internal/errs"
	"adaptive-engine/internal/logger"
	"adaptive-engine/internal/models"
	"adaptive-engine/internal/retry"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventType names the engine's two outbound domain events.
type EventType string

const (
	EventTypeSessionCompleted EventType = "session_completed"
	EventTypeTierAdvanced     EventType = "tier_advanced"
)

// BaseEvent carries the fields common to every event, mirroring
// event-service's models.BaseEvent.
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType EventType `json:"event_type"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionCompletedEvent reports a completed session's analytics.
type SessionCompletedEvent struct {
	BaseEvent
	SessionID      string   `json:"session_id"`
	Accuracy       float64  `json:"accuracy"`
	AvgTimeSeconds float64  `json:"avg_time_seconds"`
	StrongTags     []string `json:"strong_tags"`
	WeakTags       []string `json:"weak_tags"`
}

// TierAdvancedEvent reports a user's tier promotion.
type TierAdvancedEvent struct {
	BaseEvent
	NewTier models.TierClassification `json:"new_tier"`
}

// Publisher publishes domain events over Kafka.
type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

// New configures a Kafka writer per cfg, grounded on the teacher's
// single-topic KafkaPublisher setup (synchronous, one ack required).
func New(cfg config.KafkaConfig, log *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &Publisher{writer: writer, logger: log}
}

func (p *Publisher) Close() error { return p.writer.Close() }

// PublishSessionCompleted implements engine.EventPublisher.
func (p *Publisher) PublishSessionCompleted(ctx context.Context, analytics models.SessionAnalytics) error {
	event := SessionCompletedEvent{
		BaseEvent: BaseEvent{
			EventID:   uuid.NewString(),
			EventType: EventTypeSessionCompleted,
			UserID:    analytics.UserID,
			Timestamp: analytics.CompletedAt,
		},
		SessionID:      analytics.SessionID,
		Accuracy:       analytics.Accuracy,
		AvgTimeSeconds: analytics.AvgTimeSeconds,
		StrongTags:     analytics.StrongTags,
		WeakTags:       analytics.WeakTags,
	}
	return p.publish(ctx, analytics.UserID, event)
}

// PublishTierAdvanced implements engine.EventPublisher.
func (p *Publisher) PublishTierAdvanced(ctx context.Context, userID string, newTier models.TierClassification) error {
	event := TierAdvancedEvent{
		BaseEvent: BaseEvent{
			EventID:   uuid.NewString(),
			EventType: EventTypeTierAdvanced,
			UserID:    userID,
			Timestamp: time.Now(),
		},
		NewTier: newTier,
	}
	return p.publish(ctx, userID, event)
}

func (p *Publisher) publish(ctx context.Context, key string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := kafka.Message{Key: []byte(key), Value: payload}

	return retry.Do(ctx, retry.Normal, func(opCtx context.Context) error {
		if err := p.writer.WriteMessages(opCtx, msg); err != nil {
			return errs.Wrap(errs.StoreUnavailable, "failed to publish event", err)
		}
		return nil
	})
}
