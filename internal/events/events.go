// Package events publishes sync lifecycle events to a Redis stream so other
// consumers can observe documentation refreshes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/corticalabs/site-manager/internal/logger"
)

// Stream and event types.
const (
	StreamSyncJobs = "site:events:sync"

	TypeSyncStarted   = "sync.started"
	TypeSyncCompleted = "sync.completed"
	TypeSyncFailed    = "sync.failed"
)

// Event is one sync lifecycle notification.
type Event struct {
	Type       string    `json:"type"`
	JobID      string    `json:"job_id"`
	DocIDs     []string  `json:"doc_ids,omitempty"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits sync lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher writes events to a Redis stream.
type RedisPublisher struct {
	client *redis.Client
	stream string
	logger logger.Logger
}

func NewRedisPublisher(client *redis.Client, log logger.Logger) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		stream: StreamSyncJobs,
		logger: log,
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type":    event.Type,
			"payload": payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}

	p.logger.Debug("published event",
		logger.String("type", event.Type),
		logger.String("job_id", event.JobID))

	return nil
}

// NopPublisher drops every event. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
