package events

import (
	"context"
	"encoding/json"
	"fmt"

	"ibb-guide/internal/domain/notification"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "ibb:notifications"

var _ notification.Publisher = (*RedisPublisher)(nil)

// RedisPublisher fans events out over redis pub/sub. Subscribers filter on
// the audience carried inside the payload.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{rdb: rdb, channel: channel, logger: logger}
}

func (p *RedisPublisher) Publish(ctx context.Context, e notification.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		p.logger.Error("failed to marshal event",
			zap.String("event_id", e.EventID),
			zap.String("name", e.Name),
			zap.Error(err))
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	receivers, err := p.rdb.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Name, err)
	}

	p.logger.Debug("event published",
		zap.String("channel", p.channel),
		zap.String("event_id", e.EventID),
		zap.String("name", e.Name),
		zap.Int64("receivers", receivers))
	return nil
}

// PublisherFunc adapts a plain function to notification.Publisher.
type PublisherFunc func(ctx context.Context, e notification.Event) error

func (f PublisherFunc) Publish(ctx context.Context, e notification.Event) error { return f(ctx, e) }
