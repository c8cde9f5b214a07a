package bootstrap

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/corticalabs/site-manager/internal/config"
	"github.com/corticalabs/site-manager/internal/events"
	"github.com/corticalabs/site-manager/internal/logger"
)

const redisPingTimeout = 3 * time.Second

// SetupEventPublisher connects to Redis for sync event publishing. Events
// are optional: when Redis is disabled or unreachable the service runs with
// a no-op publisher.
func SetupEventPublisher(cfg *config.Config, log logger.Logger) events.Publisher {
	if !cfg.Redis.Enabled {
		log.Info("Event publishing disabled")
		return events.NopPublisher{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, event publishing disabled",
			logger.String("address", cfg.Redis.Address),
			logger.Error(err),
		)
		return events.NopPublisher{}
	}

	log.Info("Event publisher connected",
		logger.String("address", cfg.Redis.Address),
	)
	return events.NewRedisPublisher(client, log)
}
