// Package webhook доставляет события жизненного цикла во внешний HTTP-приемник
// через очередь Redis с повторными попытками и HMAC-подписью.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/emergency_dispatch/internal/models"
)

const (
	webhookQueueKey = "webhook_events"
)

// RedisWebhookPublisher ставит события в очередь Redis. Очередь ограничена limit
// элементами: при переполнении отбрасываются самые старые события.
type RedisWebhookPublisher struct {
	redisClient *redis.Client
	limit       int64
}

func NewRedisWebhookPublisher(client *redis.Client, limit int64) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
		limit:       limit,
	}
}

// Publish кладет событие в голову очереди; воркер забирает с хвоста
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event models.LifecycleEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	_, err = p.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, webhookQueueKey, payload)
		if p.limit > 0 {
			pipe.LTrim(ctx, webhookQueueKey, 0, p.limit-1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue %s event: %w", event.Type, err)
	}
	return nil
}
