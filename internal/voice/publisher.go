// Package voice доставляет голосовые вызовы водителям назначенных машин.
// Вызов ставится в очередь Redis и совершается воркером, поэтому сбой канала
// не блокирует и не откатывает назначение.
package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

const (
	voiceQueueKey = "voice_dispatch"
)

// Alert - данные голосового вызова
type Alert struct {
	Phone       string    `json:"phone"`
	DriverName  string    `json:"driver_name"`
	VehicleCode string    `json:"vehicle_code"`
	IncidentID  uuid.UUID `json:"incident_id"`
	QueuedAt    time.Time `json:"queued_at"`
}

// Dispatcher - интерфейс постановки голосового вызова
type Dispatcher interface {
	Dispatch(ctx context.Context, alert Alert) error
}

// RedisDispatcher - реализация Dispatcher, использующая очередь Redis
type RedisDispatcher struct {
	redisClient *redis.Client
}

// NewRedisDispatcher создает новый RedisDispatcher
func NewRedisDispatcher(client *redis.Client) *RedisDispatcher {
	return &RedisDispatcher{
		redisClient: client,
	}
}

// Dispatch ставит вызов в очередь Redis
func (p *RedisDispatcher) Dispatch(ctx context.Context, alert Alert) error {
	if alert.Phone == "" {
		return fmt.Errorf("vehicle %s has no contact number", alert.VehicleCode)
	}
	if alert.QueuedAt.IsZero() {
		alert.QueuedAt = time.Now()
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal voice alert: %w", err)
	}

	if err := p.redisClient.LPush(ctx, voiceQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue voice alert: %w", err)
	}
	return nil
}

// Nop - голосовой канал не настроен
type Nop struct{}

func (Nop) Dispatch(context.Context, Alert) error { return nil }
