package voice

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Worker - обработчик очереди голосовых вызовов
type Worker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	caller      Caller
	limiter     *rate.Limiter
	retryDelay  time.Duration
}

// NewWorker создает воркер. ratePerSecond ограничивает частоту вызовов провайдера.
func NewWorker(redisClient *redis.Client, logger *logrus.Logger, caller Caller, ratePerSecond float64) *Worker {
	limit := rate.Limit(ratePerSecond)
	if ratePerSecond <= 0 {
		limit = rate.Inf
	}
	return &Worker{
		redisClient: redisClient,
		logger:      logger,
		caller:      caller,
		limiter:     rate.NewLimiter(limit, 1),
		retryDelay:  time.Second,
	}
}

// Run обрабатывает очередь до отмены контекста
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("Starting voice dispatch worker...")
	for {
		if ctx.Err() != nil {
			w.logger.Info("Stopping voice dispatch worker.")
			return
		}
		// BRPOP - блокирующее извлечение из правой части списка (очереди)
		result, err := w.redisClient.BRPop(ctx, 0, voiceQueueKey).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.WithError(err).Error("Failed to pop voice alert from Redis")
			select {
			case <-ctx.Done():
			case <-time.After(w.retryDelay):
			}
			continue
		}
		w.handle(ctx, result[1])
	}
}

// handle совершает один вызов. Ошибки только логируются: назначение уже зафиксировано.
func (w *Worker) handle(ctx context.Context, payload string) {
	var alert Alert
	if err := json.Unmarshal([]byte(payload), &alert); err != nil {
		w.logger.WithError(err).Error("Failed to unmarshal voice alert from Redis")
		return
	}
	log := w.logger.WithFields(logrus.Fields{
		"vehicle_code": alert.VehicleCode,
		"incident_id":  alert.IncidentID,
	})

	if err := w.limiter.Wait(ctx); err != nil {
		log.WithError(err).Warn("Voice alert dropped while waiting for rate limiter")
		return
	}
	if err := w.caller.Call(ctx, alert); err != nil {
		log.WithError(err).Error("Voice dispatch call failed")
		return
	}
	log.Info("Voice dispatch call queued with provider")
}
