package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/sirupsen/logrus"
)

func releaseKey(id uuid.UUID) string { return "vehicle:" + id.String() + ":release" }

// vehicleLifecycle ведет статус машины синхронно с инцидентом
type vehicleLifecycle struct {
	repo    VehicleRepository
	cache   IncidentCache
	tasks   TaskScheduler
	events  EventPublisher
	metrics MetricsRecorder
	logger  *logrus.Logger

	availabilityDelay time.Duration
	now               func() time.Time
}

func (l *vehicleLifecycle) log(vehicleID, incidentID uuid.UUID) *logrus.Entry {
	return l.logger.WithFields(logrus.Fields{
		"service":     "vehicle_lifecycle",
		"vehicle_id":  vehicleID,
		"incident_id": incidentID,
	})
}

// markOnScene переводит машину в On Scene и перемещает её на место инцидента
func (l *vehicleLifecycle) markOnScene(ctx context.Context, vehicleID, incidentID uuid.UUID, scene *models.Point) {
	ok, err := l.repo.SetStatusForIncident(ctx, vehicleID, incidentID, models.VehicleOnScene, scene)
	if err != nil {
		l.log(vehicleID, incidentID).WithError(err).Error("Failed to mark vehicle on scene")
		return
	}
	if !ok {
		l.log(vehicleID, incidentID).Warn("Vehicle no longer bound to incident, on-scene update skipped")
	}
}

func (l *vehicleLifecycle) scheduleRelease(vehicleID, incidentID uuid.UUID, delay time.Duration) {
	l.tasks.Schedule(releaseKey(vehicleID), delay, func(ctx context.Context) {
		l.release(ctx, vehicleID, incidentID)
	})
}

func (l *vehicleLifecycle) releaseNow(ctx context.Context, vehicleID, incidentID uuid.UUID) {
	l.tasks.Cancel(releaseKey(vehicleID))
	l.release(ctx, vehicleID, incidentID)
}

// release возвращает машину в пул, если она всё ещё закреплена за incidentID
func (l *vehicleLifecycle) release(ctx context.Context, vehicleID, incidentID uuid.UUID) {
	vehicle, err := l.repo.Release(ctx, vehicleID, incidentID)
	if err != nil {
		l.log(vehicleID, incidentID).WithError(err).Error("Failed to release vehicle")
		return
	}
	if vehicle == nil {
		l.log(vehicleID, incidentID).Debug("Skipping stale vehicle release")
		l.metrics.StaleTransition("release")
		return
	}

	l.metrics.VehicleReleased(vehicle.Type)
	// В закешированном инциденте лежит снимок машины до возврата
	if err := l.cache.InvalidateIncident(ctx, incidentID); err != nil {
		l.log(vehicleID, incidentID).WithError(err).Warn("Failed to invalidate incident cache")
	}
	if l.events != nil {
		event := models.LifecycleEvent{
			Type:        models.EventVehicleAvailable,
			VehicleID:   &vehicle.ID,
			VehicleCode: vehicle.Code,
			Status:      string(models.VehicleAvailable),
			Timestamp:   l.now(),
		}
		if err := l.events.Publish(ctx, event); err != nil {
			l.log(vehicleID, incidentID).WithError(err).Warn("Failed to publish lifecycle event")
		}
	}
	l.log(vehicleID, incidentID).WithField("vehicle_code", vehicle.Code).Info("Vehicle back in the pool")
}
