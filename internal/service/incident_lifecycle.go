package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/sirupsen/logrus"
)

func arriveKey(id uuid.UUID) string   { return "incident:" + id.String() + ":arrive" }
func completeKey(id uuid.UUID) string { return "incident:" + id.String() + ":complete" }

// incidentLifecycle владеет автоматом состояний инцидента и его таймерами
type incidentLifecycle struct {
	repo     IncidentRepository
	cache    IncidentCache
	tasks    TaskScheduler
	events   EventPublisher
	metrics  MetricsRecorder
	vehicles *vehicleLifecycle
	logger   *logrus.Logger

	etaScale       time.Duration
	clearanceDelay time.Duration
	now            func() time.Time
}

// travelTime переводит ETA в минутах во время ожидания таймера
func (l *incidentLifecycle) travelTime(eta float64) time.Duration {
	return time.Duration(eta * float64(l.etaScale))
}

func (l *incidentLifecycle) log(id uuid.UUID) *logrus.Entry {
	return l.logger.WithFields(logrus.Fields{"service": "incident_lifecycle", "incident_id": id})
}

func (l *incidentLifecycle) publish(ctx context.Context, event models.LifecycleEvent) {
	if l.events == nil {
		return
	}
	if err := l.events.Publish(ctx, event); err != nil {
		l.logger.WithError(err).WithField("event", event.Type).Warn("Failed to publish lifecycle event")
	}
}

func (l *incidentLifecycle) invalidate(ctx context.Context, id uuid.UUID) {
	if err := l.cache.InvalidateIncident(ctx, id); err != nil {
		l.log(id).WithError(err).Warn("Failed to invalidate incident cache")
	}
}

// scheduleArrival планирует прибытие; координаты места неизменны, поэтому их можно захватить
func (l *incidentLifecycle) scheduleArrival(incidentID, vehicleID uuid.UUID, scene models.Point, delay time.Duration) {
	l.tasks.Schedule(arriveKey(incidentID), delay, func(ctx context.Context) {
		l.arrive(ctx, incidentID, vehicleID, scene)
	})
}

func (l *incidentLifecycle) scheduleCompletion(incidentID, vehicleID uuid.UUID, delay time.Duration) {
	l.tasks.Schedule(completeKey(incidentID), delay, func(ctx context.Context) {
		l.complete(ctx, incidentID, vehicleID)
	})
}

// arrive срабатывает по таймеру ETA. Если статус уже не En Route, переход устарел и пропускается.
func (l *incidentLifecycle) arrive(ctx context.Context, incidentID, vehicleID uuid.UUID, scene models.Point) {
	ok, err := l.repo.TransitionStatus(ctx, incidentID, models.StatusEnRoute, models.StatusArrived, l.now())
	if err != nil {
		l.log(incidentID).WithError(err).Error("Failed to mark incident arrived")
		return
	}
	if !ok {
		l.log(incidentID).Debug("Skipping stale arrival")
		l.metrics.StaleTransition("arrive")
		return
	}
	l.afterArrival(ctx, incidentID, vehicleID, scene)
}

func (l *incidentLifecycle) arriveManually(ctx context.Context, incident *models.Incident) error {
	if incident.AssignedVehicleID == nil {
		return fmt.Errorf("%w: no vehicle assigned", ErrInvalidTransition)
	}
	ok, err := l.repo.TransitionStatus(ctx, incident.ID, incident.Status, models.StatusArrived, l.now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: incident changed concurrently", ErrInvalidTransition)
	}
	// Автоматический таймер прибытия больше не нужен; если он уже сработал, его защитит CAS
	l.tasks.Cancel(arriveKey(incident.ID))
	l.afterArrival(ctx, incident.ID, *incident.AssignedVehicleID, incident.Location)
	return nil
}

func (l *incidentLifecycle) afterArrival(ctx context.Context, incidentID, vehicleID uuid.UUID, scene models.Point) {
	l.invalidate(ctx, incidentID)
	l.metrics.IncidentTransition(models.StatusArrived)
	l.vehicles.markOnScene(ctx, vehicleID, incidentID, &scene)
	l.publish(ctx, models.LifecycleEvent{
		Type:       models.EventIncidentArrived,
		IncidentID: &incidentID,
		VehicleID:  &vehicleID,
		Status:     string(models.StatusArrived),
		Timestamp:  l.now(),
	})
	l.log(incidentID).Info("Vehicle arrived on scene")
	l.scheduleCompletion(incidentID, vehicleID, l.clearanceDelay)
}

func (l *incidentLifecycle) complete(ctx context.Context, incidentID, vehicleID uuid.UUID) {
	ok, err := l.repo.TransitionStatus(ctx, incidentID, models.StatusArrived, models.StatusCompleted, l.now())
	if err != nil {
		l.log(incidentID).WithError(err).Error("Failed to mark incident completed")
		return
	}
	if !ok {
		l.log(incidentID).Debug("Skipping stale completion")
		l.metrics.StaleTransition("complete")
		return
	}
	l.afterCompletion(ctx, incidentID, vehicleID)
}

func (l *incidentLifecycle) completeManually(ctx context.Context, incident *models.Incident) error {
	if incident.AssignedVehicleID == nil {
		return fmt.Errorf("%w: no vehicle assigned", ErrInvalidTransition)
	}
	ok, err := l.repo.TransitionStatus(ctx, incident.ID, incident.Status, models.StatusCompleted, l.now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: incident changed concurrently", ErrInvalidTransition)
	}
	l.tasks.Cancel(completeKey(incident.ID))
	l.afterCompletion(ctx, incident.ID, *incident.AssignedVehicleID)
	return nil
}

func (l *incidentLifecycle) afterCompletion(ctx context.Context, incidentID, vehicleID uuid.UUID) {
	l.invalidate(ctx, incidentID)
	l.metrics.IncidentTransition(models.StatusCompleted)
	l.publish(ctx, models.LifecycleEvent{
		Type:       models.EventIncidentCompleted,
		IncidentID: &incidentID,
		VehicleID:  &vehicleID,
		Status:     string(models.StatusCompleted),
		Timestamp:  l.now(),
	})
	l.log(incidentID).Info("Scene cleared, incident completed")
	l.vehicles.scheduleRelease(vehicleID, incidentID, l.vehicles.availabilityDelay)
}

// cancel снимает ожидающие таймеры и сразу возвращает машину в пул: на место она не прибыла
func (l *incidentLifecycle) cancel(ctx context.Context, incident *models.Incident) error {
	ok, err := l.repo.TransitionStatus(ctx, incident.ID, incident.Status, models.StatusCancelled, l.now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: incident changed concurrently", ErrInvalidTransition)
	}
	l.tasks.Cancel(arriveKey(incident.ID))
	l.tasks.Cancel(completeKey(incident.ID))
	l.invalidate(ctx, incident.ID)
	l.metrics.IncidentTransition(models.StatusCancelled)

	l.publish(ctx, models.LifecycleEvent{
		Type:       models.EventIncidentCancelled,
		IncidentID: &incident.ID,
		VehicleID:  incident.AssignedVehicleID,
		Status:     string(models.StatusCancelled),
		Timestamp:  l.now(),
	})
	if incident.AssignedVehicleID != nil {
		l.vehicles.releaseNow(ctx, *incident.AssignedVehicleID, incident.ID)
	}
	l.log(incident.ID).Info("Incident cancelled")
	return nil
}

// resume заново планирует таймер, соответствующий текущему статусу инцидента.
// Просроченные таймеры срабатывают сразу.
func (l *incidentLifecycle) resume(ctx context.Context, incident *models.Incident, vehicle *models.Vehicle, now time.Time) bool {
	switch incident.Status {
	case models.StatusEnRoute:
		delay := time.Duration(0)
		if incident.DispatchedAt != nil && incident.InitialETA != nil {
			delay = incident.DispatchedAt.Add(l.travelTime(*incident.InitialETA)).Sub(now)
		}
		l.scheduleArrival(incident.ID, vehicle.ID, incident.Location, delay)
	case models.StatusArrived:
		delay := time.Duration(0)
		if incident.ArrivedAt != nil {
			delay = incident.ArrivedAt.Add(l.clearanceDelay).Sub(now)
		}
		l.scheduleCompletion(incident.ID, vehicle.ID, delay)
	case models.StatusCompleted:
		delay := time.Duration(0)
		if incident.CompletedAt != nil {
			delay = incident.CompletedAt.Add(l.vehicles.availabilityDelay).Sub(now)
		}
		l.vehicles.scheduleRelease(vehicle.ID, incident.ID, delay)
	default:
		// Отмененный или неконсистентный инцидент не должен удерживать машину
		l.vehicles.releaseNow(ctx, vehicle.ID, incident.ID)
		return false
	}
	return true
}
