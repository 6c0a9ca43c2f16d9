package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/config"
	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/voice"
	"github.com/sirupsen/logrus"
)

// Dependencies - внешние коллабораторы сервиса диспетчеризации
type Dependencies struct {
	Incidents IncidentRepository
	Vehicles  VehicleRepository
	Hospitals HospitalRepository
	Cache     IncidentCache
	Events    EventPublisher
	Voice     voice.Dispatcher
	Tasks     TaskScheduler
	Metrics   MetricsRecorder
}

type dispatchService struct {
	incidents IncidentRepository
	vehicles  VehicleRepository
	cache     IncidentCache
	events    EventPublisher
	voice     voice.Dispatcher
	metrics   MetricsRecorder
	logger    *logrus.Logger
	cfg       *config.Config

	allocator         *allocator
	hospitals         *hospitalResolver
	incidentLifecycle *incidentLifecycle
	vehicleLifecycle  *vehicleLifecycle

	now func() time.Time
}

func NewDispatchService(deps Dependencies, logger *logrus.Logger, cfg *config.Config) DispatchService {
	return newDispatchService(deps, logger, cfg)
}

func newDispatchService(deps Dependencies, logger *logrus.Logger, cfg *config.Config) *dispatchService {
	if deps.Cache == nil {
		deps.Cache = nopCache{}
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if deps.Voice == nil {
		deps.Voice = voice.Nop{}
	}

	s := &dispatchService{
		incidents: deps.Incidents,
		vehicles:  deps.Vehicles,
		cache:     deps.Cache,
		events:    deps.Events,
		voice:     deps.Voice,
		metrics:   deps.Metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}

	scorer := geo.NewScorer(cfg.SpeedFactor, geo.NewCongestionModel(geo.DefaultZones, cfg.CongestionRadiusKm))
	s.allocator = &allocator{
		vehicles:  deps.Vehicles,
		incidents: deps.Incidents,
		scorer:    scorer,
		metrics:   deps.Metrics,
		logger:    logger,
	}
	s.hospitals = &hospitalResolver{repo: deps.Hospitals}
	s.vehicleLifecycle = &vehicleLifecycle{
		repo:              deps.Vehicles,
		cache:             deps.Cache,
		tasks:             deps.Tasks,
		events:            deps.Events,
		metrics:           deps.Metrics,
		logger:            logger,
		availabilityDelay: cfg.VehicleAvailabilityDelay,
		now:               s.clock,
	}
	s.incidentLifecycle = &incidentLifecycle{
		repo:           deps.Incidents,
		cache:          deps.Cache,
		tasks:          deps.Tasks,
		events:         deps.Events,
		metrics:        deps.Metrics,
		vehicles:       s.vehicleLifecycle,
		logger:         logger,
		etaScale:       cfg.ETATimeScale,
		clearanceDelay: cfg.SceneClearanceDelay,
		now:            s.clock,
	}
	return s
}

func (s *dispatchService) clock() time.Time {
	return s.now()
}

// ReportIncident регистрирует инцидент и сразу пытается назначить машину
func (s *dispatchService) ReportIncident(ctx context.Context, req models.SOSReport) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "dispatch",
		"method":  "ReportIncident",
		"type":    req.Type,
	})

	if req.Type == "" {
		return nil, fmt.Errorf("service: %w", ErrInvalidIncidentType)
	}
	if !req.Location.Valid() {
		log.WithField("location", req.Location).Warn("Rejected incident with invalid location")
		return nil, fmt.Errorf("service: %w: %s", ErrInvalidLocation, req.Location)
	}
	log.Info("SOS received")
	s.metrics.IncidentReported(req.Type)

	incident := &models.Incident{
		Type:          req.Type,
		Location:      req.Location,
		SeverityScore: models.SeverityFor(req.Type),
		Status:        models.StatusReported,
	}

	// Рекомендация больницы носит справочный характер и не должна срывать диспетчеризацию
	if req.Type == models.IncidentMedical {
		hospital, err := s.hospitals.Nearest(ctx, req.Location)
		if err != nil {
			log.WithError(err).Warn("Failed to resolve nearest hospital")
		} else if hospital != nil {
			incident.SuggestedHospital = hospital.Snapshot()
		}
	}

	if err := s.incidents.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}
	log = log.WithField("incident_id", incident.ID)

	allocation, err := s.allocator.Allocate(ctx, incident, s.now())
	if err != nil {
		log.WithError(err).Error("Allocation failed")
		// Инцидент не должен зависнуть в Reported
		if _, markErr := s.incidents.TransitionStatus(ctx, incident.ID, models.StatusReported, models.StatusNoVehicleAvailable, s.now()); markErr != nil {
			log.WithError(markErr).Error("Failed to mark incident unserved")
		}
		return nil, fmt.Errorf("service: could not allocate vehicle: %w", err)
	}

	if allocation == nil {
		ok, err := s.incidents.TransitionStatus(ctx, incident.ID, models.StatusReported, models.StatusNoVehicleAvailable, s.now())
		if err != nil {
			log.WithError(err).Error("Failed to mark incident unserved")
			return nil, fmt.Errorf("service: could not update incident: %w", err)
		}
		if ok {
			incident.Status = models.StatusNoVehicleAvailable
			s.metrics.IncidentTransition(models.StatusNoVehicleAvailable)
		}
		log.WithField("category", models.CategoryFor(req.Type)).Warn("No vehicle available")
		return incident, nil
	}

	vehicle := allocation.Vehicle
	incident.Status = models.StatusEnRoute
	incident.AssignedVehicleID = &vehicle.ID
	incident.AssignedVehicle = vehicle
	incident.InitialETA = &allocation.ETA
	incident.DispatchOrigin = &allocation.Origin
	incident.DispatchedAt = &allocation.At
	s.metrics.IncidentTransition(models.StatusEnRoute)

	log.WithFields(logrus.Fields{
		"vehicle_code": vehicle.Code,
		"eta_minutes":  allocation.ETA,
	}).Info("Vehicle assigned")

	s.incidentLifecycle.publish(ctx, models.LifecycleEvent{
		Type:        models.EventVehicleAssigned,
		IncidentID:  &incident.ID,
		VehicleID:   &vehicle.ID,
		VehicleCode: vehicle.Code,
		Status:      string(models.StatusEnRoute),
		Timestamp:   allocation.At,
	})

	// Сбой голосового оповещения не отменяет уже зафиксированное назначение
	alert := voice.Alert{
		Phone:       vehicle.ContactNumber,
		DriverName:  vehicle.DriverName,
		VehicleCode: vehicle.Code,
		IncidentID:  incident.ID,
	}
	if err := s.voice.Dispatch(ctx, alert); err != nil {
		log.WithError(err).Warn("Voice dispatch failed, assignment stays valid")
	}

	s.incidentLifecycle.scheduleArrival(incident.ID, vehicle.ID, incident.Location, s.incidentLifecycle.travelTime(allocation.ETA))
	return incident, nil
}

// GetIncident получает инцидент по ID, сначала из кеша.
// Кешируются только инциденты в конечном статусе: статус активного
// может смениться по таймеру между чтением из хранилища и записью в кеш.
func (s *dispatchService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "GetIncident",
		"incident_id": id,
	})

	cached, err := s.cache.GetIncident(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident cache")
	}
	if cached != nil {
		return cached, nil
	}

	incident, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident in repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if !incident.Status.IsTerminal() {
		return incident, nil
	}
	if err := s.cache.SetIncident(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}
	return incident, nil
}

// ListIncidents возвращает все инциденты, сначала самые приоритетные и свежие
func (s *dispatchService) ListIncidents(ctx context.Context) ([]*models.Incident, error) {
	incidents, err := s.incidents.List(ctx)
	if err != nil {
		s.logger.WithFields(logrus.Fields{"service": "dispatch", "method": "ListIncidents"}).
			WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}
	return incidents, nil
}

// UpdateIncidentStatus - ручная смена статуса экипажем или диспетчером
func (s *dispatchService) UpdateIncidentStatus(ctx context.Context, id uuid.UUID, status models.IncidentStatus) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "UpdateIncidentStatus",
		"incident_id": id,
		"status":      status,
	})

	if !status.Valid() {
		return nil, fmt.Errorf("service: %w: %q", ErrInvalidStatus, status)
	}

	incident, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}
	if incident.Status == status {
		return incident, nil
	}
	if !models.CanTransition(incident.Status, status) {
		log.WithField("current", incident.Status).Warn("Rejected status transition")
		return nil, fmt.Errorf("service: %w: %s -> %s", ErrInvalidTransition, incident.Status, status)
	}

	switch status {
	case models.StatusArrived:
		err = s.incidentLifecycle.arriveManually(ctx, incident)
	case models.StatusCompleted:
		err = s.incidentLifecycle.completeManually(ctx, incident)
	case models.StatusCancelled:
		err = s.incidentLifecycle.cancel(ctx, incident)
	default:
		// En Route и No Vehicle Available выставляет только распределитель
		err = fmt.Errorf("%w: %s is set by the allocator", ErrInvalidTransition, status)
	}
	if err != nil {
		log.WithError(err).Warn("Manual status update failed")
		return nil, fmt.Errorf("service: could not update incident status: %w", err)
	}

	log.Info("Incident status updated manually")
	return s.incidents.GetByID(ctx, id)
}

// TrackIncident возвращает положение машины, интерполированное по прошедшему времени
func (s *dispatchService) TrackIncident(ctx context.Context, id uuid.UUID) (*models.Tracking, error) {
	incident, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}
	tracking := &models.Tracking{IncidentID: incident.ID, Status: incident.Status}
	if incident.AssignedVehicleID == nil {
		return tracking, nil
	}

	vehicle := incident.AssignedVehicle
	if vehicle == nil {
		if vehicle, err = s.vehicles.GetByID(ctx, *incident.AssignedVehicleID); err != nil {
			return nil, fmt.Errorf("service: could not get vehicle: %w", err)
		}
	}
	tracking.VehicleCode = vehicle.Code

	if incident.Status == models.StatusEnRoute && incident.DispatchOrigin != nil &&
		incident.DispatchedAt != nil && incident.InitialETA != nil {
		total := s.incidentLifecycle.travelTime(*incident.InitialETA)
		progress := 1.0
		if total > 0 {
			progress = min(1, float64(s.now().Sub(*incident.DispatchedAt))/float64(total))
		}
		position := geo.Interpolate(*incident.DispatchOrigin, incident.Location, progress)
		tracking.VehicleLocation = &position
		tracking.Progress = progress
		tracking.RemainingETA = *incident.InitialETA * (1 - progress)
		return tracking, nil
	}

	location := vehicle.CurrentLocation
	tracking.VehicleLocation = &location
	if incident.Status != models.StatusCancelled {
		tracking.Progress = 1
	}
	return tracking, nil
}

// Resume восстанавливает таймеры по машинам, закрепленным за инцидентами
func (s *dispatchService) Resume(ctx context.Context) (int, error) {
	log := s.logger.WithFields(logrus.Fields{"service": "dispatch", "method": "Resume"})

	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("service: could not list vehicles: %w", err)
	}

	resumed := 0
	now := s.now()
	for _, v := range vehicles {
		if v.AssignedIncidentID == nil {
			continue
		}
		incident, err := s.incidents.GetByID(ctx, *v.AssignedIncidentID)
		if err != nil {
			if errors.Is(err, ErrIncidentNotFound) {
				log.WithField("vehicle_code", v.Code).Warn("Vehicle bound to missing incident, releasing")
				s.vehicleLifecycle.release(ctx, v.ID, *v.AssignedIncidentID)
				continue
			}
			return resumed, fmt.Errorf("service: could not get incident: %w", err)
		}
		if s.incidentLifecycle.resume(ctx, incident, v, now) {
			resumed++
		}
	}
	log.WithField("resumed", resumed).Info("Lifecycle timers resumed")
	return resumed, nil
}

func (s *dispatchService) ListHospitals(ctx context.Context) ([]*models.Hospital, error) {
	hospitals, err := s.hospitals.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list hospitals: %w", err)
	}
	return hospitals, nil
}
