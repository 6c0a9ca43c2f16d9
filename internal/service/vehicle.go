package service

import (
	"context"
	"fmt"

	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/sirupsen/logrus"
)

// ListVehicles возвращает весь парк
func (s *dispatchService) ListVehicles(ctx context.Context) ([]*models.Vehicle, error) {
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list vehicles: %w", err)
	}
	return vehicles, nil
}

// UpdateVehicleLocation принимает телеметрию; новое положение учитывается при следующем расчете ETA
func (s *dispatchService) UpdateVehicleLocation(ctx context.Context, code string, location models.Point) (*models.Vehicle, error) {
	if !location.Valid() {
		return nil, fmt.Errorf("service: %w: %s", ErrInvalidLocation, location)
	}
	vehicle, err := s.vehicles.UpdateLocation(ctx, code, location)
	if err != nil {
		return nil, fmt.Errorf("service: could not update vehicle location: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"service":      "dispatch",
		"method":       "UpdateVehicleLocation",
		"vehicle_code": code,
	}).Debug("Vehicle location updated")
	return vehicle, nil
}

// UpdateVehicleStatus переключает свободную машину между Available и InMaintenance.
// Статусы, связанные с инцидентом, меняет только жизненный цикл.
func (s *dispatchService) UpdateVehicleStatus(ctx context.Context, code string, status models.VehicleStatus) (*models.Vehicle, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "dispatch",
		"method":       "UpdateVehicleStatus",
		"vehicle_code": code,
		"status":       status,
	})

	var from models.VehicleStatus
	switch status {
	case models.VehicleAvailable:
		from = models.VehicleInMaintenance
	case models.VehicleInMaintenance:
		from = models.VehicleAvailable
	default:
		return nil, fmt.Errorf("service: %w: vehicle status %q is managed by the dispatch lifecycle", ErrInvalidStatus, status)
	}

	vehicle, err := s.vehicles.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service: could not get vehicle: %w", err)
	}
	if vehicle.Status == status {
		return vehicle, nil
	}
	if vehicle.AssignedIncidentID != nil {
		return nil, fmt.Errorf("service: %w", ErrVehicleBusy)
	}

	ok, err := s.vehicles.CompareAndSetStatus(ctx, code, from, status)
	if err != nil {
		return nil, fmt.Errorf("service: could not update vehicle status: %w", err)
	}
	if !ok {
		log.WithField("current", vehicle.Status).Warn("Vehicle status changed concurrently")
		return nil, fmt.Errorf("service: %w", ErrVehicleBusy)
	}
	log.Info("Vehicle status updated")
	return s.vehicles.GetByCode(ctx, code)
}

// GetActiveIncidentForVehicle возвращает инцидент, который машина обслуживает сейчас, или nil
func (s *dispatchService) GetActiveIncidentForVehicle(ctx context.Context, code string) (*models.Incident, error) {
	vehicle, err := s.vehicles.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service: could not get vehicle: %w", err)
	}
	if vehicle.AssignedIncidentID == nil {
		return nil, nil
	}
	incident, err := s.incidents.GetByID(ctx, *vehicle.AssignedIncidentID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get assigned incident: %w", err)
	}
	// Завершенный инцидент держит машину до её возврата в пул, но активным уже не считается
	if !incident.Status.IsActive() {
		return nil, nil
	}
	return incident, nil
}

// GetVehicleHistory возвращает завершенные инциденты машины, новые сначала
func (s *dispatchService) GetVehicleHistory(ctx context.Context, code string) ([]*models.Incident, error) {
	vehicle, err := s.vehicles.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service: could not get vehicle: %w", err)
	}
	incidents, err := s.incidents.ListByVehicle(ctx, vehicle.ID, models.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("service: could not list vehicle incidents: %w", err)
	}
	return incidents, nil
}
