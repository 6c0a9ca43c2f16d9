package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/sirupsen/logrus"
)

// Allocation - результат успешного назначения
type Allocation struct {
	Vehicle *models.Vehicle
	ETA     float64
	Origin  models.Point
	At      time.Time
}

type candidate struct {
	vehicle *models.Vehicle
	eta     float64
}

type allocator struct {
	vehicles  VehicleRepository
	incidents IncidentRepository
	scorer    *geo.Scorer
	metrics   MetricsRecorder
	logger    *logrus.Logger
}

// rank сортирует кандидатов по ETA, при равенстве - по коду машины
func (a *allocator) rank(incident *models.Incident, vehicles []*models.Vehicle) []candidate {
	ranked := make([]candidate, 0, len(vehicles))
	for _, v := range vehicles {
		ranked = append(ranked, candidate{vehicle: v, eta: a.scorer.EstimateETA(incident.Location, v.CurrentLocation)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].eta != ranked[j].eta {
			return ranked[i].eta < ranked[j].eta
		}
		return ranked[i].vehicle.Code < ranked[j].vehicle.Code
	})
	return ranked
}

// Allocate выбирает свободную машину нужной категории с наименьшим ETA и атомарно
// закрепляет её за инцидентом. Если машину перехватил параллельный запрос, пробует
// следующую. nil без ошибки - свободных машин нет.
func (a *allocator) Allocate(ctx context.Context, incident *models.Incident, at time.Time) (*Allocation, error) {
	category := models.CategoryFor(incident.Type)
	log := a.logger.WithFields(logrus.Fields{
		"service":     "allocator",
		"incident_id": incident.ID,
		"category":    category,
	})

	available, err := a.vehicles.ListAvailableByType(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list available vehicles: %w", err)
	}
	if len(available) == 0 {
		a.metrics.NoVehicleAvailable(category)
		return nil, nil
	}

	for _, c := range a.rank(incident, available) {
		err := a.incidents.AssignVehicle(ctx, models.Assignment{
			IncidentID: incident.ID,
			VehicleID:  c.vehicle.ID,
			ETA:        c.eta,
			Origin:     c.vehicle.CurrentLocation,
			At:         at,
		})
		if errors.Is(err, ErrVehicleUnavailable) {
			log.WithField("vehicle_code", c.vehicle.Code).Debug("Vehicle claimed concurrently, trying next candidate")
			a.metrics.AllocationConflict(category)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("assign vehicle %s: %w", c.vehicle.Code, err)
		}

		claimed := *c.vehicle
		claimed.Status = models.VehicleEnRoute
		claimed.AssignedIncidentID = &incident.ID
		a.metrics.VehicleAssigned(category, c.eta)
		return &Allocation{Vehicle: &claimed, ETA: c.eta, Origin: c.vehicle.CurrentLocation, At: at}, nil
	}

	a.metrics.NoVehicleAvailable(category)
	return nil, nil
}
