// Package metrics публикует метрики диспетчеризации в Prometheus.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shenikar/emergency_dispatch/internal/models"
)

// Recorder реализует service.MetricsRecorder
type Recorder struct {
	incidents   *prometheus.CounterVec
	assignments *prometheus.CounterVec
	eta         *prometheus.HistogramVec
	noVehicle   *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	stale       *prometheus.CounterVec
	released    *prometheus.CounterVec
}

// New регистрирует метрики в reg (по умолчанию prometheus.DefaultRegisterer).
// Уже зарегистрированные коллекторы переиспользуются.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		incidents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_incidents_reported_total",
			Help: "Total number of reported incidents",
		}, []string{"type"}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_vehicle_assignments_total",
			Help: "Total number of vehicles assigned to incidents",
		}, []string{"vehicle_type"}),
		eta: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatch_assignment_eta_minutes",
			Help:    "Estimated arrival time of assigned vehicles",
			Buckets: []float64{2, 5, 10, 15, 20, 30, 45, 60},
		}, []string{"vehicle_type"}),
		noVehicle: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_no_vehicle_available_total",
			Help: "Incidents left without an available vehicle",
		}, []string{"vehicle_type"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_allocation_conflicts_total",
			Help: "Vehicle claims lost to a concurrent allocation",
		}, []string{"vehicle_type"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_incident_transitions_total",
			Help: "Incident status transitions",
		}, []string{"status"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_stale_transitions_total",
			Help: "Timer-driven transitions skipped because the state had moved on",
		}, []string{"task"}),
		released: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_vehicles_released_total",
			Help: "Vehicles returned to the available pool",
		}, []string{"vehicle_type"}),
	}

	var err error
	if r.incidents, err = register(reg, r.incidents); err != nil {
		return nil, err
	}
	if r.assignments, err = register(reg, r.assignments); err != nil {
		return nil, err
	}
	if r.eta, err = register(reg, r.eta); err != nil {
		return nil, err
	}
	if r.noVehicle, err = register(reg, r.noVehicle); err != nil {
		return nil, err
	}
	if r.conflicts, err = register(reg, r.conflicts); err != nil {
		return nil, err
	}
	if r.transitions, err = register(reg, r.transitions); err != nil {
		return nil, err
	}
	if r.stale, err = register(reg, r.stale); err != nil {
		return nil, err
	}
	if r.released, err = register(reg, r.released); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (r *Recorder) IncidentReported(t models.IncidentType) {
	r.incidents.WithLabelValues(string(t)).Inc()
}

func (r *Recorder) VehicleAssigned(t models.VehicleType, etaMinutes float64) {
	r.assignments.WithLabelValues(string(t)).Inc()
	r.eta.WithLabelValues(string(t)).Observe(etaMinutes)
}

func (r *Recorder) NoVehicleAvailable(t models.VehicleType) {
	r.noVehicle.WithLabelValues(string(t)).Inc()
}

func (r *Recorder) AllocationConflict(t models.VehicleType) {
	r.conflicts.WithLabelValues(string(t)).Inc()
}

func (r *Recorder) IncidentTransition(s models.IncidentStatus) {
	r.transitions.WithLabelValues(string(s)).Inc()
}

func (r *Recorder) StaleTransition(task string) {
	r.stale.WithLabelValues(task).Inc()
}

func (r *Recorder) VehicleReleased(t models.VehicleType) {
	r.released.WithLabelValues(string(t)).Inc()
}
