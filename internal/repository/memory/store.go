// Package memory - хранилище в памяти процесса для STORE=memory и тестов.
// Все репозитории разделяют один мьютекс, поэтому назначение машины атомарно
// так же, как транзакция в postgres.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

type Store struct {
	mu        sync.RWMutex
	incidents map[uuid.UUID]*models.Incident
	vehicles  map[uuid.UUID]*models.Vehicle
	hospitals []*models.Hospital
	feedback  map[uuid.UUID]*models.Feedback
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		incidents: make(map[uuid.UUID]*models.Incident),
		vehicles:  make(map[uuid.UUID]*models.Vehicle),
		feedback:  make(map[uuid.UUID]*models.Feedback),
		now:       time.Now,
	}
}

// Seed добавляет машины и больницы; ID и метки времени заполняются при необходимости
func (s *Store) Seed(vehicles []*models.Vehicle, hospitals []*models.Hospital) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, v := range vehicles {
		for _, existing := range s.vehicles {
			if existing.Code == v.Code {
				return fmt.Errorf("vehicle %s already exists", v.Code)
			}
		}
		c := cloneVehicle(v)
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if c.Status == "" {
			c.Status = models.VehicleAvailable
		}
		c.CreatedAt, c.UpdatedAt = now, now
		s.vehicles[c.ID] = c
	}
	for _, h := range hospitals {
		c := *h
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		s.hospitals = append(s.hospitals, &c)
	}
	return nil
}

func (s *Store) Incidents() service.IncidentRepository { return incidentRepo{s} }
func (s *Store) Vehicles() service.VehicleRepository   { return vehicleRepo{s} }
func (s *Store) Hospitals() service.HospitalRepository { return hospitalRepo{s} }
func (s *Store) Feedback() service.FeedbackRepository  { return feedbackRepo{s} }

func cloneVehicle(v *models.Vehicle) *models.Vehicle {
	c := *v
	if v.AssignedIncidentID != nil {
		id := *v.AssignedIncidentID
		c.AssignedIncidentID = &id
	}
	return &c
}

// cloneIncident копирует инцидент и подставляет текущее состояние машины. Вызывать под s.mu.
func (s *Store) cloneIncident(i *models.Incident) *models.Incident {
	c := *i
	if i.AssignedVehicleID != nil {
		id := *i.AssignedVehicleID
		c.AssignedVehicleID = &id
		if v, ok := s.vehicles[id]; ok {
			c.AssignedVehicle = cloneVehicle(v)
		}
	}
	if i.SuggestedHospital != nil {
		h := *i.SuggestedHospital
		c.SuggestedHospital = &h
	}
	if i.InitialETA != nil {
		eta := *i.InitialETA
		c.InitialETA = &eta
	}
	if i.DispatchOrigin != nil {
		p := *i.DispatchOrigin
		c.DispatchOrigin = &p
	}
	c.DispatchedAt = cloneTime(i.DispatchedAt)
	c.ArrivedAt = cloneTime(i.ArrivedAt)
	c.CompletedAt = cloneTime(i.CompletedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

type incidentRepo struct{ s *Store }

func (r incidentRepo) Create(_ context.Context, incident *models.Incident) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	incident.ID = uuid.New()
	incident.CreatedAt, incident.UpdatedAt = now, now
	stored := r.s.cloneIncident(incident)
	stored.AssignedVehicle = nil
	r.s.incidents[incident.ID] = stored
	return nil
}

func (r incidentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Incident, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i, ok := r.s.incidents[id]
	if !ok {
		return nil, fmt.Errorf("incident with id %s: %w", id, service.ErrIncidentNotFound)
	}
	return r.s.cloneIncident(i), nil
}

func (r incidentRepo) List(_ context.Context) ([]*models.Incident, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]*models.Incident, 0, len(r.s.incidents))
	for _, i := range r.s.incidents {
		list = append(list, r.s.cloneIncident(i))
	}
	sort.Slice(list, func(a, b int) bool {
		if list[a].SeverityScore != list[b].SeverityScore {
			return list[a].SeverityScore > list[b].SeverityScore
		}
		return list[a].CreatedAt.After(list[b].CreatedAt)
	})
	return list, nil
}

func (r incidentRepo) ListByVehicle(_ context.Context, vehicleID uuid.UUID, statuses ...models.IncidentStatus) ([]*models.Incident, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]*models.Incident, 0)
	for _, i := range r.s.incidents {
		if i.AssignedVehicleID == nil || *i.AssignedVehicleID != vehicleID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, i.Status) {
			continue
		}
		list = append(list, r.s.cloneIncident(i))
	}
	sort.Slice(list, func(a, b int) bool { return list[a].CreatedAt.After(list[b].CreatedAt) })
	return list, nil
}

func containsStatus(list []models.IncidentStatus, s models.IncidentStatus) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func (r incidentRepo) AssignVehicle(_ context.Context, a models.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.vehicles[a.VehicleID]
	if !ok || v.Status != models.VehicleAvailable || v.AssignedIncidentID != nil {
		return fmt.Errorf("vehicle %s: %w", a.VehicleID, service.ErrVehicleUnavailable)
	}
	i, ok := r.s.incidents[a.IncidentID]
	if !ok {
		return fmt.Errorf("incident with id %s: %w", a.IncidentID, service.ErrIncidentNotFound)
	}
	if i.Status != models.StatusReported {
		return fmt.Errorf("incident %s is no longer reported: %w", a.IncidentID, service.ErrInvalidTransition)
	}

	incidentID, vehicleID := a.IncidentID, a.VehicleID
	eta, origin, at := a.ETA, a.Origin, a.At

	v.Status = models.VehicleEnRoute
	v.AssignedIncidentID = &incidentID
	v.UpdatedAt = at

	i.Status = models.StatusEnRoute
	i.AssignedVehicleID = &vehicleID
	i.InitialETA = &eta
	i.DispatchOrigin = &origin
	i.DispatchedAt = &at
	i.UpdatedAt = at
	return nil
}

func (r incidentRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to models.IncidentStatus, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i, ok := r.s.incidents[id]
	if !ok || i.Status != from {
		return false, nil
	}
	i.Status = to
	i.UpdatedAt = at
	switch to {
	case models.StatusArrived:
		i.ArrivedAt = &at
	case models.StatusCompleted:
		i.CompletedAt = &at
	}
	return true, nil
}

type vehicleRepo struct{ s *Store }

func (r vehicleRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Vehicle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("vehicle with id %s: %w", id, service.ErrVehicleNotFound)
	}
	return cloneVehicle(v), nil
}

// byCode ищет машину по коду. Вызывать под s.mu.
func (r vehicleRepo) byCode(code string) (*models.Vehicle, error) {
	for _, v := range r.s.vehicles {
		if v.Code == code {
			return v, nil
		}
	}
	return nil, fmt.Errorf("vehicle %s: %w", code, service.ErrVehicleNotFound)
}

func (r vehicleRepo) GetByCode(_ context.Context, code string) (*models.Vehicle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, err := r.byCode(code)
	if err != nil {
		return nil, err
	}
	return cloneVehicle(v), nil
}

func (r vehicleRepo) list(keep func(*models.Vehicle) bool) []*models.Vehicle {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]*models.Vehicle, 0, len(r.s.vehicles))
	for _, v := range r.s.vehicles {
		if keep(v) {
			list = append(list, cloneVehicle(v))
		}
	}
	sort.Slice(list, func(a, b int) bool { return list[a].Code < list[b].Code })
	return list
}

func (r vehicleRepo) List(_ context.Context) ([]*models.Vehicle, error) {
	return r.list(func(*models.Vehicle) bool { return true }), nil
}

func (r vehicleRepo) ListAvailableByType(_ context.Context, vehicleType models.VehicleType) ([]*models.Vehicle, error) {
	return r.list(func(v *models.Vehicle) bool {
		return v.Type == vehicleType && v.Status == models.VehicleAvailable && v.AssignedIncidentID == nil
	}), nil
}

func (r vehicleRepo) UpdateLocation(_ context.Context, code string, location models.Point) (*models.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, err := r.byCode(code)
	if err != nil {
		return nil, err
	}
	v.CurrentLocation = location
	v.UpdatedAt = r.s.now()
	return cloneVehicle(v), nil
}

func (r vehicleRepo) SetStatusForIncident(_ context.Context, vehicleID, incidentID uuid.UUID, status models.VehicleStatus, location *models.Point) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.vehicles[vehicleID]
	if !ok || v.AssignedIncidentID == nil || *v.AssignedIncidentID != incidentID {
		return false, nil
	}
	v.Status = status
	if location != nil {
		v.CurrentLocation = *location
	}
	v.UpdatedAt = r.s.now()
	return true, nil
}

func (r vehicleRepo) Release(_ context.Context, vehicleID, incidentID uuid.UUID) (*models.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.vehicles[vehicleID]
	if !ok || v.AssignedIncidentID == nil || *v.AssignedIncidentID != incidentID {
		return nil, nil
	}
	v.Status = models.VehicleAvailable
	v.AssignedIncidentID = nil
	v.UpdatedAt = r.s.now()
	return cloneVehicle(v), nil
}

func (r vehicleRepo) CompareAndSetStatus(_ context.Context, code string, from, to models.VehicleStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, err := r.byCode(code)
	if err != nil {
		return false, err
	}
	if v.Status != from || v.AssignedIncidentID != nil {
		return false, nil
	}
	v.Status = to
	v.UpdatedAt = r.s.now()
	return true, nil
}

type hospitalRepo struct{ s *Store }

func (r hospitalRepo) List(_ context.Context) ([]*models.Hospital, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]*models.Hospital, 0, len(r.s.hospitals))
	for _, h := range r.s.hospitals {
		c := *h
		list = append(list, &c)
	}
	return list, nil
}

type feedbackRepo struct{ s *Store }

func (r feedbackRepo) Create(_ context.Context, feedback *models.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.incidents[feedback.IncidentID]; !ok {
		return fmt.Errorf("incident %s: %w", feedback.IncidentID, service.ErrIncidentNotFound)
	}
	if _, ok := r.s.feedback[feedback.IncidentID]; ok {
		return fmt.Errorf("incident %s: %w", feedback.IncidentID, service.ErrFeedbackExists)
	}
	feedback.ID = uuid.New()
	feedback.SubmittedAt = r.s.now()
	c := *feedback
	r.s.feedback[feedback.IncidentID] = &c
	return nil
}

func (r feedbackRepo) List(_ context.Context) ([]*models.Feedback, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]*models.Feedback, 0, len(r.s.feedback))
	for _, f := range r.s.feedback {
		c := *f
		list = append(list, &c)
	}
	sort.Slice(list, func(a, b int) bool { return list[a].SubmittedAt.After(list[b].SubmittedAt) })
	return list, nil
}
