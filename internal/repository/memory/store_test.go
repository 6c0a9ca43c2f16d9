package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/seed"
	"github.com/shenikar/emergency_dispatch/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Seed(seed.Vehicles(), seed.Hospitals()))
	return s
}

func reported(t *testing.T, s *Store, incidentType models.IncidentType) *models.Incident {
	t.Helper()
	i := &models.Incident{
		Type:          incidentType,
		Location:      models.Point{Lon: 77.72, Lat: 8.73},
		SeverityScore: models.SeverityFor(incidentType),
		Status:        models.StatusReported,
	}
	require.NoError(t, s.Incidents().Create(context.Background(), i))
	return i
}

func TestAssignVehicle_SecondClaimLoses(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)
	ambulance, err := s.Vehicles().GetByCode(ctx, "A001")
	require.NoError(t, err)

	first := reported(t, s, models.IncidentMedical)
	second := reported(t, s, models.IncidentMedical)

	require.NoError(t, s.Incidents().AssignVehicle(ctx, models.Assignment{
		IncidentID: first.ID, VehicleID: ambulance.ID, ETA: 4, Origin: ambulance.CurrentLocation, At: time.Now(),
	}))
	err = s.Incidents().AssignVehicle(ctx, models.Assignment{
		IncidentID: second.ID, VehicleID: ambulance.ID, ETA: 4, Origin: ambulance.CurrentLocation, At: time.Now(),
	})
	assert.ErrorIs(t, err, service.ErrVehicleUnavailable)

	got, err := s.Incidents().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnRoute, got.Status)
	require.NotNil(t, got.AssignedVehicle)
	assert.Equal(t, "A001", got.AssignedVehicle.Code)
	assert.Equal(t, models.VehicleEnRoute, got.AssignedVehicle.Status)

	untouched, err := s.Incidents().GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReported, untouched.Status)
	assert.Nil(t, untouched.AssignedVehicleID)

	available, err := s.Vehicles().ListAvailableByType(ctx, models.VehicleAmbulance)
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestTransitionStatus_IsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)
	i := reported(t, s, models.IncidentFire)

	ok, err := s.Incidents().TransitionStatus(ctx, i.ID, models.StatusEnRoute, models.StatusArrived, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Incidents().TransitionStatus(ctx, i.ID, models.StatusReported, models.StatusCancelled, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Incidents().TransitionStatus(ctx, uuid.New(), models.StatusReported, models.StatusCancelled, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRelease_IgnoresForeignIncident(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)
	police, err := s.Vehicles().GetByCode(ctx, "P101")
	require.NoError(t, err)
	i := reported(t, s, models.IncidentPolice)
	require.NoError(t, s.Incidents().AssignVehicle(ctx, models.Assignment{
		IncidentID: i.ID, VehicleID: police.ID, At: time.Now(),
	}))

	v, err := s.Vehicles().Release(ctx, police.ID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = s.Vehicles().Release(ctx, police.ID, i.ID)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, models.VehicleAvailable, v.Status)
	assert.Nil(t, v.AssignedIncidentID)
}

func TestList_OrdersBySeverityThenRecency(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)
	police := reported(t, s, "Theft")
	time.Sleep(time.Millisecond)
	fireOld := reported(t, s, models.IncidentFire)
	time.Sleep(time.Millisecond)
	fireNew := reported(t, s, models.IncidentFire)

	list, err := s.Incidents().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uuid.UUID{fireNew.ID, fireOld.ID, police.ID}, []uuid.UUID{list[0].ID, list[1].ID, list[2].ID})
}

func TestFeedback_OnePerIncident(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)
	i := reported(t, s, models.IncidentMedical)

	require.NoError(t, s.Feedback().Create(ctx, &models.Feedback{IncidentID: i.ID, Rating: 5}))
	err := s.Feedback().Create(ctx, &models.Feedback{IncidentID: i.ID, Rating: 1})
	assert.ErrorIs(t, err, service.ErrFeedbackExists)

	err = s.Feedback().Create(ctx, &models.Feedback{IncidentID: uuid.New(), Rating: 3})
	assert.ErrorIs(t, err, service.ErrIncidentNotFound)

	list, err := s.Feedback().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Rating)
}

func TestCompareAndSetStatus_RefusesAssignedVehicle(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	ok, err := s.Vehicles().CompareAndSetStatus(ctx, "F501", models.VehicleAvailable, models.VehicleInMaintenance)
	require.NoError(t, err)
	assert.True(t, ok)

	available, err := s.Vehicles().ListAvailableByType(ctx, models.VehicleFireService)
	require.NoError(t, err)
	assert.Empty(t, available)

	_, err = s.Vehicles().CompareAndSetStatus(ctx, "X999", models.VehicleAvailable, models.VehicleInMaintenance)
	assert.ErrorIs(t, err, service.ErrVehicleNotFound)
}

func TestSeed_RejectsDuplicateCode(t *testing.T) {
	s := newSeededStore(t)
	err := s.Seed([]*models.Vehicle{{Code: "A001", Type: models.VehicleAmbulance}}, nil)
	assert.Error(t, err)
}
