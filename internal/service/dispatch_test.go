package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/config"
	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/scheduler"
	"github.com/shenikar/emergency_dispatch/internal/service/mocks"
	voice_mocks "github.com/shenikar/emergency_dispatch/internal/voice/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testDeps struct {
	incidents *mocks.MockIncidentRepository
	vehicles  *mocks.MockVehicleRepository
	hospitals *mocks.MockHospitalRepository
	cache     *mocks.MockIncidentCache
	events    *mocks.MockEventPublisher
	tasks     *mocks.MockTaskScheduler
	metrics   *mocks.MockMetricsRecorder
	voice     *voice_mocks.MockDispatcher
}

var fixedNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		SpeedFactor:              2,
		CongestionRadiusKm:       1,
		ETATimeScale:             time.Minute,
		SceneClearanceDelay:      time.Minute,
		VehicleAvailabilityDelay: 3 * time.Minute,
	}
}

// newTestDispatchService создает сервис с моками. Метрики - мок только при withMetrics.
func newTestDispatchService(t *testing.T, withMetrics bool) (*dispatchService, *testDeps) {
	ctrl := gomock.NewController(t)
	d := &testDeps{
		incidents: mocks.NewMockIncidentRepository(ctrl),
		vehicles:  mocks.NewMockVehicleRepository(ctrl),
		hospitals: mocks.NewMockHospitalRepository(ctrl),
		cache:     mocks.NewMockIncidentCache(ctrl),
		events:    mocks.NewMockEventPublisher(ctrl),
		tasks:     mocks.NewMockTaskScheduler(ctrl),
		voice:     voice_mocks.NewMockDispatcher(ctrl),
	}
	deps := Dependencies{
		Incidents: d.incidents,
		Vehicles:  d.vehicles,
		Hospitals: d.hospitals,
		Cache:     d.cache,
		Events:    d.events,
		Voice:     d.voice,
		Tasks:     d.tasks,
	}
	if withMetrics {
		d.metrics = mocks.NewMockMetricsRecorder(ctrl)
		deps.Metrics = d.metrics
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	s := newDispatchService(deps, logger, testConfig())
	s.now = func() time.Time { return fixedNow }
	return s, d
}

func TestReportIncident_InvalidLocation(t *testing.T) {
	s, _ := newTestDispatchService(t, false)

	_, err := s.ReportIncident(context.Background(), models.SOSReport{
		Type:     models.IncidentFire,
		Location: models.Point{Lon: 200, Lat: 8.7},
	})

	assert.ErrorIs(t, err, ErrInvalidLocation)
}

func TestReportIncident_NoVehicleAvailable(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	incidentID := uuid.New()

	d.incidents.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, i *models.Incident) error {
			assert.Equal(t, models.StatusReported, i.Status)
			assert.Equal(t, 0.9, i.SeverityScore)
			i.ID = incidentID
			return nil
		})
	d.vehicles.EXPECT().ListAvailableByType(gomock.Any(), models.VehicleFireService).Return([]*models.Vehicle{}, nil)
	d.incidents.EXPECT().
		TransitionStatus(gomock.Any(), incidentID, models.StatusReported, models.StatusNoVehicleAvailable, fixedNow).
		Return(true, nil)

	incident, err := s.ReportIncident(context.Background(), models.SOSReport{
		Type:     models.IncidentFire,
		Location: models.Point{Lon: 77.72, Lat: 8.73},
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusNoVehicleAvailable, incident.Status)
	assert.Nil(t, incident.AssignedVehicleID)
}

func TestReportIncident_AssignsNearestAndSurvivesVoiceFailure(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	incidentID := uuid.New()
	scene := models.Point{Lon: 77.72, Lat: 8.80}
	near := &models.Vehicle{ID: uuid.New(), Code: "A002", Type: models.VehicleAmbulance, Status: models.VehicleAvailable,
		CurrentLocation: models.Point{Lon: 77.72, Lat: 8.79}, DriverName: "Ravi", ContactNumber: "+910000000009"}
	far := &models.Vehicle{ID: uuid.New(), Code: "A001", Type: models.VehicleAmbulance, Status: models.VehicleAvailable,
		CurrentLocation: models.Point{Lon: 77.72, Lat: 8.70}}
	hospital := &models.Hospital{ID: uuid.New(), Name: "City Hospital", Location: models.Point{Lon: 77.73, Lat: 8.80}}
	expectedETA := geo.DistanceKm(scene, near.CurrentLocation) * 2

	d.hospitals.EXPECT().List(gomock.Any()).Return([]*models.Hospital{hospital}, nil)
	d.incidents.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, i *models.Incident) error {
			i.ID = incidentID
			return nil
		})
	d.vehicles.EXPECT().ListAvailableByType(gomock.Any(), models.VehicleAmbulance).Return([]*models.Vehicle{far, near}, nil)
	d.incidents.EXPECT().AssignVehicle(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a models.Assignment) error {
			assert.Equal(t, near.ID, a.VehicleID)
			assert.Equal(t, incidentID, a.IncidentID)
			assert.Equal(t, near.CurrentLocation, a.Origin)
			return nil
		})
	d.events.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e models.LifecycleEvent) error {
			assert.Equal(t, models.EventVehicleAssigned, e.Type)
			assert.Equal(t, "A002", e.VehicleCode)
			return nil
		})
	d.voice.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(errors.New("twilio unavailable"))
	d.tasks.EXPECT().Schedule(arriveKey(incidentID), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ string, delay time.Duration, _ scheduler.Task) bool {
			assert.InDelta(t, expectedETA*float64(time.Minute), float64(delay), float64(time.Millisecond))
			return true
		})

	incident, err := s.ReportIncident(context.Background(), models.SOSReport{Type: models.IncidentMedical, Location: scene})

	require.NoError(t, err)
	assert.Equal(t, models.StatusEnRoute, incident.Status)
	require.NotNil(t, incident.AssignedVehicleID)
	assert.Equal(t, near.ID, *incident.AssignedVehicleID)
	require.NotNil(t, incident.InitialETA)
	assert.InDelta(t, expectedETA, *incident.InitialETA, 1e-9)
	require.NotNil(t, incident.SuggestedHospital)
	assert.Equal(t, "City Hospital", incident.SuggestedHospital.Name)
}

func TestReportIncident_SkipsVehicleLostToConcurrentClaim(t *testing.T) {
	s, d := newTestDispatchService(t, true)
	incidentID := uuid.New()
	first := &models.Vehicle{ID: uuid.New(), Code: "P101", Type: models.VehiclePolice, CurrentLocation: models.Point{Lon: 77.72, Lat: 8.79}}
	second := &models.Vehicle{ID: uuid.New(), Code: "P102", Type: models.VehiclePolice, CurrentLocation: models.Point{Lon: 77.72, Lat: 8.77}}

	d.metrics.EXPECT().IncidentReported(models.IncidentType("Theft"))
	d.incidents.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, i *models.Incident) error {
			i.ID = incidentID
			return nil
		})
	d.vehicles.EXPECT().ListAvailableByType(gomock.Any(), models.VehiclePolice).Return([]*models.Vehicle{first, second}, nil)
	gomock.InOrder(
		d.incidents.EXPECT().AssignVehicle(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("vehicle %s: %w", first.ID, ErrVehicleUnavailable)),
		d.incidents.EXPECT().AssignVehicle(gomock.Any(), gomock.Any()).Return(nil),
	)
	d.metrics.EXPECT().AllocationConflict(models.VehiclePolice)
	d.metrics.EXPECT().VehicleAssigned(models.VehiclePolice, gomock.Any())
	d.metrics.EXPECT().IncidentTransition(models.StatusEnRoute)
	d.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	d.voice.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(nil)
	d.tasks.EXPECT().Schedule(arriveKey(incidentID), gomock.Any(), gomock.Any()).Return(true)

	incident, err := s.ReportIncident(context.Background(), models.SOSReport{
		Type:     "Theft",
		Location: models.Point{Lon: 77.72, Lat: 8.80},
	})

	require.NoError(t, err)
	assert.Equal(t, 0.6, incident.SeverityScore)
	require.NotNil(t, incident.AssignedVehicle)
	assert.Equal(t, "P102", incident.AssignedVehicle.Code)
	assert.Equal(t, models.VehicleEnRoute, incident.AssignedVehicle.Status)
}

func TestGetIncident_CacheHit(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	id := uuid.New()
	cached := &models.Incident{ID: id, Status: models.StatusArrived}

	d.cache.EXPECT().GetIncident(gomock.Any(), id).Return(cached, nil)

	incident, err := s.GetIncident(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, cached, incident)
}

func TestGetIncident_CacheMissFillsCache(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	id := uuid.New()
	stored := &models.Incident{ID: id, Status: models.StatusCompleted}

	d.cache.EXPECT().GetIncident(gomock.Any(), id).Return(nil, nil)
	d.incidents.EXPECT().GetByID(gomock.Any(), id).Return(stored, nil)
	d.cache.EXPECT().SetIncident(gomock.Any(), stored).Return(errors.New("redis down"))

	incident, err := s.GetIncident(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, stored, incident)
}

func TestGetIncident_ActiveIncidentIsNotCached(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	id := uuid.New()

	for _, status := range []models.IncidentStatus{models.StatusReported, models.StatusEnRoute, models.StatusArrived} {
		stored := &models.Incident{ID: id, Status: status}
		d.cache.EXPECT().GetIncident(gomock.Any(), id).Return(nil, nil)
		d.incidents.EXPECT().GetByID(gomock.Any(), id).Return(stored, nil)

		incident, err := s.GetIncident(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, status, incident.Status)
	}
}

func TestGetIncident_NotFound(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	id := uuid.New()

	d.cache.EXPECT().GetIncident(gomock.Any(), id).Return(nil, nil)
	d.incidents.EXPECT().GetByID(gomock.Any(), id).Return(nil, fmt.Errorf("incident with id %s: %w", id, ErrIncidentNotFound))

	_, err := s.GetIncident(context.Background(), id)
	assert.ErrorIs(t, err, ErrIncidentNotFound)
}

func TestUpdateIncidentStatus_RejectsInvalidTransition(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	id := uuid.New()

	d.incidents.EXPECT().GetByID(gomock.Any(), id).Return(&models.Incident{ID: id, Status: models.StatusCompleted}, nil)

	_, err := s.UpdateIncidentStatus(context.Background(), id, models.StatusArrived)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateIncidentStatus_AllocatorOnlyStatuses(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	id := uuid.New()

	d.incidents.EXPECT().GetByID(gomock.Any(), id).Return(&models.Incident{ID: id, Status: models.StatusReported}, nil)

	_, err := s.UpdateIncidentStatus(context.Background(), id, models.StatusEnRoute)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.UpdateIncidentStatus(context.Background(), id, "Teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateIncidentStatus_CancelReleasesVehicle(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	id, vehicleID := uuid.New(), uuid.New()
	enRoute := &models.Incident{ID: id, Status: models.StatusEnRoute, AssignedVehicleID: &vehicleID}
	cancelled := &models.Incident{ID: id, Status: models.StatusCancelled, AssignedVehicleID: &vehicleID}
	released := &models.Vehicle{ID: vehicleID, Code: "A001", Type: models.VehicleAmbulance, Status: models.VehicleAvailable}

	d.incidents.EXPECT().GetByID(gomock.Any(), id).Return(enRoute, nil)
	d.incidents.EXPECT().TransitionStatus(gomock.Any(), id, models.StatusEnRoute, models.StatusCancelled, fixedNow).Return(true, nil)
	d.tasks.EXPECT().Cancel(arriveKey(id)).Return(true)
	d.tasks.EXPECT().Cancel(completeKey(id)).Return(false)
	d.tasks.EXPECT().Cancel(releaseKey(vehicleID)).Return(false)
	d.cache.EXPECT().InvalidateIncident(gomock.Any(), id).Return(nil).Times(2)
	d.vehicles.EXPECT().Release(gomock.Any(), vehicleID, id).Return(released, nil)
	gomock.InOrder(
		d.events.EXPECT().Publish(gomock.Any(), eventOfType(models.EventIncidentCancelled)).Return(nil),
		d.events.EXPECT().Publish(gomock.Any(), eventOfType(models.EventVehicleAvailable)).Return(nil),
	)
	d.incidents.EXPECT().GetByID(gomock.Any(), id).Return(cancelled, nil)

	incident, err := s.UpdateIncidentStatus(context.Background(), id, models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, incident.Status)
}

func TestArrive_StaleTimerIsSkipped(t *testing.T) {
	s, d := newTestDispatchService(t, true)
	id, vehicleID := uuid.New(), uuid.New()

	d.incidents.EXPECT().TransitionStatus(gomock.Any(), id, models.StatusEnRoute, models.StatusArrived, fixedNow).Return(false, nil)
	d.metrics.EXPECT().StaleTransition("arrive")

	s.incidentLifecycle.arrive(context.Background(), id, vehicleID, models.Point{Lon: 77.7, Lat: 8.7})
}

func TestArrive_MovesVehicleOnSceneAndSchedulesCompletion(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	id, vehicleID := uuid.New(), uuid.New()
	scene := models.Point{Lon: 77.71, Lat: 8.72}

	d.incidents.EXPECT().TransitionStatus(gomock.Any(), id, models.StatusEnRoute, models.StatusArrived, fixedNow).Return(true, nil)
	d.cache.EXPECT().InvalidateIncident(gomock.Any(), id).Return(nil)
	d.vehicles.EXPECT().SetStatusForIncident(gomock.Any(), vehicleID, id, models.VehicleOnScene, &scene).Return(true, nil)
	d.events.EXPECT().Publish(gomock.Any(), eventOfType(models.EventIncidentArrived)).Return(nil)
	d.tasks.EXPECT().Schedule(completeKey(id), time.Minute, gomock.Any()).Return(true)

	s.incidentLifecycle.arrive(context.Background(), id, vehicleID, scene)
}

func TestComplete_SchedulesVehicleRelease(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	id, vehicleID := uuid.New(), uuid.New()

	d.incidents.EXPECT().TransitionStatus(gomock.Any(), id, models.StatusArrived, models.StatusCompleted, fixedNow).Return(true, nil)
	d.cache.EXPECT().InvalidateIncident(gomock.Any(), id).Return(nil)
	d.events.EXPECT().Publish(gomock.Any(), eventOfType(models.EventIncidentCompleted)).Return(errors.New("nobody listening"))
	d.tasks.EXPECT().Schedule(releaseKey(vehicleID), 3*time.Minute, gomock.Any()).Return(true)

	s.incidentLifecycle.complete(context.Background(), id, vehicleID)
}

func TestRelease_InvalidatesIncidentCache(t *testing.T) {
	s, d := newTestDispatchService(t, true)
	id, vehicleID := uuid.New(), uuid.New()
	released := &models.Vehicle{ID: vehicleID, Code: "F201", Type: models.VehicleFireService, Status: models.VehicleAvailable}

	d.vehicles.EXPECT().Release(gomock.Any(), vehicleID, id).Return(released, nil)
	d.metrics.EXPECT().VehicleReleased(models.VehicleFireService)
	d.cache.EXPECT().InvalidateIncident(gomock.Any(), id).Return(errors.New("redis down"))
	d.events.EXPECT().Publish(gomock.Any(), eventOfType(models.EventVehicleAvailable)).Return(nil)

	s.vehicleLifecycle.release(context.Background(), vehicleID, id)
}

func TestRelease_StaleReleaseKeepsCache(t *testing.T) {
	s, d := newTestDispatchService(t, true)
	id, vehicleID := uuid.New(), uuid.New()

	d.vehicles.EXPECT().Release(gomock.Any(), vehicleID, id).Return(nil, nil)
	d.metrics.EXPECT().StaleTransition("release")

	s.vehicleLifecycle.release(context.Background(), vehicleID, id)
}

func TestGetActiveIncidentForVehicle(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	incidentID := uuid.New()
	bound := &models.Vehicle{ID: uuid.New(), Code: "P101", Status: models.VehicleOnScene, AssignedIncidentID: &incidentID}

	d.vehicles.EXPECT().GetByCode(gomock.Any(), "P101").Return(bound, nil).Times(2)
	gomock.InOrder(
		d.incidents.EXPECT().GetByID(gomock.Any(), incidentID).Return(&models.Incident{ID: incidentID, Status: models.StatusArrived}, nil),
		d.incidents.EXPECT().GetByID(gomock.Any(), incidentID).Return(&models.Incident{ID: incidentID, Status: models.StatusCompleted}, nil),
	)

	active, err := s.GetActiveIncidentForVehicle(context.Background(), "P101")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, incidentID, active.ID)

	// Инцидент завершен, машина ещё не вернулась в пул
	active, err = s.GetActiveIncidentForVehicle(context.Background(), "P101")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestGetActiveIncidentForVehicle_FreeVehicle(t *testing.T) {
	s, d := newTestDispatchService(t, false)

	d.vehicles.EXPECT().GetByCode(gomock.Any(), "A001").Return(&models.Vehicle{Code: "A001", Status: models.VehicleAvailable}, nil)

	active, err := s.GetActiveIncidentForVehicle(context.Background(), "A001")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestUpdateVehicleStatus_RefusesAssignedVehicle(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	incidentID := uuid.New()

	d.vehicles.EXPECT().GetByCode(gomock.Any(), "A001").Return(&models.Vehicle{
		Code: "A001", Status: models.VehicleEnRoute, AssignedIncidentID: &incidentID,
	}, nil)

	_, err := s.UpdateVehicleStatus(context.Background(), "A001", models.VehicleInMaintenance)
	assert.ErrorIs(t, err, ErrVehicleBusy)

	_, err = s.UpdateVehicleStatus(context.Background(), "A001", models.VehicleOnScene)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateVehicleLocation_InvalidPoint(t *testing.T) {
	s, _ := newTestDispatchService(t, false)

	_, err := s.UpdateVehicleLocation(context.Background(), "A001", models.Point{Lon: 10, Lat: 95})
	assert.ErrorIs(t, err, ErrInvalidLocation)
}

func TestTrackIncident_InterpolatesEnRoute(t *testing.T) {
	s, d := newTestDispatchService(t, false)
	id, vehicleID := uuid.New(), uuid.New()
	origin := models.Point{Lon: 77.70, Lat: 8.70}
	eta := 10.0
	dispatchedAt := fixedNow.Add(-5 * time.Minute)

	d.incidents.EXPECT().GetByID(gomock.Any(), id).Return(&models.Incident{
		ID:                id,
		Location:          models.Point{Lon: 77.80, Lat: 8.70},
		Status:            models.StatusEnRoute,
		AssignedVehicleID: &vehicleID,
		AssignedVehicle:   &models.Vehicle{ID: vehicleID, Code: "F501"},
		InitialETA:        &eta,
		DispatchOrigin:    &origin,
		DispatchedAt:      &dispatchedAt,
	}, nil)

	tracking, err := s.TrackIncident(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "F501", tracking.VehicleCode)
	assert.InDelta(t, 0.5, tracking.Progress, 1e-9)
	assert.InDelta(t, 5.0, tracking.RemainingETA, 1e-9)
	require.NotNil(t, tracking.VehicleLocation)
	assert.InDelta(t, 77.75, tracking.VehicleLocation.Lon, 1e-9)
}

func TestSubmitFeedback_Duplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockFeedbackRepository(ctrl)
	incidents := mocks.NewMockIncidentRepository(ctrl)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	svc := NewFeedbackService(repo, incidents, logger)

	id := uuid.New()
	incidents.EXPECT().GetByID(gomock.Any(), id).Return(&models.Incident{ID: id}, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(fmt.Errorf("incident %s: %w", id, ErrFeedbackExists))

	err := svc.SubmitFeedback(context.Background(), &models.Feedback{IncidentID: id, Rating: 4})
	assert.ErrorIs(t, err, ErrFeedbackExists)

	err = svc.SubmitFeedback(context.Background(), &models.Feedback{IncidentID: id, Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidRating)
}

// eventOfType - матчер gomock по типу события
func eventOfType(t models.EventType) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		e, ok := x.(models.LifecycleEvent)
		return ok && e.Type == t
	})
}
