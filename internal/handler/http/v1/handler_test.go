package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/config"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
	"github.com/shenikar/emergency_dispatch/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var apiKeyHeader = map[string]string{"X-API-Key": "test-api-key"}

func coord(v float64) *float64 { return &v }

// newTestHandler создает новый экземпляр Handler с мокированными сервисами
func newTestHandler(t *testing.T) (*mocks.MockDispatchService, *mocks.MockFeedbackService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockDispatch := mocks.NewMockDispatchService(ctrl)
	mockFeedback := mocks.NewMockFeedbackService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
	}

	stream := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := NewHandler(mockDispatch, mockFeedback, stream, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return mockDispatch, mockFeedback, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func enRouteIncident() *models.Incident {
	vehicleID := uuid.New()
	eta := 10.0
	return &models.Incident{
		ID:                uuid.New(),
		Type:              models.IncidentMedical,
		Location:          models.Point{Lon: 77.7010, Lat: 8.7291},
		SeverityScore:     0.8,
		Status:            models.StatusEnRoute,
		AssignedVehicleID: &vehicleID,
		AssignedVehicle: &models.Vehicle{
			ID:     vehicleID,
			Code:   "A001",
			Type:   models.VehicleAmbulance,
			Status: models.VehicleEnRoute,
		},
		SuggestedHospital: &models.HospitalSnapshot{
			Name:     "Tirunelveli Medical College Hospital",
			Location: models.Point{Lon: 77.7427, Lat: 8.7163},
		},
		InitialETA: &eta,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func TestReportSOS_Success(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)
	expected := enRouteIncident()

	mockDispatch.EXPECT().
		ReportIncident(gomock.Any(), models.SOSReport{
			Type:     models.IncidentMedical,
			Location: models.Point{Lon: 77.7010, Lat: 8.7291},
		}).
		Return(expected, nil).Times(1)

	w := makeRequest(router, "POST", "/api/v1/sos", jsonBody(t, SOSRequest{
		Type:      "Medical",
		Latitude:  coord(8.7291),
		Longitude: coord(77.7010),
	}))

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, expected.ID, resp.ID)
	assert.Equal(t, "En Route", resp.Status)
	require.NotNil(t, resp.AssignedVehicle)
	assert.Equal(t, "A001", resp.AssignedVehicle.Code)
	require.NotNil(t, resp.SuggestedHospital)
	assert.Equal(t, "Tirunelveli Medical College Hospital", resp.SuggestedHospital.Name)
	require.NotNil(t, resp.InitialETA)
	assert.InDelta(t, 10.0, *resp.InitialETA, 1e-9)
}

func TestReportSOS_NoVehicleAvailable(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)
	expected := &models.Incident{
		ID:            uuid.New(),
		Type:          models.IncidentFire,
		Location:      models.Point{Lon: 77.7, Lat: 8.7},
		SeverityScore: 0.9,
		Status:        models.StatusNoVehicleAvailable,
	}

	mockDispatch.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Return(expected, nil).Times(1)

	w := makeRequest(router, "POST", "/api/v1/sos", jsonBody(t, SOSRequest{Type: "Fire", Latitude: coord(8.7), Longitude: coord(77.7)}))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"No Vehicle Available"`)
	assert.NotContains(t, w.Body.String(), "assigned_vehicle")
}

func TestReportSOS_InvalidJSON(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/sos", bytes.NewBufferString(`{"type": "Fire"`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestReportSOS_ValidationError(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/sos", jsonBody(t, SOSRequest{Type: "Fire", Latitude: coord(95), Longitude: coord(77.7)}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Latitude' failed on the 'latitude' tag")
}

func TestReportSOS_AcceptsEquatorAndPrimeMeridian(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().
		ReportIncident(gomock.Any(), models.SOSReport{Type: models.IncidentPolice, Location: models.Point{Lon: 0, Lat: 0}}).
		Return(&models.Incident{ID: uuid.New(), Type: models.IncidentPolice, Status: models.StatusNoVehicleAvailable}, nil).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/sos", bytes.NewBufferString(`{"type":"Police","latitude":0,"longitude":0}`))

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestReportSOS_MissingCoordinates(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/sos", bytes.NewBufferString(`{"type":"Police","longitude":77.7}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Latitude' failed on the 'required' tag")
}

func TestReportSOS_ServiceError(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused")).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/sos", jsonBody(t, SOSRequest{Type: "Fire", Latitude: coord(8.7), Longitude: coord(77.7)}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestGetIncident_Success(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)
	expected := enRouteIncident()

	mockDispatch.EXPECT().GetIncident(gomock.Any(), expected.ID).Return(expected, nil).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s", expected.ID.String()), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, expected.ID, resp.ID)
	assert.Equal(t, "Medical", resp.Type)
	assert.InDelta(t, 8.7291, resp.Latitude, 1e-9)
}

func TestGetIncident_InvalidID(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().GetIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/incidents/invalid-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid incident ID")
}

func TestGetIncident_NotFound(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)
	incidentID := uuid.New()
	serviceError := fmt.Errorf("service: failed to get incident: %w", service.ErrIncidentNotFound)

	mockDispatch.EXPECT().GetIncident(gomock.Any(), incidentID).Return(nil, serviceError).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s", incidentID.String()), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"incident not found"}`, w.Body.String())
}

func TestListIncidents_Success(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)
	incidents := []*models.Incident{enRouteIncident(), enRouteIncident()}

	mockDispatch.EXPECT().ListIncidents(gomock.Any()).Return(incidents, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, incidents[0].ID, resp[0].ID)
	assert.Equal(t, incidents[1].ID, resp[1].ID)
}

func TestListIncidents_Empty(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().ListIncidents(gomock.Any()).Return(nil, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestUpdateIncidentStatus_Success(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)
	incident := enRouteIncident()
	incident.Status = models.StatusCancelled

	mockDispatch.EXPECT().
		UpdateIncidentStatus(gomock.Any(), incident.ID, models.StatusCancelled).
		Return(incident, nil).Times(1)

	w := makeRequest(router, "PUT", fmt.Sprintf("/api/v1/incidents/%s/status", incident.ID),
		jsonBody(t, UpdateIncidentStatusRequest{Status: "Cancelled"}), apiKeyHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Cancelled"`)
}

func TestUpdateIncidentStatus_RequiresAPIKey(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().UpdateIncidentStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "PUT", fmt.Sprintf("/api/v1/incidents/%s/status", uuid.New()),
		jsonBody(t, UpdateIncidentStatusRequest{Status: "Arrived"}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateIncidentStatus_AllocatorOnlyStatusRejected(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().UpdateIncidentStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "PUT", fmt.Sprintf("/api/v1/incidents/%s/status", uuid.New()),
		jsonBody(t, UpdateIncidentStatusRequest{Status: "En Route"}), apiKeyHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "'oneof' tag")
}

func TestUpdateIncidentStatus_InvalidTransition(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)
	incidentID := uuid.New()

	mockDispatch.EXPECT().
		UpdateIncidentStatus(gomock.Any(), incidentID, models.StatusCompleted).
		Return(nil, fmt.Errorf("service: Reported -> Completed: %w", service.ErrInvalidTransition)).
		Times(1)

	w := makeRequest(router, "PUT", fmt.Sprintf("/api/v1/incidents/%s/status", incidentID),
		jsonBody(t, UpdateIncidentStatusRequest{Status: "Completed"}), apiKeyHeader)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "status transition not allowed")
}

func TestTrackIncident_Success(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)
	incidentID := uuid.New()

	mockDispatch.EXPECT().TrackIncident(gomock.Any(), incidentID).Return(&models.Tracking{
		IncidentID:      incidentID,
		Status:          models.StatusEnRoute,
		VehicleCode:     "A001",
		VehicleLocation: &models.Point{Lon: 77.71, Lat: 8.73},
		RemainingETA:    4,
		Progress:        0.6,
	}, nil).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/incidents/%s/track", incidentID), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp TrackingResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "A001", resp.VehicleCode)
	require.NotNil(t, resp.Latitude)
	assert.InDelta(t, 8.73, *resp.Latitude, 1e-9)
	assert.InDelta(t, 4.0, resp.RemainingETA, 1e-9)
}

func TestListVehicles_Success(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().ListVehicles(gomock.Any()).Return([]*models.Vehicle{
		{ID: uuid.New(), Code: "A001", Type: models.VehicleAmbulance, Status: models.VehicleAvailable},
		{ID: uuid.New(), Code: "F501", Type: models.VehicleFireService, Status: models.VehicleOnScene},
	}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/vehicles", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []VehicleResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, "Fire Service", resp[1].Type)
	assert.Equal(t, "On Scene", resp[1].Status)
}

func TestUpdateVehicleLocation_Success(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)
	point := models.Point{Lon: 77.72, Lat: 8.74}

	mockDispatch.EXPECT().
		UpdateVehicleLocation(gomock.Any(), "A001", point).
		Return(&models.Vehicle{Code: "A001", CurrentLocation: point}, nil).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/vehicles/A001/location",
		jsonBody(t, UpdateVehicleLocationRequest{Latitude: coord(8.74), Longitude: coord(77.72)}), apiKeyHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"A001"`)
}

func TestUpdateVehicleLocation_ZeroCoordinates(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)
	point := models.Point{Lon: 0, Lat: 0}

	mockDispatch.EXPECT().
		UpdateVehicleLocation(gomock.Any(), "A001", point).
		Return(&models.Vehicle{Code: "A001", CurrentLocation: point}, nil).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/vehicles/A001/location",
		bytes.NewBufferString(`{"latitude":0,"longitude":0}`), apiKeyHeader)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateVehicleLocation_NotFound(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().
		UpdateVehicleLocation(gomock.Any(), "Z999", gomock.Any()).
		Return(nil, fmt.Errorf("service: failed to update location: %w", service.ErrVehicleNotFound)).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/vehicles/Z999/location",
		jsonBody(t, UpdateVehicleLocationRequest{Latitude: coord(8.74), Longitude: coord(77.72)}), apiKeyHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "vehicle not found")
}

func TestUpdateVehicleStatus_Busy(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().
		UpdateVehicleStatus(gomock.Any(), "A001", models.VehicleInMaintenance).
		Return(nil, service.ErrVehicleBusy).
		Times(1)

	w := makeRequest(router, "PUT", "/api/v1/vehicles/A001/status",
		jsonBody(t, UpdateVehicleStatusRequest{Status: "InMaintenance"}), apiKeyHeader)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "vehicle is assigned to an active incident")
}

func TestGetActiveIncident_Idle(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().GetActiveIncidentForVehicle(gomock.Any(), "A001").Return(nil, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/vehicles/A001/active-incident", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGetActiveIncident_Busy(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)
	incident := enRouteIncident()

	mockDispatch.EXPECT().GetActiveIncidentForVehicle(gomock.Any(), "A001").Return(incident, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/vehicles/A001/active-incident", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), incident.ID.String())
}

func TestGetVehicleHistory_Success(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)
	done := enRouteIncident()
	done.Status = models.StatusCompleted

	mockDispatch.EXPECT().GetVehicleHistory(gomock.Any(), "A001").Return([]*models.Incident{done}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/vehicles/A001/history", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Completed"`)
}

func TestListHospitals_Success(t *testing.T) {
	mockDispatch, _, router := newTestHandler(t)

	mockDispatch.EXPECT().ListHospitals(gomock.Any()).Return([]*models.Hospital{
		{ID: uuid.New(), Name: "Palayamkottai Government Hospital", Location: models.Point{Lon: 77.7356, Lat: 8.7232}},
	}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/hospitals", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Palayamkottai Government Hospital")
}

func TestSubmitFeedback_Success(t *testing.T) {
	_, mockFeedback, router := newTestHandler(t)
	incidentID := uuid.New()
	feedbackID := uuid.New()

	mockFeedback.EXPECT().
		SubmitFeedback(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fb *models.Feedback) error {
			assert.Equal(t, incidentID, fb.IncidentID)
			assert.Equal(t, 5, fb.Rating)
			fb.ID = feedbackID
			fb.SubmittedAt = time.Now()
			return nil
		}).Times(1)

	w := makeRequest(router, "POST", "/api/v1/feedback", jsonBody(t, FeedbackRequest{
		IncidentID: incidentID.String(),
		Rating:     5,
		Comments:   "fast response",
	}))

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp FeedbackResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, feedbackID, resp.ID)
	assert.Equal(t, "fast response", resp.Comments)
}

func TestSubmitFeedback_Duplicate(t *testing.T) {
	_, mockFeedback, router := newTestHandler(t)

	mockFeedback.EXPECT().
		SubmitFeedback(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("service: failed to save feedback: %w", service.ErrFeedbackExists)).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/feedback", jsonBody(t, FeedbackRequest{IncidentID: uuid.NewString(), Rating: 3}))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "feedback already exists for incident")
}

func TestSubmitFeedback_RatingOutOfRange(t *testing.T) {
	_, mockFeedback, router := newTestHandler(t)

	mockFeedback.EXPECT().SubmitFeedback(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/feedback", jsonBody(t, FeedbackRequest{IncidentID: uuid.NewString(), Rating: 6}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Rating' failed on the 'max' tag")
}

func TestListFeedback_RequiresAPIKey(t *testing.T) {
	_, mockFeedback, router := newTestHandler(t)

	mockFeedback.EXPECT().ListFeedback(gomock.Any()).Return(nil, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/feedback", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = makeRequest(router, "GET", "/api/v1/feedback", nil, apiKeyHeader)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStreamEvents_DelegatesToHub(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/ws", nil)

	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("service: %w", service.ErrInvalidLocation), http.StatusBadRequest},
		{service.ErrInvalidRating, http.StatusBadRequest},
		{service.ErrVehicleNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", service.ErrInvalidTransition), http.StatusConflict},
		{service.ErrFeedbackExists, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorStatus(tt.err), tt.err.Error())
	}
}

func TestHealthCheck_Success(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAPIKeyAuthMiddleware_Success(t *testing.T) {
	// Создаем Gin-роутер и добавляем middleware
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "valid-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuthMiddleware_BearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"Authorization": "Bearer valid-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuthMiddleware_MissingKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil) // Нет API ключа
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")
}

func TestAPIKeyAuthMiddleware_InvalidKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "invalid-key"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")
}
