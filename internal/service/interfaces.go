package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/scheduler"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	List(ctx context.Context) ([]*models.Incident, error)
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID, statuses ...models.IncidentStatus) ([]*models.Incident, error)
	// AssignVehicle в одной транзакции переводит машину Available -> EnRoute
	// и инцидент Reported -> En Route. Проигранная гонка за машину - ErrVehicleUnavailable.
	AssignVehicle(ctx context.Context, a models.Assignment) error
	// TransitionStatus - compare-and-set статуса. false, если текущий статус не from.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.IncidentStatus, at time.Time) (bool, error)
}

// VehicleRepository определяет контракт для работы с бд машин
type VehicleRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	GetByCode(ctx context.Context, code string) (*models.Vehicle, error)
	List(ctx context.Context) ([]*models.Vehicle, error)
	ListAvailableByType(ctx context.Context, vehicleType models.VehicleType) ([]*models.Vehicle, error)
	UpdateLocation(ctx context.Context, code string, location models.Point) (*models.Vehicle, error)
	// SetStatusForIncident меняет статус, только если машина всё ещё закреплена за incidentID
	SetStatusForIncident(ctx context.Context, vehicleID, incidentID uuid.UUID, status models.VehicleStatus, location *models.Point) (bool, error)
	// Release возвращает машину в пул, только если она закреплена за incidentID. nil - машина уже не наша.
	Release(ctx context.Context, vehicleID, incidentID uuid.UUID) (*models.Vehicle, error)
	// CompareAndSetStatus меняет статус свободной (не закрепленной) машины
	CompareAndSetStatus(ctx context.Context, code string, from, to models.VehicleStatus) (bool, error)
}

// HospitalRepository - источник больниц только для чтения
type HospitalRepository interface {
	List(ctx context.Context) ([]*models.Hospital, error)
}

// FeedbackRepository - хранилище отзывов. Повторный отзыв - ErrFeedbackExists.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	List(ctx context.Context) ([]*models.Feedback, error)
}

// IncidentCache - кеш инцидентов. Промах - (nil, nil).
type IncidentCache interface {
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncident(ctx context.Context, incident *models.Incident) error
	InvalidateIncident(ctx context.Context, id uuid.UUID) error
}

// EventPublisher доставляет события жизненного цикла подписчикам
type EventPublisher interface {
	Publish(ctx context.Context, event models.LifecycleEvent) error
}

// TaskScheduler - очередь отложенных задач с ключом по сущности
type TaskScheduler interface {
	Schedule(key string, delay time.Duration, fn scheduler.Task) bool
	Cancel(key string) bool
}

// MetricsRecorder - метрики диспетчеризации
type MetricsRecorder interface {
	IncidentReported(incidentType models.IncidentType)
	VehicleAssigned(vehicleType models.VehicleType, etaMinutes float64)
	NoVehicleAvailable(vehicleType models.VehicleType)
	AllocationConflict(vehicleType models.VehicleType)
	IncidentTransition(status models.IncidentStatus)
	StaleTransition(task string)
	VehicleReleased(vehicleType models.VehicleType)
}

// DispatchService определяет контракт диспетчеризации и жизненного цикла
type DispatchService interface {
	ReportIncident(ctx context.Context, req models.SOSReport) (*models.Incident, error)
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context) ([]*models.Incident, error)
	UpdateIncidentStatus(ctx context.Context, id uuid.UUID, status models.IncidentStatus) (*models.Incident, error)
	TrackIncident(ctx context.Context, id uuid.UUID) (*models.Tracking, error)

	ListVehicles(ctx context.Context) ([]*models.Vehicle, error)
	UpdateVehicleLocation(ctx context.Context, code string, location models.Point) (*models.Vehicle, error)
	UpdateVehicleStatus(ctx context.Context, code string, status models.VehicleStatus) (*models.Vehicle, error)
	GetActiveIncidentForVehicle(ctx context.Context, code string) (*models.Incident, error)
	GetVehicleHistory(ctx context.Context, code string) ([]*models.Incident, error)

	ListHospitals(ctx context.Context) ([]*models.Hospital, error)

	// Resume заново планирует таймеры для инцидентов, находившихся в работе до перезапуска
	Resume(ctx context.Context) (int, error)
}

// FeedbackService определяет контракт для отзывов
type FeedbackService interface {
	SubmitFeedback(ctx context.Context, feedback *models.Feedback) error
	ListFeedback(ctx context.Context) ([]*models.Feedback, error)
}
