package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

type IncidentRepository struct {
	db *pgxpool.Pool
}

func NewIncidentRepository(db *pgxpool.Pool) service.IncidentRepository {
	return &IncidentRepository{db: db}
}

// incidentSelect выбирает инцидент вместе с назначенной машиной
const incidentSelect = `
	SELECT
		i.id,
		i.type,
		ST_X(i.location::geometry) as longitude,
		ST_Y(i.location::geometry) as latitude,
		i.severity_score,
		i.status,
		i.assigned_vehicle_id,
		i.suggested_hospital_name,
		ST_X(i.suggested_hospital_location::geometry),
		ST_Y(i.suggested_hospital_location::geometry),
		i.initial_eta,
		ST_X(i.dispatch_origin::geometry),
		ST_Y(i.dispatch_origin::geometry),
		i.dispatched_at,
		i.arrived_at,
		i.completed_at,
		i.created_at,
		i.updated_at,
		v.id,
		v.code,
		v.type,
		v.status,
		ST_X(v.current_location::geometry),
		ST_Y(v.current_location::geometry),
		v.base_location,
		v.driver_name,
		v.contact_number,
		v.assigned_incident_id,
		v.created_at,
		v.updated_at
	FROM incidents i
	LEFT JOIN vehicles v ON v.id = i.assigned_vehicle_id
`

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	var hospitalName *string
	var hospitalLon, hospitalLat *float64
	if h := incident.SuggestedHospital; h != nil {
		hospitalName, hospitalLon, hospitalLat = &h.Name, &h.Location.Lon, &h.Location.Lat
	}

	query := `
		INSERT INTO incidents (type, location, severity_score, status, suggested_hospital_name, suggested_hospital_location)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326), $4, $5, $6, ST_SetSRID(ST_MakePoint($7, $8), 4326))
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		string(incident.Type),
		incident.Location.Lon,
		incident.Location.Lat,
		incident.SeverityScore,
		string(incident.Status),
		hospitalName,
		hospitalLon,
		hospitalLat,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	incident, err := scanIncident(r.db.QueryRow(ctx, incidentSelect+" WHERE i.id = $1;", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, service.ErrIncidentNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// List возвращает инциденты: сначала более серьезные, затем более свежие
func (r *IncidentRepository) List(ctx context.Context) ([]*models.Incident, error) {
	rows, err := r.db.Query(ctx, incidentSelect+" ORDER BY i.severity_score DESC, i.created_at DESC;")
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	return collectIncidents(rows)
}

// ListByVehicle возвращает инциденты машины с заданными статусами, новые сначала
func (r *IncidentRepository) ListByVehicle(ctx context.Context, vehicleID uuid.UUID, statuses ...models.IncidentStatus) ([]*models.Incident, error) {
	query := incidentSelect + " WHERE i.assigned_vehicle_id = $1"
	args := []any{vehicleID}
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = string(s)
		}
		query += " AND i.status = ANY($2)"
		args = append(args, names)
	}
	rows, err := r.db.Query(ctx, query+" ORDER BY i.created_at DESC;", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents by vehicle: %w", err)
	}
	return collectIncidents(rows)
}

// AssignVehicle закрепляет машину за инцидентом в одной транзакции
func (r *IncidentRepository) AssignVehicle(ctx context.Context, a models.Assignment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin assignment: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Условное обновление: проигравший гонку не обновит ни одной строки
	claim := `
		UPDATE vehicles SET
			status = $3,
			assigned_incident_id = $2,
			updated_at = $4
		WHERE id = $1 AND status = $5 AND assigned_incident_id IS NULL;
	`
	tag, err := tx.Exec(ctx, claim, a.VehicleID, a.IncidentID,
		string(models.VehicleEnRoute), a.At, string(models.VehicleAvailable))
	if err != nil {
		return fmt.Errorf("failed to claim vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vehicle %s: %w", a.VehicleID, service.ErrVehicleUnavailable)
	}

	assign := `
		UPDATE incidents SET
			status = $2,
			assigned_vehicle_id = $3,
			initial_eta = $4,
			dispatch_origin = ST_SetSRID(ST_MakePoint($5, $6), 4326),
			dispatched_at = $7,
			updated_at = $7
		WHERE id = $1 AND status = $8;
	`
	tag, err = tx.Exec(ctx, assign, a.IncidentID, string(models.StatusEnRoute), a.VehicleID,
		a.ETA, a.Origin.Lon, a.Origin.Lat, a.At, string(models.StatusReported))
	if err != nil {
		return fmt.Errorf("failed to assign incident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("incident %s is no longer reported: %w", a.IncidentID, service.ErrInvalidTransition)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit assignment: %w", err)
	}
	return nil
}

// TransitionStatus меняет статус, только если текущий статус равен from
func (r *IncidentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.IncidentStatus, at time.Time) (bool, error) {
	query := `
		UPDATE incidents SET
			status = $3::text,
			arrived_at = CASE WHEN $3::text = 'Arrived' THEN $4 ELSE arrived_at END,
			completed_at = CASE WHEN $3::text = 'Completed' THEN $4 ELSE completed_at END,
			updated_at = $4
		WHERE id = $1 AND status = $2;
	`
	cmdTag, err := r.db.Exec(ctx, query, id, string(from), string(to), at)
	if err != nil {
		return false, fmt.Errorf("failed to update incident status: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func collectIncidents(rows pgx.Rows) ([]*models.Incident, error) {
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

func scanIncident(row rowScanner) (*models.Incident, error) {
	incident := &models.Incident{}
	var (
		hospitalName             *string
		hospitalLon, hospitalLat *float64
		originLon, originLat     *float64
		v                        nullableVehicle
	)
	err := row.Scan(
		&incident.ID,
		&incident.Type,
		&incident.Location.Lon,
		&incident.Location.Lat,
		&incident.SeverityScore,
		&incident.Status,
		&incident.AssignedVehicleID,
		&hospitalName,
		&hospitalLon,
		&hospitalLat,
		&incident.InitialETA,
		&originLon,
		&originLat,
		&incident.DispatchedAt,
		&incident.ArrivedAt,
		&incident.CompletedAt,
		&incident.CreatedAt,
		&incident.UpdatedAt,
		&v.ID,
		&v.Code,
		&v.Type,
		&v.Status,
		&v.Lon,
		&v.Lat,
		&v.BaseLocation,
		&v.DriverName,
		&v.ContactNumber,
		&v.AssignedIncidentID,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if hospitalName != nil && hospitalLon != nil && hospitalLat != nil {
		incident.SuggestedHospital = &models.HospitalSnapshot{
			Name:     *hospitalName,
			Location: models.Point{Lon: *hospitalLon, Lat: *hospitalLat},
		}
	}
	if originLon != nil && originLat != nil {
		incident.DispatchOrigin = &models.Point{Lon: *originLon, Lat: *originLat}
	}
	incident.AssignedVehicle = v.vehicle()
	return incident, nil
}

// nullableVehicle - машина из LEFT JOIN, все поля которой могут быть NULL
type nullableVehicle struct {
	ID                 *uuid.UUID
	Code               *string
	Type               *string
	Status             *string
	Lon, Lat           *float64
	BaseLocation       *string
	DriverName         *string
	ContactNumber      *string
	AssignedIncidentID *uuid.UUID
	CreatedAt          *time.Time
	UpdatedAt          *time.Time
}

func (n nullableVehicle) vehicle() *models.Vehicle {
	if n.ID == nil {
		return nil
	}
	v := &models.Vehicle{
		ID:                 *n.ID,
		Code:               deref(n.Code),
		Type:               models.VehicleType(deref(n.Type)),
		Status:             models.VehicleStatus(deref(n.Status)),
		BaseLocation:       deref(n.BaseLocation),
		DriverName:         deref(n.DriverName),
		ContactNumber:      deref(n.ContactNumber),
		AssignedIncidentID: n.AssignedIncidentID,
	}
	if n.Lon != nil && n.Lat != nil {
		v.CurrentLocation = models.Point{Lon: *n.Lon, Lat: *n.Lat}
	}
	if n.CreatedAt != nil {
		v.CreatedAt = *n.CreatedAt
	}
	if n.UpdatedAt != nil {
		v.UpdatedAt = *n.UpdatedAt
	}
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
