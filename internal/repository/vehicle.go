package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

type VehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) service.VehicleRepository {
	return &VehicleRepository{db: db}
}

const vehicleColumns = `
	id,
	code,
	type,
	status,
	ST_X(current_location::geometry) as longitude,
	ST_Y(current_location::geometry) as latitude,
	base_location,
	driver_name,
	contact_number,
	assigned_incident_id,
	created_at,
	updated_at
`

func scanVehicle(row rowScanner) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	err := row.Scan(
		&v.ID,
		&v.Code,
		&v.Type,
		&v.Status,
		&v.CurrentLocation.Lon,
		&v.CurrentLocation.Lat,
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
	return v, nil
}

func collectVehicles(rows pgx.Rows) ([]*models.Vehicle, error) {
	defer rows.Close()

	vehicles := make([]*models.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle row: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return vehicles, nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRow(ctx, "SELECT"+vehicleColumns+"FROM vehicles WHERE id = $1;", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vehicle with id %s: %w", id, service.ErrVehicleNotFound)
		}
		return nil, fmt.Errorf("failed to get vehicle by id: %w", err)
	}
	return v, nil
}

func (r *VehicleRepository) GetByCode(ctx context.Context, code string) (*models.Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRow(ctx, "SELECT"+vehicleColumns+"FROM vehicles WHERE code = $1;", code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vehicle %s: %w", code, service.ErrVehicleNotFound)
		}
		return nil, fmt.Errorf("failed to get vehicle by code: %w", err)
	}
	return v, nil
}

func (r *VehicleRepository) List(ctx context.Context) ([]*models.Vehicle, error) {
	rows, err := r.db.Query(ctx, "SELECT"+vehicleColumns+"FROM vehicles ORDER BY code;")
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return collectVehicles(rows)
}

// ListAvailableByType возвращает свободные машины категории
func (r *VehicleRepository) ListAvailableByType(ctx context.Context, vehicleType models.VehicleType) ([]*models.Vehicle, error) {
	query := "SELECT" + vehicleColumns + `FROM vehicles
		WHERE type = $1 AND status = $2 AND assigned_incident_id IS NULL
		ORDER BY code;`
	rows, err := r.db.Query(ctx, query, string(vehicleType), string(models.VehicleAvailable))
	if err != nil {
		return nil, fmt.Errorf("failed to list available vehicles: %w", err)
	}
	return collectVehicles(rows)
}

func (r *VehicleRepository) UpdateLocation(ctx context.Context, code string, location models.Point) (*models.Vehicle, error) {
	query := `
		UPDATE vehicles SET
			current_location = ST_SetSRID(ST_MakePoint($2, $3), 4326),
			updated_at = NOW()
		WHERE code = $1
		RETURNING` + vehicleColumns + ";"
	v, err := scanVehicle(r.db.QueryRow(ctx, query, code, location.Lon, location.Lat))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vehicle %s: %w", code, service.ErrVehicleNotFound)
		}
		return nil, fmt.Errorf("failed to update vehicle location: %w", err)
	}
	return v, nil
}

// SetStatusForIncident меняет статус машины, закрепленной за incidentID. location == nil - позиция не меняется.
func (r *VehicleRepository) SetStatusForIncident(ctx context.Context, vehicleID, incidentID uuid.UUID, status models.VehicleStatus, location *models.Point) (bool, error) {
	var lon, lat *float64
	if location != nil {
		lon, lat = &location.Lon, &location.Lat
	}
	query := `
		UPDATE vehicles SET
			status = $3,
			current_location = COALESCE(ST_SetSRID(ST_MakePoint($4::float8, $5::float8), 4326)::geography, current_location),
			updated_at = NOW()
		WHERE id = $1 AND assigned_incident_id = $2;
	`
	cmdTag, err := r.db.Exec(ctx, query, vehicleID, incidentID, string(status), lon, lat)
	if err != nil {
		return false, fmt.Errorf("failed to update vehicle status: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// Release возвращает машину в пул, если она всё ещё закреплена за incidentID
func (r *VehicleRepository) Release(ctx context.Context, vehicleID, incidentID uuid.UUID) (*models.Vehicle, error) {
	query := `
		UPDATE vehicles SET
			status = $3,
			assigned_incident_id = NULL,
			updated_at = NOW()
		WHERE id = $1 AND assigned_incident_id = $2
		RETURNING` + vehicleColumns + ";"
	v, err := scanVehicle(r.db.QueryRow(ctx, query, vehicleID, incidentID, string(models.VehicleAvailable)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to release vehicle: %w", err)
	}
	return v, nil
}

func (r *VehicleRepository) CompareAndSetStatus(ctx context.Context, code string, from, to models.VehicleStatus) (bool, error) {
	query := `
		UPDATE vehicles SET
			status = $3,
			updated_at = NOW()
		WHERE code = $1 AND status = $2 AND assigned_incident_id IS NULL;
	`
	cmdTag, err := r.db.Exec(ctx, query, code, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("failed to update vehicle status: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
