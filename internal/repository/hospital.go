package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

type HospitalRepository struct {
	db *pgxpool.Pool
}

func NewHospitalRepository(db *pgxpool.Pool) service.HospitalRepository {
	return &HospitalRepository{db: db}
}

// List возвращает все больницы; выбор ближайшей делает сервис
func (r *HospitalRepository) List(ctx context.Context) ([]*models.Hospital, error) {
	query := `
		SELECT
			id,
			name,
			ST_X(location::geometry) as longitude,
			ST_Y(location::geometry) as latitude
		FROM hospitals
		ORDER BY name;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	defer rows.Close()

	hospitals := make([]*models.Hospital, 0)
	for rows.Next() {
		h := &models.Hospital{}
		if err := rows.Scan(&h.ID, &h.Name, &h.Location.Lon, &h.Location.Lat); err != nil {
			return nil, fmt.Errorf("failed to scan hospital row: %w", err)
		}
		hospitals = append(hospitals, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return hospitals, nil
}
