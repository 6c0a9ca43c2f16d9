package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch/internal/models"
)

// Seed загружает справочные машины и больницы. Существующие записи не трогает.
// Возвращает число вставленных строк.
func Seed(ctx context.Context, db *pgxpool.Pool, vehicles []*models.Vehicle, hospitals []*models.Hospital) (int64, error) {
	batch := &pgx.Batch{}
	for _, v := range vehicles {
		batch.Queue(`
			INSERT INTO vehicles (code, type, status, current_location, base_location, driver_name, contact_number)
			VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326), $6, $7, $8)
			ON CONFLICT (code) DO NOTHING;
		`, v.Code, string(v.Type), string(v.Status), v.CurrentLocation.Lon, v.CurrentLocation.Lat,
			v.BaseLocation, v.DriverName, v.ContactNumber)
	}
	for _, h := range hospitals {
		batch.Queue(`
			INSERT INTO hospitals (name, location)
			VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326))
			ON CONFLICT (name) DO NOTHING;
		`, h.Name, h.Location.Lon, h.Location.Lat)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	results := tx.SendBatch(ctx, batch)
	var inserted int64
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("failed to seed row %d: %w", i, err)
		}
		inserted += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to close seed batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return inserted, nil
}
