package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresDB создает пул соединений PostgreSQL. maxConns <= 0 оставляет значение pgx по умолчанию.
func NewPostgresDB(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	cfgPool, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе конфигурации postgres: %w", err)
	}
	if maxConns > 0 {
		cfgPool.MaxConns = maxConns
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, cfgPool)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}

	// PostGIS нужен для всех геозапросов, проверяем его вместе с соединением
	var postgis string
	if err := dbpool.QueryRow(ctx, "SELECT PostGIS_Version()").Scan(&postgis); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("postgres недоступен или без PostGIS: %w", err)
	}

	return dbpool, nil
}
