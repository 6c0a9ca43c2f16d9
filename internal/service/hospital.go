package service

import (
	"context"
	"fmt"
	"math"

	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/models"
)

type hospitalResolver struct {
	repo HospitalRepository
}

// Nearest возвращает ближайшую больницу или nil, если больниц нет
func (r *hospitalResolver) Nearest(ctx context.Context, location models.Point) (*models.Hospital, error) {
	hospitals, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hospitals: %w", err)
	}

	var nearest *models.Hospital
	lowest := math.Inf(1)
	for _, h := range hospitals {
		if d := geo.DistanceKm(location, h.Location); d < lowest {
			lowest = d
			nearest = h
		}
	}
	return nearest, nil
}
