package geo

import "github.com/shenikar/emergency_dispatch/internal/models"

// DefaultSpeedFactor - минут на километр
const DefaultSpeedFactor = 2.0

// Scorer оценивает время прибытия машины с учетом пробок
type Scorer struct {
	speedFactor float64
	congestion  *CongestionModel
}

func NewScorer(speedFactor float64, congestion *CongestionModel) *Scorer {
	if speedFactor <= 0 {
		speedFactor = DefaultSpeedFactor
	}
	if congestion == nil {
		congestion = NewCongestionModel(nil, 0)
	}
	return &Scorer{speedFactor: speedFactor, congestion: congestion}
}

// EstimateETA - расстояние * коэффициент + штраф зоны, в которой стоит машина. Результат в минутах.
func (s *Scorer) EstimateETA(incident, vehicle models.Point) float64 {
	return DistanceKm(incident, vehicle)*s.speedFactor + s.congestion.Penalty(vehicle)
}
