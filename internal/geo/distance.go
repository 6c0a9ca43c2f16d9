// Package geo содержит оценку расстояния, модель пробок и расчёт ETA.
package geo

import (
	"math"

	"github.com/shenikar/emergency_dispatch/internal/models"
)

// EarthRadiusKm - средний радиус Земли
const EarthRadiusKm = 6371.0

// DistanceKm возвращает расстояние по большой окружности (haversine) в километрах
func DistanceKm(a, b models.Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Interpolate возвращает точку на отрезке a-b, frac в [0, 1]
func Interpolate(a, b models.Point, frac float64) models.Point {
	frac = math.Max(0, math.Min(1, frac))
	return models.Point{
		Lon: a.Lon + (b.Lon-a.Lon)*frac,
		Lat: a.Lat + (b.Lat-a.Lat)*frac,
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
