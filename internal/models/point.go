package models

import "fmt"

// Point - географическая точка в порядке GeoJSON (долгота, широта)
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Valid проверяет, что координаты лежат в допустимых пределах
func (p Point) Valid() bool {
	return p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90
}

func (p Point) String() string {
	return fmt.Sprintf("(%.5f, %.5f)", p.Lon, p.Lat)
}
