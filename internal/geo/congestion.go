package geo

import "github.com/shenikar/emergency_dispatch/internal/models"

// DefaultZoneRadiusKm - радиус, в котором машина считается стоящей в пробке
const DefaultZoneRadiusKm = 1.0

// CongestionZone - точка с фиксированным штрафом по времени
type CongestionZone struct {
	Name           string       `json:"name"`
	Point          models.Point `json:"point"`
	PenaltyMinutes float64      `json:"penalty_minutes"`
}

// DefaultZones - известные узкие места региона
var DefaultZones = []CongestionZone{
	{Name: "Tirunelveli Junction", Point: models.Point{Lon: 77.7010, Lat: 8.7291}, PenaltyMinutes: 10},
	{Name: "Palayamkottai Market", Point: models.Point{Lon: 77.7389, Lat: 8.7265}, PenaltyMinutes: 8},
	{Name: "KTC Nagar Choke Point", Point: models.Point{Lon: 77.7330, Lat: 8.7401}, PenaltyMinutes: 6},
}

// CongestionModel - статический набор зон пробок
type CongestionModel struct {
	Zones    []CongestionZone
	RadiusKm float64
}

// NewCongestionModel создает модель; radiusKm <= 0 заменяется значением по умолчанию
func NewCongestionModel(zones []CongestionZone, radiusKm float64) *CongestionModel {
	if radiusKm <= 0 {
		radiusKm = DefaultZoneRadiusKm
	}
	return &CongestionModel{Zones: zones, RadiusKm: radiusKm}
}

// Penalty возвращает штраф первой зоны, в радиусе которой находится точка.
// Штрафы пересекающихся зон не суммируются.
func (m *CongestionModel) Penalty(p models.Point) float64 {
	if z := m.ZoneAt(p); z != nil {
		return z.PenaltyMinutes
	}
	return 0
}

// ZoneAt возвращает первую зону, накрывающую точку, или nil
func (m *CongestionModel) ZoneAt(p models.Point) *CongestionZone {
	for i := range m.Zones {
		if DistanceKm(p, m.Zones[i].Point) < m.RadiusKm {
			return &m.Zones[i]
		}
	}
	return nil
}
