package models

// IncidentType - тип происшествия, как его сообщил заявитель
type IncidentType string

const (
	IncidentMedical IncidentType = "Medical"
	IncidentFire    IncidentType = "Fire"
	IncidentPolice  IncidentType = "Police"
)

// VehicleType - категория транспортного средства
type VehicleType string

const (
	VehicleAmbulance   VehicleType = "Ambulance"
	VehicleFireService VehicleType = "Fire Service"
	VehiclePolice      VehicleType = "Police"
)

// IncidentStatus - состояние инцидента
type IncidentStatus string

const (
	StatusReported           IncidentStatus = "Reported"
	StatusNoVehicleAvailable IncidentStatus = "No Vehicle Available"
	StatusEnRoute            IncidentStatus = "En Route"
	StatusArrived            IncidentStatus = "Arrived"
	StatusCompleted          IncidentStatus = "Completed"
	StatusCancelled          IncidentStatus = "Cancelled"
)

// VehicleStatus - состояние транспортного средства
type VehicleStatus string

const (
	VehicleAvailable     VehicleStatus = "Available"
	VehicleEnRoute       VehicleStatus = "EnRoute"
	VehicleOnScene       VehicleStatus = "On Scene"
	VehicleInMaintenance VehicleStatus = "InMaintenance"
)

// categoryByType - единственная точка правды для сопоставления типа инцидента и категории машины.
// Всё, чего нет в таблице, обслуживает полиция.
var categoryByType = map[IncidentType]VehicleType{
	IncidentMedical: VehicleAmbulance,
	IncidentFire:    VehicleFireService,
	IncidentPolice:  VehiclePolice,
}

var severityByType = map[IncidentType]float64{
	IncidentFire:    0.9,
	IncidentMedical: 0.8,
}

const defaultSeverity = 0.6

// CategoryFor возвращает категорию машины, которая обслуживает данный тип инцидента
func CategoryFor(t IncidentType) VehicleType {
	if c, ok := categoryByType[t]; ok {
		return c
	}
	return VehiclePolice
}

// SeverityFor возвращает приоритет инцидента по его типу
func SeverityFor(t IncidentType) float64 {
	if s, ok := severityByType[t]; ok {
		return s
	}
	return defaultSeverity
}

// transitions - допустимые переходы статусов инцидента
var transitions = map[IncidentStatus][]IncidentStatus{
	StatusReported: {StatusNoVehicleAvailable, StatusEnRoute, StatusCancelled},
	StatusEnRoute:  {StatusArrived, StatusCancelled},
	StatusArrived:  {StatusCompleted},
}

// CanTransition сообщает, разрешён ли переход from -> to
func CanTransition(from, to IncidentStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal сообщает, что из статуса нет исходящих переходов
func (s IncidentStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsActive - инцидент ещё удерживает машину
func (s IncidentStatus) IsActive() bool {
	return s == StatusEnRoute || s == StatusArrived
}

// Valid проверяет, что статус известен системе
func (s IncidentStatus) Valid() bool {
	switch s {
	case StatusReported, StatusNoVehicleAvailable, StatusEnRoute, StatusArrived, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Valid проверяет, что тип машины известен системе
func (t VehicleType) Valid() bool {
	switch t {
	case VehicleAmbulance, VehicleFireService, VehiclePolice:
		return true
	}
	return false
}
