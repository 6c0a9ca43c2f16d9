package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventVehicleAssigned   EventType = "vehicleAssigned"
	EventIncidentArrived   EventType = "incidentArrived"
	EventIncidentCompleted EventType = "incidentCompleted"
	EventIncidentCancelled EventType = "incidentCancelled"
	EventVehicleAvailable  EventType = "vehicleAvailable"
)

// LifecycleEvent - уведомление о смене статуса инцидента или машины
type LifecycleEvent struct {
	Type        EventType  `json:"type"`
	IncidentID  *uuid.UUID `json:"incident_id,omitempty"`
	VehicleID   *uuid.UUID `json:"vehicle_id,omitempty"`
	VehicleCode string     `json:"vehicle_code,omitempty"`
	Status      string     `json:"status"`
	Timestamp   time.Time  `json:"timestamp"`
}
