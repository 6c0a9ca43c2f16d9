package models

import (
	"time"

	"github.com/google/uuid"
)

type Vehicle struct {
	ID                 uuid.UUID     `json:"id"`
	Code               string        `json:"code"`
	Type               VehicleType   `json:"type"`
	Status             VehicleStatus `json:"status"`
	CurrentLocation    Point         `json:"current_location"`
	BaseLocation       string        `json:"base_location"`
	DriverName         string        `json:"driver_name"`
	ContactNumber      string        `json:"contact_number"`
	AssignedIncidentID *uuid.UUID    `json:"assigned_incident_id,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}
