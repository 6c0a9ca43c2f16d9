package models

import (
	"time"

	"github.com/google/uuid"
)

type Incident struct {
	ID                uuid.UUID         `json:"id"`
	Type              IncidentType      `json:"type"`
	Location          Point             `json:"location"`
	SeverityScore     float64           `json:"severity_score"`
	Status            IncidentStatus    `json:"status"`
	AssignedVehicleID *uuid.UUID        `json:"assigned_vehicle_id,omitempty"`
	AssignedVehicle   *Vehicle          `json:"assigned_vehicle,omitempty"`
	SuggestedHospital *HospitalSnapshot `json:"suggested_hospital,omitempty"`
	InitialETA        *float64          `json:"initial_eta,omitempty"`
	DispatchOrigin    *Point            `json:"dispatch_origin,omitempty"`
	DispatchedAt      *time.Time        `json:"dispatched_at,omitempty"`
	ArrivedAt         *time.Time        `json:"arrived_at,omitempty"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Tracking - снимок движения машины к месту инцидента
type Tracking struct {
	IncidentID      uuid.UUID      `json:"incident_id"`
	Status          IncidentStatus `json:"status"`
	VehicleCode     string         `json:"vehicle_code,omitempty"`
	VehicleLocation *Point         `json:"vehicle_location,omitempty"`
	RemainingETA    float64        `json:"remaining_eta"`
	Progress        float64        `json:"progress"`
}

// SOSReport - входные данные сигнала SOS
type SOSReport struct {
	Type     IncidentType
	Location Point
}

// Assignment - данные атомарного назначения машины на инцидент
type Assignment struct {
	IncidentID uuid.UUID
	VehicleID  uuid.UUID
	ETA        float64
	Origin     Point
	At         time.Time
}
