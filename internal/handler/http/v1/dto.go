package v1

import (
	"time"

	"github.com/google/uuid"
)

// SOSRequest DTO сигнала SOS
// @Description DTO сигнала SOS
type SOSRequest struct {
	Type      string   `json:"type" validate:"required,max=64"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

// UpdateIncidentStatusRequest DTO ручной смены статуса инцидента
// @Description DTO ручной смены статуса инцидента
type UpdateIncidentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Arrived Completed Cancelled"`
}

// UpdateVehicleLocationRequest DTO телеметрии машины
// @Description DTO телеметрии машины
type UpdateVehicleLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

// UpdateVehicleStatusRequest DTO смены статуса свободной машины
// @Description DTO смены статуса свободной машины
type UpdateVehicleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Available InMaintenance"`
}

// FeedbackRequest DTO отзыва
// @Description DTO отзыва
type FeedbackRequest struct {
	IncidentID string `json:"incident_id" validate:"required,uuid"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comments   string `json:"comments,omitempty" validate:"max=2000"`
}

// VehicleResponse DTO машины
// @Description DTO машины
type VehicleResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Code               string     `json:"code"`
	Type               string     `json:"type"`
	Status             string     `json:"status"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	BaseLocation       string     `json:"base_location,omitempty"`
	DriverName         string     `json:"driver_name,omitempty"`
	AssignedIncidentID *uuid.UUID `json:"assigned_incident_id,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// HospitalResponse DTO больницы
// @Description DTO больницы
type HospitalResponse struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID                uuid.UUID         `json:"id"`
	Type              string            `json:"type"`
	Latitude          float64           `json:"latitude"`
	Longitude         float64           `json:"longitude"`
	SeverityScore     float64           `json:"severity_score"`
	Status            string            `json:"status"`
	AssignedVehicle   *VehicleResponse  `json:"assigned_vehicle,omitempty"`
	SuggestedHospital *HospitalResponse `json:"suggested_hospital,omitempty"`
	InitialETA        *float64          `json:"initial_eta_minutes,omitempty"`
	DispatchedAt      *time.Time        `json:"dispatched_at,omitempty"`
	ArrivedAt         *time.Time        `json:"arrived_at,omitempty"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// TrackingResponse DTO положения машины на пути к инциденту
// @Description DTO положения машины на пути к инциденту
type TrackingResponse struct {
	IncidentID   uuid.UUID `json:"incident_id"`
	Status       string    `json:"status"`
	VehicleCode  string    `json:"vehicle_code,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	RemainingETA float64   `json:"remaining_eta_minutes"`
	Progress     float64   `json:"progress"`
}

// FeedbackResponse DTO отзыва
// @Description DTO отзыва
type FeedbackResponse struct {
	ID          uuid.UUID `json:"id"`
	IncidentID  uuid.UUID `json:"incident_id"`
	Rating      int       `json:"rating"`
	Comments    string    `json:"comments,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}
