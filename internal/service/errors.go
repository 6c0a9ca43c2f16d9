package service

import "errors"

var (
	ErrInvalidLocation     = errors.New("invalid location")
	ErrInvalidIncidentType = errors.New("invalid incident type")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrIncidentNotFound    = errors.New("incident not found")
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrVehicleUnavailable  = errors.New("vehicle is not available")
	ErrVehicleBusy         = errors.New("vehicle is assigned to an active incident")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrFeedbackExists      = errors.New("feedback already exists for incident")
)
