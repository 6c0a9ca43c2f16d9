package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
)

type nopCache struct{}

func (nopCache) GetIncident(context.Context, uuid.UUID) (*models.Incident, error) { return nil, nil }
func (nopCache) SetIncident(context.Context, *models.Incident) error              { return nil }
func (nopCache) InvalidateIncident(context.Context, uuid.UUID) error              { return nil }

type nopMetrics struct{}

func (nopMetrics) IncidentReported(models.IncidentType)        {}
func (nopMetrics) VehicleAssigned(models.VehicleType, float64) {}
func (nopMetrics) NoVehicleAvailable(models.VehicleType)       {}
func (nopMetrics) AllocationConflict(models.VehicleType)       {}
func (nopMetrics) IncidentTransition(models.IncidentStatus)    {}
func (nopMetrics) StaleTransition(string)                      {}
func (nopMetrics) VehicleReleased(models.VehicleType)          {}
