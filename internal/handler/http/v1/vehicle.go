package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/emergency_dispatch/internal/models"
)

// @Summary List vehicles
// @Description Fleet with current status and position.
// @Tags Vehicles
// @Produce json
// @Success 200 {array} VehicleResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /vehicles [get]
func (h *Handler) listVehicles(c *gin.Context) {
	log := h.logger.WithField("method", "listVehicles")

	vehicles, err := h.dispatchService.ListVehicles(c.Request.Context())
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToVehicleResponses(vehicles))
}

// @Summary Update vehicle location
// @Description Telemetry from the vehicle. Requires API key.
// @Tags Vehicles
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param code path string true "Vehicle code"
// @Param location body UpdateVehicleLocationRequest true "Current position"
// @Success 200 {object} VehicleResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Vehicle not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /vehicles/{code}/location [post]
func (h *Handler) updateVehicleLocation(c *gin.Context) {
	code := c.Param("code")
	log := h.logger.WithField("method", "updateVehicleLocation").WithField("code", code)

	var input UpdateVehicleLocationRequest
	if !h.bind(c, log, &input) {
		return
	}

	vehicle, err := h.dispatchService.UpdateVehicleLocation(c.Request.Context(), code,
		models.Point{Lon: *input.Longitude, Lat: *input.Latitude})
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToVehicleResponse(vehicle))
}

// @Summary Update vehicle status
// @Description Toggle an unassigned vehicle between Available and InMaintenance. Requires API key.
// @Tags Vehicles
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param code path string true "Vehicle code"
// @Param status body UpdateVehicleStatusRequest true "New status"
// @Success 200 {object} VehicleResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Vehicle not found"
// @Failure 409 {object} map[string]string "Vehicle is assigned"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /vehicles/{code}/status [put]
func (h *Handler) updateVehicleStatus(c *gin.Context) {
	code := c.Param("code")
	log := h.logger.WithField("method", "updateVehicleStatus").WithField("code", code)

	var input UpdateVehicleStatusRequest
	if !h.bind(c, log, &input) {
		return
	}

	vehicle, err := h.dispatchService.UpdateVehicleStatus(c.Request.Context(), code, models.VehicleStatus(input.Status))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToVehicleResponse(vehicle))
}

// @Summary Active incident of a vehicle
// @Description Incident the vehicle is currently serving. 204 when idle.
// @Tags Vehicles
// @Produce json
// @Param code path string true "Vehicle code"
// @Success 200 {object} IncidentResponse
// @Success 204 "Vehicle is idle"
// @Failure 404 {object} map[string]string "Vehicle not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /vehicles/{code}/active-incident [get]
func (h *Handler) getActiveIncident(c *gin.Context) {
	code := c.Param("code")
	log := h.logger.WithField("method", "getActiveIncident").WithField("code", code)

	incident, err := h.dispatchService.GetActiveIncidentForVehicle(c.Request.Context(), code)
	if err != nil {
		respondError(c, log, err)
		return
	}
	if incident == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Completed incidents of a vehicle
// @Tags Vehicles
// @Produce json
// @Param code path string true "Vehicle code"
// @Success 200 {array} IncidentResponse
// @Failure 404 {object} map[string]string "Vehicle not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /vehicles/{code}/history [get]
func (h *Handler) getVehicleHistory(c *gin.Context) {
	code := c.Param("code")
	log := h.logger.WithField("method", "getVehicleHistory").WithField("code", code)

	incidents, err := h.dispatchService.GetVehicleHistory(c.Request.Context(), code)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}
