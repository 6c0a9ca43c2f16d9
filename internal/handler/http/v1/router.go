package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	auth := APIKeyAuthMiddleware(h.cfg, h.logger)

	// Сигнал SOS от гражданина
	api.POST("/sos", h.reportSOS)

	incidents := api.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.GET("/:id/track", h.trackIncident)
		incidents.PUT("/:id/status", auth, h.updateIncidentStatus)
	}

	vehicles := api.Group("/vehicles")
	{
		vehicles.GET("", h.listVehicles)
		vehicles.GET("/:code/active-incident", h.getActiveIncident)
		vehicles.GET("/:code/history", h.getVehicleHistory)
		vehicles.POST("/:code/location", auth, h.updateVehicleLocation)
		vehicles.PUT("/:code/status", auth, h.updateVehicleStatus)
	}

	api.GET("/hospitals", h.listHospitals)

	feedback := api.Group("/feedback")
	{
		feedback.POST("", h.submitFeedback)
		feedback.GET("", auth, h.listFeedback)
	}

	// Поток событий для панели диспетчера
	if h.stream != nil {
		api.GET("/ws", h.streamEvents)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
