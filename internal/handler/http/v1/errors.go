package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/emergency_dispatch/internal/service"
	"github.com/sirupsen/logrus"
)

// errorStatus сопоставляет ошибку сервиса с HTTP-статусом
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidIncidentType),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidRating):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrIncidentNotFound),
		errors.Is(err, service.ErrVehicleNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrVehicleBusy),
		errors.Is(err, service.ErrFeedbackExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError пишет ответ с ошибкой; внутренние детали наружу не отдаются
func respondError(c *gin.Context, log *logrus.Entry, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	log.WithError(err).Warn("Request rejected")
	c.JSON(status, gin.H{"error": rootMessage(err)})
}

// rootMessage возвращает текст сигнальной ошибки без префиксов обертки
func rootMessage(err error) string {
	for _, sentinel := range []error{
		service.ErrInvalidLocation,
		service.ErrInvalidIncidentType,
		service.ErrInvalidStatus,
		service.ErrInvalidRating,
		service.ErrIncidentNotFound,
		service.ErrVehicleNotFound,
		service.ErrInvalidTransition,
		service.ErrVehicleBusy,
		service.ErrFeedbackExists,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
