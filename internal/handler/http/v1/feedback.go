package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
)

// @Summary Submit feedback
// @Description One feedback per incident.
// @Tags Feedback
// @Accept json
// @Produce json
// @Param feedback body FeedbackRequest true "Feedback"
// @Success 201 {object} FeedbackResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 409 {object} map[string]string "Feedback already submitted"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /feedback [post]
func (h *Handler) submitFeedback(c *gin.Context) {
	var input FeedbackRequest
	log := h.logger.WithField("method", "submitFeedback")
	if !h.bind(c, log, &input) {
		return
	}

	feedback := &models.Feedback{
		IncidentID: uuid.MustParse(input.IncidentID),
		Rating:     input.Rating,
		Comments:   input.Comments,
	}
	if err := h.feedbackService.SubmitFeedback(c.Request.Context(), feedback); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToFeedbackResponse(feedback))
}

// @Summary List feedback
// @Description Requires API key.
// @Tags Feedback
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} FeedbackResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /feedback [get]
func (h *Handler) listFeedback(c *gin.Context) {
	log := h.logger.WithField("method", "listFeedback")

	list, err := h.feedbackService.ListFeedback(c.Request.Context())
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToFeedbackResponses(list))
}
