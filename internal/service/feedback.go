package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/sirupsen/logrus"
)

type feedbackService struct {
	repo      FeedbackRepository
	incidents IncidentRepository
	logger    *logrus.Logger
}

func NewFeedbackService(repo FeedbackRepository, incidents IncidentRepository, logger *logrus.Logger) FeedbackService {
	return &feedbackService{repo: repo, incidents: incidents, logger: logger}
}

// SubmitFeedback сохраняет отзыв; повторный отзыв по тому же инциденту - конфликт
func (s *feedbackService) SubmitFeedback(ctx context.Context, feedback *models.Feedback) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "feedback",
		"method":      "SubmitFeedback",
		"incident_id": feedback.IncidentID,
	})

	if feedback.Rating < 1 || feedback.Rating > 5 {
		return fmt.Errorf("service: %w", ErrInvalidRating)
	}
	if _, err := s.incidents.GetByID(ctx, feedback.IncidentID); err != nil {
		return fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.repo.Create(ctx, feedback); err != nil {
		if errors.Is(err, ErrFeedbackExists) {
			log.Warn("Duplicate feedback rejected")
		} else {
			log.WithError(err).Error("Failed to create feedback in repository")
		}
		return fmt.Errorf("service: could not submit feedback: %w", err)
	}
	log.Info("Feedback submitted")
	return nil
}

func (s *feedbackService) ListFeedback(ctx context.Context) ([]*models.Feedback, error) {
	feedback, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list feedback: %w", err)
	}
	return feedback, nil
}
