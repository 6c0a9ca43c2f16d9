package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

type FeedbackRepository struct {
	db *pgxpool.Pool
}

func NewFeedbackRepository(db *pgxpool.Pool) service.FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create сохраняет отзыв; уникальность по инциденту обеспечивает индекс
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	query := `
		INSERT INTO feedback (incident_id, rating, comments)
		VALUES ($1, $2, $3) RETURNING id, submitted_at;
	`
	err := r.db.QueryRow(ctx, query, feedback.IncidentID, feedback.Rating, feedback.Comments).
		Scan(&feedback.ID, &feedback.SubmittedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return fmt.Errorf("incident %s: %w", feedback.IncidentID, service.ErrFeedbackExists)
			case pgerrcode.ForeignKeyViolation:
				return fmt.Errorf("incident %s: %w", feedback.IncidentID, service.ErrIncidentNotFound)
			}
		}
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) List(ctx context.Context) ([]*models.Feedback, error) {
	query := `
		SELECT id, incident_id, rating, comments, submitted_at
		FROM feedback
		ORDER BY submitted_at DESC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Feedback, 0)
	for rows.Next() {
		f := &models.Feedback{}
		if err := rows.Scan(&f.ID, &f.IncidentID, &f.Rating, &f.Comments, &f.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		list = append(list, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return list, nil
}
