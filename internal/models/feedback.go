package models

import (
	"time"

	"github.com/google/uuid"
)

// Feedback - отзыв по инциденту, не больше одного на инцидент
type Feedback struct {
	ID          uuid.UUID `json:"id"`
	IncidentID  uuid.UUID `json:"incident_id"`
	Rating      int       `json:"rating"`
	Comments    string    `json:"comments"`
	SubmittedAt time.Time `json:"submitted_at"`
}
