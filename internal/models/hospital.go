package models

import "github.com/google/uuid"

type Hospital struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Location Point     `json:"location"`
}

// HospitalSnapshot - копия больницы на момент назначения, а не ссылка
type HospitalSnapshot struct {
	Name     string `json:"name"`
	Location Point  `json:"location"`
}

// Snapshot делает копию для сохранения в инциденте
func (h *Hospital) Snapshot() *HospitalSnapshot {
	return &HospitalSnapshot{Name: h.Name, Location: h.Location}
}
