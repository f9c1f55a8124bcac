package model

import (
	"time"

	"github.com/google/uuid"
)

// HealthEvent is the outcome of one database health check.
type HealthEvent struct {
	ID             uuid.UUID
	DBUp           bool
	LatencySeconds float64
	Error          string
	CheckedAt      time.Time
}

// InitMeta initializes the event ID and check time.
func (e *HealthEvent) InitMeta() {
	e.ID = uuid.New()
	if e.CheckedAt.IsZero() {
		e.CheckedAt = time.Now().UTC()
	}
}
