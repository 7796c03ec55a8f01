package models

import (
	"time"

	"github.com/google/uuid"
)

// Calendar event type enums. Each interview type maps to the *_completed
// status the sweep job applies once the event's end time has passed.
const (
	EventTypeScreening     = "screening"
	EventTypeTechnicalTest = "technical_test"
	EventTypeFinalRound    = "final_round"
	EventTypeInterview     = "interview"
)

// Calendar event status enums.
const (
	EventStatusPending   = "pending"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

type CalendarEvent struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	EventType     string    `json:"event_type"`
	Status        string    `json:"status"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
