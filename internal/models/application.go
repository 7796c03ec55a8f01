package models

import (
	"time"

	"github.com/google/uuid"
)

// Application status enums. hired, rejected and withdrawn are terminal;
// rejected/withdrawn are reachable from any non-terminal state. The engine
// does not enforce pipeline ordering — any distinct target status is
// accepted; ordering legality belongs to the callers.
const (
	StatusApplied              = "applied"
	StatusReviewing            = "reviewing"
	StatusPhoneScreenScheduled = "phone_screen_scheduled"
	StatusPhoneScreenCompleted = "phone_screen_completed"
	StatusTechnicalScheduled   = "technical_scheduled"
	StatusTechnicalCompleted   = "technical_completed"
	StatusFinalRoundScheduled  = "final_round_scheduled"
	StatusFinalRoundCompleted  = "final_round_completed"
	StatusInterviewCompleted   = "interview_completed"
	StatusOfferExtended        = "offer_extended"
	StatusOfferAccepted        = "offer_accepted"
	StatusHired                = "hired"
	StatusRejected             = "rejected"
	StatusWithdrawn            = "withdrawn"
)

// Change type enums for status transitions.
const (
	ChangeTypeManual    = "manual"
	ChangeTypeAutomatic = "automatic"
	ChangeTypeSystem    = "system"
)

// Trigger sources recorded on automatic transitions.
const (
	TriggerSourceEventTimePassed = "event_time_passed"
	TriggerSourceChatMessage     = "chat_message"
)

var validStatuses = map[string]bool{
	StatusApplied:              true,
	StatusReviewing:            true,
	StatusPhoneScreenScheduled: true,
	StatusPhoneScreenCompleted: true,
	StatusTechnicalScheduled:   true,
	StatusTechnicalCompleted:   true,
	StatusFinalRoundScheduled:  true,
	StatusFinalRoundCompleted:  true,
	StatusInterviewCompleted:   true,
	StatusOfferExtended:        true,
	StatusOfferAccepted:        true,
	StatusHired:                true,
	StatusRejected:             true,
	StatusWithdrawn:            true,
}

// IsValidStatus reports whether s is one of the 14 application statuses.
func IsValidStatus(s string) bool { return validStatuses[s] }

// IsTerminalStatus reports whether s ends the pipeline.
func IsTerminalStatus(s string) bool {
	return s == StatusHired || s == StatusRejected || s == StatusWithdrawn
}

// IsValidChangeType reports whether t is a known transition change type.
func IsValidChangeType(t string) bool {
	return t == ChangeTypeManual || t == ChangeTypeAutomatic || t == ChangeTypeSystem
}

type Application struct {
	ID              uuid.UUID  `json:"id"`
	CandidateID     uuid.UUID  `json:"candidate_id"`
	JobID           uuid.UUID  `json:"job_id"`
	Status          string     `json:"status"`
	ConversationID  *uuid.UUID `json:"conversation_id,omitempty"`
	StatusChangedAt *time.Time `json:"status_changed_at,omitempty"`
	StatusChangedBy *uuid.UUID `json:"status_changed_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// StatusHistory is one append-only provenance row per real transition.
// Rows are never updated, deleted or reordered.
type StatusHistory struct {
	ID            uuid.UUID  `json:"id"`
	ApplicationID uuid.UUID  `json:"application_id"`
	OldStatus     string     `json:"old_status"`
	NewStatus     string     `json:"new_status"`
	ChangedBy     uuid.UUID  `json:"changed_by"`
	ChangeType    string     `json:"change_type"`
	TriggerSource *string    `json:"trigger_source,omitempty"`
	TriggerID     *uuid.UUID `json:"trigger_id,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
