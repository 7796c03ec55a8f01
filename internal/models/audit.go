package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit outcome enums.
const (
	AuditOutcomeSuccess = "success"
	AuditOutcomeDenied  = "denied"
	AuditOutcomeFailed  = "failed"
)

// AuditLogEntry is one append-only record of a mutating operation.
type AuditLogEntry struct {
	ID        uuid.UUID       `json:"id"`
	Action    string          `json:"action"`
	ActorID   *uuid.UUID      `json:"actor_id,omitempty"`
	Outcome   string          `json:"outcome"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
