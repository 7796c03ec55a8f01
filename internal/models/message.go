package models

import (
	"time"

	"github.com/google/uuid"
)

// Message sender role enums. System messages are authored by the backend
// (status-change notices in a conversation).
const (
	SenderRoleRecruiter = "recruiter"
	SenderRoleCandidate = "candidate"
	SenderRoleSystem    = "system"
)

type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	SenderRole     string    `json:"sender_role"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

// Notification is a best-effort candidate-facing notice (e.g. "your profile
// was viewed"). Delivery failure never affects the operation that raised it.
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Kind      string     `json:"kind"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Notification kind enums.
const (
	NotificationKindProfileUnlocked = "profile_unlocked"
)
