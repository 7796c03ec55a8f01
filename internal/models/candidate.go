package models

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is the read-only profile served back from the unlock endpoint.
// JSON tags are camelCase because this struct is part of the public API
// contract of POST /unlock-profile.
type Candidate struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Headline        string    `json:"headline,omitempty"`
	Location        string    `json:"location,omitempty"`
	Skills          []string  `json:"skills,omitempty"`
	YearsExperience *int      `json:"yearsExperience,omitempty"`
	// Visible is computed per viewing company: true once an UnlockRecord
	// exists for (candidate, company).
	Visible   bool      `json:"visible"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
