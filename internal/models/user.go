package models

import (
	"time"

	"github.com/google/uuid"
)

// SystemActorID is the pseudo-user recorded as changed_by for transitions
// applied by scheduled jobs.
var SystemActorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// User role enums.
const (
	RoleRecruiter = "recruiter"
	RoleCandidate = "candidate"
	RoleAdmin     = "admin"
)

type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
