package models

import (
	"time"

	"github.com/google/uuid"
)

// UnlockCost is the credit price of one profile unlock.
const UnlockCost = 1

// UnlockRecord grants a company permanent visibility into one candidate
// profile. At most one record exists per (candidate, company) — enforced by a
// unique index — and a record is never updated or deleted. Its existence is
// the authoritative visibility grant regardless of later balance changes.
//
// JSON tags are camelCase: the record is returned verbatim by the unlock API.
type UnlockRecord struct {
	ID          uuid.UUID `json:"id"`
	CandidateID uuid.UUID `json:"candidateId"`
	CompanyID   uuid.UUID `json:"companyId"`
	UnlockedBy  uuid.UUID `json:"unlockedBy"`
	Cost        int       `json:"cost"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}
