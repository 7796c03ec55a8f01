package models

import (
	"time"

	"github.com/google/uuid"
)

// CreditAccount is the company's unlock-credit balance. The balance is never
// written directly; it moves only through the guarded decrement / increment
// queries in the repository layer.
type CreditAccount struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	Balance   int       `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
