// Package unlock implements the credit-metered profile unlock transaction:
// one credit, charged exactly once, safe under concurrent duplicate calls,
// with compensation when the grant cannot be recorded.
package unlock

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talentbridge/backend/internal/apperr"
	"github.com/talentbridge/backend/internal/auth"
	"github.com/talentbridge/backend/internal/models"
	"github.com/talentbridge/backend/internal/notify"
	"github.com/talentbridge/backend/internal/repository"
)

const auditAction = "unlock_profile"

// CandidateReader is the read-only view of the profile store.
type CandidateReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
}

// CreditAccounts is the guarded balance interface. DeductIfAvailable must be
// a conditional write: it succeeds only if the persisted balance is still >=
// amount at write time.
type CreditAccounts interface {
	Balance(ctx context.Context, companyID uuid.UUID) (int, error)
	DeductIfAvailable(ctx context.Context, companyID uuid.UUID, amount int) (int, error)
	AddCredits(ctx context.Context, companyID uuid.UUID, amount int) (int, error)
}

// UnlockStore persists visibility grants. Find returns nil when no record
// exists; Create reports a concurrent duplicate as
// repository.ErrDuplicateUnlock.
type UnlockStore interface {
	Find(ctx context.Context, candidateID, companyID uuid.UUID) (*models.UnlockRecord, error)
	Create(ctx context.Context, u *models.UnlockRecord) error
}

// Auditor records every branch of the transaction.
type Auditor interface {
	Record(ctx context.Context, action string, actorID *uuid.UUID, outcome string, metadata map[string]any)
}

// Result is the successful unlock payload.
type Result struct {
	Candidate        *models.Candidate
	CreditsRemaining int
	Record           *models.UnlockRecord
}

type Service struct {
	Candidates CandidateReader
	Accounts   CreditAccounts
	Unlocks    UnlockStore
	Audit      Auditor
	Enqueue    notify.EnqueueFunc
	Logger     *slog.Logger
}

// Unlock grants actor's company permanent visibility into the candidate's
// profile for exactly one credit. Repeated calls for the same pair return
// the original record without charging again.
func (s *Service) Unlock(ctx context.Context, candidateID uuid.UUID, actor *auth.Actor) (*Result, error) {
	if !actor.IsRecruiter() {
		s.Audit.Record(ctx, auditAction, actorID(actor), models.AuditOutcomeDenied, map[string]any{
			"candidate_id": candidateID,
			"role":         roleOf(actor),
			"error":        "actor is not a recruiter with a company profile",
		})
		return nil, apperr.New(apperr.CodeUnauthorized, "Only recruiters with a company profile can unlock candidates.")
	}
	companyID := *actor.CompanyID

	// Idempotent short-circuit: an existing record is the authoritative
	// grant, no matter what the balance looks like now.
	existing, err := s.Unlocks.Find(ctx, candidateID, companyID)
	if err != nil {
		return nil, s.failInternal(ctx, actor, candidateID, "lookup unlock record", err)
	}
	if existing != nil {
		return s.existingRecordResult(ctx, actor, companyID, existing)
	}

	balance, err := s.Accounts.Balance(ctx, companyID)
	if err != nil {
		return nil, s.failInternal(ctx, actor, candidateID, "read balance", err)
	}
	if balance < models.UnlockCost {
		s.Audit.Record(ctx, auditAction, &actor.ID, models.AuditOutcomeFailed, map[string]any{
			"candidate_id": candidateID,
			"company_id":   companyID,
			"role":         actor.Role,
			"balance":      balance,
			"error":        "insufficient credits",
		})
		return nil, insufficientCredits(balance)
	}

	// Verify the candidate before any charge is applied. Absence is the
	// caller's 404; anything else is a persistence failure.
	candidate, err := s.Candidates.GetByID(ctx, candidateID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, s.failInternal(ctx, actor, candidateID, "load candidate", err)
		}
		s.Audit.Record(ctx, auditAction, &actor.ID, models.AuditOutcomeFailed, map[string]any{
			"candidate_id": candidateID,
			"company_id":   companyID,
			"role":         actor.Role,
			"error":        "candidate not found",
		})
		return nil, apperr.New(apperr.CodeNotFound, "Candidate not found.")
	}

	newBalance, err := s.Accounts.DeductIfAvailable(ctx, companyID, models.UnlockCost)
	if err != nil {
		if errors.Is(err, repository.ErrBalanceGuardFailed) {
			// A concurrent unlock drained the balance between our read and
			// the conditional write.
			current, readErr := s.Accounts.Balance(ctx, companyID)
			if readErr != nil {
				current = 0
			}
			s.Audit.Record(ctx, auditAction, &actor.ID, models.AuditOutcomeFailed, map[string]any{
				"candidate_id": candidateID,
				"company_id":   companyID,
				"role":         actor.Role,
				"balance":      current,
				"error":        "balance guard failed",
			})
			return nil, insufficientCredits(current)
		}
		return nil, s.failInternal(ctx, actor, candidateID, "deduct credits", err)
	}

	record := &models.UnlockRecord{
		ID:          uuid.New(),
		CandidateID: candidateID,
		CompanyID:   companyID,
		UnlockedBy:  actor.ID,
		Cost:        models.UnlockCost,
	}
	if err := s.Unlocks.Create(ctx, record); err != nil {
		// Unconditional compensation: the charge must not outlive a failed
		// grant. Runs detached from the caller's cancellation so a client
		// disconnect cannot skip the refund.
		restored := s.compensate(ctx, companyID, candidateID)

		if errors.Is(err, repository.ErrDuplicateUnlock) {
			// A concurrent call recorded the grant first; fold into the
			// idempotent success path.
			winner, findErr := s.Unlocks.Find(ctx, candidateID, companyID)
			if findErr == nil && winner != nil {
				return s.existingRecordResult(ctx, actor, companyID, winner)
			}
			return nil, s.failInternal(ctx, actor, candidateID, "resolve concurrent unlock", err)
		}

		s.Audit.Record(ctx, auditAction, &actor.ID, models.AuditOutcomeFailed, map[string]any{
			"candidate_id": candidateID,
			"company_id":   companyID,
			"role":         actor.Role,
			"refunded":     restored,
			"error":        err.Error(),
		})
		return nil, apperr.Wrap(apperr.CodeInternal,
			"Failed to record the unlock. Your credits were refunded.", err)
	}

	s.Audit.Record(ctx, auditAction, &actor.ID, models.AuditOutcomeSuccess, map[string]any{
		"candidate_id": candidateID,
		"company_id":   companyID,
		"role":         actor.Role,
		"balance":      newBalance,
		"unlock_id":    record.ID,
	})

	// Best-effort candidate notification: its failure never rolls back the
	// committed unlock.
	if err := s.Enqueue(ctx, notify.CandidateUnlockNoticeArgs{
		CandidateID: candidateID,
		CompanyID:   companyID,
		UnlockID:    record.ID,
	}); err != nil {
		s.Logger.Error("enqueue unlock notice", "candidate_id", candidateID, "error", err)
	}

	candidate.Visible = true
	return &Result{Candidate: candidate, CreditsRemaining: newBalance, Record: record}, nil
}

// existingRecordResult serves the idempotent path: return the original grant
// with the current balance, charging nothing.
func (s *Service) existingRecordResult(ctx context.Context, actor *auth.Actor, companyID uuid.UUID, record *models.UnlockRecord) (*Result, error) {
	candidate, err := s.Candidates.GetByID(ctx, record.CandidateID)
	if err != nil {
		return nil, s.failInternal(ctx, actor, record.CandidateID, "load unlocked candidate", err)
	}
	balance, err := s.Accounts.Balance(ctx, companyID)
	if err != nil {
		return nil, s.failInternal(ctx, actor, record.CandidateID, "read balance", err)
	}
	s.Audit.Record(ctx, auditAction, &actor.ID, models.AuditOutcomeSuccess, map[string]any{
		"candidate_id":     record.CandidateID,
		"company_id":       companyID,
		"role":             actor.Role,
		"balance":          balance,
		"unlock_id":        record.ID,
		"already_unlocked": true,
	})
	candidate.Visible = true
	return &Result{Candidate: candidate, CreditsRemaining: balance, Record: record}, nil
}

// compensate restores the pre-decrement balance. Compensation failure is a
// balance-integrity incident: it is logged loudly but the original error
// still surfaces to the caller.
func (s *Service) compensate(ctx context.Context, companyID, candidateID uuid.UUID) bool {
	if _, err := s.Accounts.AddCredits(context.WithoutCancel(ctx), companyID, models.UnlockCost); err != nil {
		s.Logger.Error("unlock compensation failed, balance is short",
			"company_id", companyID, "candidate_id", candidateID, "amount", models.UnlockCost, "error", err)
		return false
	}
	return true
}

func (s *Service) failInternal(ctx context.Context, actor *auth.Actor, candidateID uuid.UUID, stage string, err error) error {
	s.Logger.Error("unlock "+stage, "candidate_id", candidateID, "error", err)
	s.Audit.Record(ctx, auditAction, actorID(actor), models.AuditOutcomeFailed, map[string]any{
		"candidate_id": candidateID,
		"role":         roleOf(actor),
		"stage":        stage,
		"error":        err.Error(),
	})
	return apperr.Wrap(apperr.CodeInternal, "Something went wrong. Please try again.", err)
}

func insufficientCredits(balance int) *apperr.Error {
	return apperr.Newf(apperr.CodeInsufficientCredits,
		"Insufficient credits. You have %d credits, but %d is required.", balance, models.UnlockCost)
}

func actorID(a *auth.Actor) *uuid.UUID {
	if a == nil {
		return nil
	}
	return &a.ID
}

func roleOf(a *auth.Actor) string {
	if a == nil {
		return ""
	}
	return a.Role
}
