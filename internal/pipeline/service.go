// Package pipeline owns every transition of an application's status. Each
// real transition writes the status with a compare-and-set against the
// observed value and appends exactly one history row; input arrives from
// three independent trigger sources (manual, calendar sweep, chat heuristic).
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talentbridge/backend/internal/apperr"
	"github.com/talentbridge/backend/internal/models"
	"github.com/talentbridge/backend/internal/notify"
	"github.com/talentbridge/backend/internal/repository"
)

const auditAction = "status_transition"

// ErrTransitionConflict means a concurrent transition from another trigger
// source won the race. Callers must re-read before deciding to retry; the
// conflicting transition already produced its own history row.
var ErrTransitionConflict = errors.New("application status changed concurrently")

// TransitionRequest describes one requested status change with its
// provenance.
type TransitionRequest struct {
	ApplicationID uuid.UUID
	NewStatus     string
	ChangedBy     uuid.UUID
	ChangeType    string
	TriggerSource string
	TriggerID     *uuid.UUID
	Notes         string
}

// Applications is the storage interface for the engine. UpdateStatusGuarded
// must be conditional on the expected prior status and report a lost race as
// repository.ErrStatusGuardFailed.
type Applications interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	UpdateStatusGuarded(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, changedBy uuid.UUID) error
	AppendHistory(ctx context.Context, h *models.StatusHistory) error
}

// Auditor records transitions in the audit log.
type Auditor interface {
	Record(ctx context.Context, action string, actorID *uuid.UUID, outcome string, metadata map[string]any)
}

type Service struct {
	Apps    Applications
	Audit   Auditor
	Enqueue notify.EnqueueFunc
	Logger  *slog.Logger
}

// Transition applies one status change. Requesting the current status is a
// no-op (idempotent against duplicate identical triggers) and appends no
// history. A history-append failure after the committed status write is
// surfaced without rolling the status back; the caller must re-read before
// retrying.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) error {
	if !models.IsValidStatus(req.NewStatus) {
		return apperr.Newf(apperr.CodeInvalidRequest, "Unknown application status %q.", req.NewStatus)
	}
	if !models.IsValidChangeType(req.ChangeType) {
		return apperr.Newf(apperr.CodeInvalidRequest, "Unknown change type %q.", req.ChangeType)
	}

	app, err := s.Apps.GetByID(ctx, req.ApplicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Wrap(apperr.CodeNotFound, "Application not found.", err)
		}
		s.Logger.Error("load application", "application_id", req.ApplicationID, "error", err)
		return apperr.Wrap(apperr.CodeInternal, "Failed to load application.", err)
	}

	if app.Status == req.NewStatus {
		return nil
	}

	if err := s.Apps.UpdateStatusGuarded(ctx, req.ApplicationID, app.Status, req.NewStatus, req.ChangedBy); err != nil {
		if errors.Is(err, repository.ErrStatusGuardFailed) {
			return apperr.Wrap(apperr.CodeConflict,
				"Application status changed concurrently. Re-read before retrying.", ErrTransitionConflict)
		}
		s.Logger.Error("status write failed", "application_id", req.ApplicationID, "new_status", req.NewStatus, "error", err)
		return apperr.Wrap(apperr.CodeInternal, "Failed to update application status.", err)
	}

	history := &models.StatusHistory{
		ID:            uuid.New(),
		ApplicationID: req.ApplicationID,
		OldStatus:     app.Status,
		NewStatus:     req.NewStatus,
		ChangedBy:     req.ChangedBy,
		ChangeType:    req.ChangeType,
	}
	if req.TriggerSource != "" {
		history.TriggerSource = &req.TriggerSource
	}
	if req.TriggerID != nil {
		history.TriggerID = req.TriggerID
	}
	if req.Notes != "" {
		history.Notes = &req.Notes
	}
	if err := s.Apps.AppendHistory(ctx, history); err != nil {
		// The status write is already committed; report the gap instead of
		// pretending the transition failed.
		s.Logger.Error("history append failed after committed status write",
			"application_id", req.ApplicationID, "old_status", app.Status, "new_status", req.NewStatus, "error", err)
		s.Audit.Record(ctx, auditAction, &req.ChangedBy, models.AuditOutcomeFailed, map[string]any{
			"application_id": req.ApplicationID,
			"old_status":     app.Status,
			"new_status":     req.NewStatus,
			"error":          "history append failed after status write",
		})
		return apperr.Wrap(apperr.CodeInternal,
			"Status was updated but recording history failed. Re-read before retrying.", err)
	}

	s.Audit.Record(ctx, auditAction, &req.ChangedBy, models.AuditOutcomeSuccess, map[string]any{
		"application_id": req.ApplicationID,
		"old_status":     app.Status,
		"new_status":     req.NewStatus,
		"change_type":    req.ChangeType,
		"trigger_source": req.TriggerSource,
	})

	// Best-effort conversation notice; never undoes the committed
	// transition.
	if app.ConversationID != nil {
		if err := s.Enqueue(ctx, notify.PipelineChatNoticeArgs{
			ConversationID: *app.ConversationID,
			ApplicationID:  req.ApplicationID,
			OldStatus:      app.Status,
			NewStatus:      req.NewStatus,
		}); err != nil {
			s.Logger.Error("enqueue chat notice", "application_id", req.ApplicationID, "error", err)
		}
	}

	return nil
}
