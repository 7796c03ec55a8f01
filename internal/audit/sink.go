// Package audit appends mutating operations to the append-only audit log.
// Recording is best-effort: a failed append is logged and never propagated,
// so the primary transaction's outcome is unaffected.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talentbridge/backend/internal/models"
)

type Store interface {
	Create(ctx context.Context, e *models.AuditLogEntry) error
}

type Sink struct {
	store  Store
	logger *slog.Logger
}

func NewSink(store Store, logger *slog.Logger) *Sink {
	return &Sink{store: store, logger: logger}
}

// Record appends one audit entry. The write uses a context detached from the
// caller's cancellation so an abandoned request still leaves its trace.
func (s *Sink) Record(ctx context.Context, action string, actorID *uuid.UUID, outcome string, metadata map[string]any) {
	var raw json.RawMessage
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			s.logger.Error("audit metadata marshal", "action", action, "error", err)
		} else {
			raw = b
		}
	}
	entry := &models.AuditLogEntry{
		ID:       uuid.New(),
		Action:   action,
		ActorID:  actorID,
		Outcome:  outcome,
		Metadata: raw,
	}
	if err := s.store.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("audit append failed", "action", action, "outcome", outcome, "error", err)
	}
}
