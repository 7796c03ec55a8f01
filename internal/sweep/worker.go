// Package sweep runs the periodic calendar reconciliation: pending events
// whose end time has passed are marked completed and, where the event type
// implies a pipeline stage, the owning application is advanced.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/talentbridge/backend/internal/apperr"
	"github.com/talentbridge/backend/internal/models"
	"github.com/talentbridge/backend/internal/pipeline"
)

// LookbackWindow bounds how far past an event's end time the sweep will
// still act on it. Events older than this stay pending for manual review
// rather than firing transitions long after the fact.
const LookbackWindow = time.Hour

type EventSweepArgs struct{}

func (EventSweepArgs) Kind() string { return "calendar_event_sweep" }

// Events is the calendar store the sweep reads and updates.
type Events interface {
	DuePending(ctx context.Context, window time.Duration) ([]*models.CalendarEvent, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
}

// Transitioner applies status changes on the sweep's behalf.
type Transitioner interface {
	Transition(ctx context.Context, req pipeline.TransitionRequest) error
}

type Worker struct {
	river.WorkerDefaults[EventSweepArgs]
	events   Events
	pipeline Transitioner
	logger   *slog.Logger
}

func NewWorker(events Events, p Transitioner, logger *slog.Logger) *Worker {
	return &Worker{events: events, pipeline: p, logger: logger}
}

// Work processes one sweep pass. Every due event is marked completed whether
// or not its transition applied; a conflict or no-op just means another
// trigger source got there first, and the event must not fire again on the
// next pass.
func (w *Worker) Work(ctx context.Context, job *river.Job[EventSweepArgs]) error {
	events, err := w.events.DuePending(ctx, LookbackWindow)
	if err != nil {
		return fmt.Errorf("list due events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	var failed int
	for _, ev := range events {
		if err := w.sweepOne(ctx, ev); err != nil {
			failed++
			w.logger.Error("sweep event", "event_id", ev.ID, "event_type", ev.EventType, "error", err)
		}
	}
	w.logger.Info("calendar sweep pass", "due", len(events), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d due events failed to sweep", failed, len(events))
	}
	return nil
}

func (w *Worker) sweepOne(ctx context.Context, ev *models.CalendarEvent) error {
	if newStatus, ok := statusForEvent(ev.EventType); ok {
		eventID := ev.ID
		err := w.pipeline.Transition(ctx, pipeline.TransitionRequest{
			ApplicationID: ev.ApplicationID,
			NewStatus:     newStatus,
			ChangedBy:     models.SystemActorID,
			ChangeType:    models.ChangeTypeAutomatic,
			TriggerSource: models.TriggerSourceEventTimePassed,
			TriggerID:     &eventID,
		})
		switch {
		case err == nil:
			// Applied, or already at the target status.
		case errors.Is(err, pipeline.ErrTransitionConflict):
			w.logger.Info("sweep transition lost race",
				"event_id", ev.ID, "application_id", ev.ApplicationID, "new_status", newStatus)
		case apperr.CodeOf(err) == apperr.CodeNotFound:
			w.logger.Warn("sweep event references missing application",
				"event_id", ev.ID, "application_id", ev.ApplicationID)
		default:
			// Leave the event pending so the next pass retries it.
			return fmt.Errorf("transition to %s: %w", newStatus, err)
		}
	}

	if err := w.events.MarkCompleted(ctx, ev.ID); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// statusForEvent maps a calendar event type to the pipeline status its
// passing implies. Unknown types complete without touching the pipeline.
func statusForEvent(eventType string) (string, bool) {
	switch eventType {
	case models.EventTypeScreening:
		return models.StatusPhoneScreenCompleted, true
	case models.EventTypeTechnicalTest:
		return models.StatusTechnicalCompleted, true
	case models.EventTypeFinalRound:
		return models.StatusFinalRoundCompleted, true
	case models.EventTypeInterview:
		return models.StatusInterviewCompleted, true
	default:
		return "", false
	}
}
