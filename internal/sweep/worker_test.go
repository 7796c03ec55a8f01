package sweep

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/talentbridge/backend/internal/apperr"
	"github.com/talentbridge/backend/internal/models"
	"github.com/talentbridge/backend/internal/pipeline"
)

type mockEvents struct {
	due        []*models.CalendarEvent
	completed  []uuid.UUID
	markErr    error
	lastWindow time.Duration
}

func (m *mockEvents) DuePending(_ context.Context, window time.Duration) ([]*models.CalendarEvent, error) {
	m.lastWindow = window
	// Mirror the store: completed events never reappear.
	var pending []*models.CalendarEvent
	for _, ev := range m.due {
		if ev.Status == models.EventStatusPending {
			pending = append(pending, ev)
		}
	}
	return pending, nil
}

func (m *mockEvents) MarkCompleted(_ context.Context, id uuid.UUID) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.completed = append(m.completed, id)
	for _, ev := range m.due {
		if ev.ID == id {
			ev.Status = models.EventStatusCompleted
		}
	}
	return nil
}

type mockPipeline struct {
	err  error
	reqs []pipeline.TransitionRequest
}

func (m *mockPipeline) Transition(_ context.Context, req pipeline.TransitionRequest) error {
	m.reqs = append(m.reqs, req)
	return m.err
}

func dueEvent(eventType string) *models.CalendarEvent {
	now := time.Now()
	return &models.CalendarEvent{
		ID:            uuid.New(),
		ApplicationID: uuid.New(),
		EventType:     eventType,
		Status:        models.EventStatusPending,
		StartsAt:      now.Add(-90 * time.Minute),
		EndsAt:        now.Add(-30 * time.Minute),
	}
}

func runSweep(t *testing.T, w *Worker) error {
	t.Helper()
	return w.Work(context.Background(), &river.Job[EventSweepArgs]{Args: EventSweepArgs{}})
}

func TestSweep_AdvancesPipelineAndCompletesEvent(t *testing.T) {
	ev := dueEvent(models.EventTypeTechnicalTest)
	events := &mockEvents{due: []*models.CalendarEvent{ev}}
	pl := &mockPipeline{}
	w := NewWorker(events, pl, slog.Default())

	if err := runSweep(t, w); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(pl.reqs) != 1 {
		t.Fatalf("transitions = %d, want 1", len(pl.reqs))
	}
	req := pl.reqs[0]
	if req.NewStatus != models.StatusTechnicalCompleted {
		t.Errorf("NewStatus = %q, want %q", req.NewStatus, models.StatusTechnicalCompleted)
	}
	if req.ChangedBy != models.SystemActorID {
		t.Errorf("ChangedBy = %v, want system actor", req.ChangedBy)
	}
	if req.ChangeType != models.ChangeTypeAutomatic || req.TriggerSource != models.TriggerSourceEventTimePassed {
		t.Errorf("provenance = %q/%q", req.ChangeType, req.TriggerSource)
	}
	if req.TriggerID == nil || *req.TriggerID != ev.ID {
		t.Errorf("TriggerID = %v, want event id %v", req.TriggerID, ev.ID)
	}
	if len(events.completed) != 1 || events.completed[0] != ev.ID {
		t.Errorf("completed = %v, want [%v]", events.completed, ev.ID)
	}
}

func TestSweep_ScansOneHourWindow(t *testing.T) {
	events := &mockEvents{}
	w := NewWorker(events, &mockPipeline{}, slog.Default())

	if err := runSweep(t, w); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	// Only events that ended within the last hour may fire transitions;
	// anything older stays pending for manual review.
	if events.lastWindow != time.Hour {
		t.Errorf("lookback window = %v, want %v", events.lastWindow, time.Hour)
	}
}

func TestSweep_SecondPassIsNoOp(t *testing.T) {
	ev := dueEvent(models.EventTypeScreening)
	events := &mockEvents{due: []*models.CalendarEvent{ev}}
	pl := &mockPipeline{}
	w := NewWorker(events, pl, slog.Default())

	if err := runSweep(t, w); err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	if err := runSweep(t, w); err != nil {
		t.Fatalf("second pass failed: %v", err)
	}

	if len(pl.reqs) != 1 {
		t.Errorf("transitions after two passes = %d, want 1", len(pl.reqs))
	}
	if len(events.completed) != 1 {
		t.Errorf("completions after two passes = %d, want 1", len(events.completed))
	}
}

func TestSweep_UnknownEventTypeStillCompletes(t *testing.T) {
	ev := dueEvent("casual_coffee_chat")
	events := &mockEvents{due: []*models.CalendarEvent{ev}}
	pl := &mockPipeline{}
	w := NewWorker(events, pl, slog.Default())

	if err := runSweep(t, w); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(pl.reqs) != 0 {
		t.Errorf("unknown event type fired %d transitions", len(pl.reqs))
	}
	if len(events.completed) != 1 {
		t.Errorf("event was not marked completed")
	}
}

func TestSweep_ConflictStillCompletesEvent(t *testing.T) {
	ev := dueEvent(models.EventTypeFinalRound)
	events := &mockEvents{due: []*models.CalendarEvent{ev}}
	pl := &mockPipeline{err: apperr.Wrap(apperr.CodeConflict, "conflict", pipeline.ErrTransitionConflict)}
	w := NewWorker(events, pl, slog.Default())

	if err := runSweep(t, w); err != nil {
		t.Fatalf("sweep failed on conflict: %v", err)
	}
	if len(events.completed) != 1 {
		t.Errorf("conflicting event must still complete so it never refires")
	}
}

func TestSweep_StorageErrorLeavesEventPending(t *testing.T) {
	ev := dueEvent(models.EventTypeInterview)
	events := &mockEvents{due: []*models.CalendarEvent{ev}}
	pl := &mockPipeline{err: apperr.Wrap(apperr.CodeInternal, "db down", errors.New("connection refused"))}
	w := NewWorker(events, pl, slog.Default())

	if err := runSweep(t, w); err == nil {
		t.Fatal("expected sweep error on storage failure")
	}
	if len(events.completed) != 0 {
		t.Errorf("failed event must stay pending for retry, got completions %v", events.completed)
	}
	if ev.Status != models.EventStatusPending {
		t.Errorf("status = %q, want pending", ev.Status)
	}
}
