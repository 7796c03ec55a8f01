package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/talentbridge/backend/internal/apperr"
	"github.com/talentbridge/backend/internal/models"
	"github.com/talentbridge/backend/internal/notify"
	"github.com/talentbridge/backend/internal/repository"
)

type mockApps struct {
	mu          sync.Mutex
	apps        map[uuid.UUID]*models.Application
	history     []*models.StatusHistory
	failHistory bool
	getErr      error
}

func newMockApps() *mockApps {
	return &mockApps{apps: make(map[uuid.UUID]*models.Application)}
}

func (m *mockApps) GetByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	app, ok := m.apps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (m *mockApps) UpdateStatusGuarded(_ context.Context, id uuid.UUID, fromStatus, toStatus string, _ uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok || app.Status != fromStatus {
		return repository.ErrStatusGuardFailed
	}
	app.Status = toStatus
	return nil
}

func (m *mockApps) AppendHistory(_ context.Context, h *models.StatusHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failHistory {
		return errors.New("insert failed")
	}
	m.history = append(m.history, h)
	return nil
}

type mockAuditor struct {
	mu        sync.Mutex
	byOutcome map[string]int
}

func (m *mockAuditor) Record(_ context.Context, _ string, _ *uuid.UUID, outcome string, _ map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byOutcome == nil {
		m.byOutcome = make(map[string]int)
	}
	m.byOutcome[outcome]++
}

type enqueueSpy struct {
	mu   sync.Mutex
	args []river.JobArgs
	err  error
}

func (e *enqueueSpy) enqueue(_ context.Context, args river.JobArgs) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.args = append(e.args, args)
	return nil
}

func newTestService(apps *mockApps, audit *mockAuditor, spy *enqueueSpy) *Service {
	return &Service{
		Apps:    apps,
		Audit:   audit,
		Enqueue: spy.enqueue,
		Logger:  slog.Default(),
	}
}

func seedApplication(apps *mockApps, status string, conversationID *uuid.UUID) uuid.UUID {
	id := uuid.New()
	apps.apps[id] = &models.Application{
		ID:             id,
		CandidateID:    uuid.New(),
		Status:         status,
		ConversationID: conversationID,
	}
	return id
}

func TestTransition_AppendsOneHistoryRow(t *testing.T) {
	apps := newMockApps()
	audit := &mockAuditor{}
	spy := &enqueueSpy{}
	svc := newTestService(apps, audit, spy)

	appID := seedApplication(apps, models.StatusApplied, nil)
	recruiter := uuid.New()

	err := svc.Transition(context.Background(), TransitionRequest{
		ApplicationID: appID,
		NewStatus:     models.StatusPhoneScreenScheduled,
		ChangedBy:     recruiter,
		ChangeType:    models.ChangeTypeManual,
		Notes:         "scheduled for Tuesday",
	})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}

	if got := apps.apps[appID].Status; got != models.StatusPhoneScreenScheduled {
		t.Errorf("status = %q, want %q", got, models.StatusPhoneScreenScheduled)
	}
	if len(apps.history) != 1 {
		t.Fatalf("history rows = %d, want 1", len(apps.history))
	}
	row := apps.history[0]
	if row.OldStatus != models.StatusApplied || row.NewStatus != models.StatusPhoneScreenScheduled {
		t.Errorf("history row = %q -> %q, want %q -> %q", row.OldStatus, row.NewStatus, models.StatusApplied, models.StatusPhoneScreenScheduled)
	}
	if row.ChangedBy != recruiter {
		t.Errorf("ChangedBy = %v, want %v", row.ChangedBy, recruiter)
	}
	if row.Notes == nil || *row.Notes != "scheduled for Tuesday" {
		t.Errorf("Notes not recorded: %v", row.Notes)
	}
	if row.TriggerSource != nil {
		t.Errorf("manual transition must not carry a trigger source, got %q", *row.TriggerSource)
	}
	if audit.byOutcome[models.AuditOutcomeSuccess] != 1 {
		t.Errorf("success audits = %d, want 1", audit.byOutcome[models.AuditOutcomeSuccess])
	}
}

func TestTransition_ChainedRowsLinkStatuses(t *testing.T) {
	apps := newMockApps()
	svc := newTestService(apps, &mockAuditor{}, &enqueueSpy{})

	appID := seedApplication(apps, models.StatusApplied, nil)
	actor := uuid.New()

	for _, status := range []string{models.StatusPhoneScreenScheduled, models.StatusPhoneScreenCompleted} {
		if err := svc.Transition(context.Background(), TransitionRequest{
			ApplicationID: appID,
			NewStatus:     status,
			ChangedBy:     actor,
			ChangeType:    models.ChangeTypeManual,
		}); err != nil {
			t.Fatalf("Transition to %q failed: %v", status, err)
		}
	}

	if len(apps.history) != 2 {
		t.Fatalf("history rows = %d, want 2", len(apps.history))
	}
	if apps.history[1].OldStatus != apps.history[0].NewStatus {
		t.Errorf("second row old status %q does not chain from first row new status %q",
			apps.history[1].OldStatus, apps.history[0].NewStatus)
	}
}

func TestTransition_SameStatusIsNoOp(t *testing.T) {
	apps := newMockApps()
	audit := &mockAuditor{}
	svc := newTestService(apps, audit, &enqueueSpy{})

	appID := seedApplication(apps, models.StatusTechnicalScheduled, nil)

	err := svc.Transition(context.Background(), TransitionRequest{
		ApplicationID: appID,
		NewStatus:     models.StatusTechnicalScheduled,
		ChangedBy:     uuid.New(),
		ChangeType:    models.ChangeTypeAutomatic,
		TriggerSource: models.TriggerSourceEventTimePassed,
	})
	if err != nil {
		t.Fatalf("no-op transition returned error: %v", err)
	}
	if len(apps.history) != 0 {
		t.Errorf("no-op transition appended %d history rows, want 0", len(apps.history))
	}
	if len(audit.byOutcome) != 0 {
		t.Errorf("no-op transition recorded audits: %v", audit.byOutcome)
	}
}

func TestTransition_ConflictWhenGuardFails(t *testing.T) {
	apps := newMockApps()
	svc := newTestService(apps, &mockAuditor{}, &enqueueSpy{})

	appID := seedApplication(apps, models.StatusApplied, nil)

	// Stage the race deterministically: the read sees applied, then the
	// stored status moves before the guarded write lands.
	svc.Apps = &racingApps{mockApps: apps, appID: appID, moveTo: models.StatusRejected}

	err := svc.Transition(context.Background(), TransitionRequest{
		ApplicationID: appID,
		NewStatus:     models.StatusPhoneScreenScheduled,
		ChangedBy:     uuid.New(),
		ChangeType:    models.ChangeTypeManual,
	})
	if !errors.Is(err, ErrTransitionConflict) {
		t.Fatalf("error = %v, want ErrTransitionConflict", err)
	}
	if apperr.CodeOf(err) != apperr.CodeConflict {
		t.Errorf("code = %q, want %q", apperr.CodeOf(err), apperr.CodeConflict)
	}
	if len(apps.history) != 0 {
		t.Errorf("lost race appended %d history rows, want 0", len(apps.history))
	}
}

// racingApps flips the stored status between GetByID and the guarded write.
type racingApps struct {
	*mockApps
	appID  uuid.UUID
	moveTo string
}

func (r *racingApps) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	app, err := r.mockApps.GetByID(ctx, id)
	if err == nil && id == r.appID {
		r.mu.Lock()
		r.apps[r.appID].Status = r.moveTo
		r.mu.Unlock()
	}
	return app, err
}

func TestTransition_UnknownApplication(t *testing.T) {
	svc := newTestService(newMockApps(), &mockAuditor{}, &enqueueSpy{})

	err := svc.Transition(context.Background(), TransitionRequest{
		ApplicationID: uuid.New(),
		NewStatus:     models.StatusRejected,
		ChangedBy:     uuid.New(),
		ChangeType:    models.ChangeTypeManual,
	})
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Errorf("code = %q, want %q", apperr.CodeOf(err), apperr.CodeNotFound)
	}
}

func TestTransition_StoreOutageIsInternal(t *testing.T) {
	apps := newMockApps()
	apps.getErr = errors.New("connection refused")
	svc := newTestService(apps, &mockAuditor{}, &enqueueSpy{})

	err := svc.Transition(context.Background(), TransitionRequest{
		ApplicationID: uuid.New(),
		NewStatus:     models.StatusRejected,
		ChangedBy:     uuid.New(),
		ChangeType:    models.ChangeTypeManual,
	})
	// A persistence failure must not masquerade as a missing application.
	if apperr.CodeOf(err) != apperr.CodeInternal {
		t.Errorf("code = %q, want %q", apperr.CodeOf(err), apperr.CodeInternal)
	}
}

func TestTransition_RejectsInvalidInput(t *testing.T) {
	svc := newTestService(newMockApps(), &mockAuditor{}, &enqueueSpy{})

	cases := []struct {
		name string
		req  TransitionRequest
	}{
		{"unknown status", TransitionRequest{NewStatus: "promoted_to_ceo", ChangeType: models.ChangeTypeManual}},
		{"unknown change type", TransitionRequest{NewStatus: models.StatusRejected, ChangeType: "divine"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.ApplicationID = uuid.New()
			tc.req.ChangedBy = uuid.New()
			err := svc.Transition(context.Background(), tc.req)
			if apperr.CodeOf(err) != apperr.CodeInvalidRequest {
				t.Errorf("code = %q, want %q", apperr.CodeOf(err), apperr.CodeInvalidRequest)
			}
		})
	}
}

func TestTransition_HistoryFailureKeepsStatusWritten(t *testing.T) {
	apps := newMockApps()
	apps.failHistory = true
	audit := &mockAuditor{}
	svc := newTestService(apps, audit, &enqueueSpy{})

	appID := seedApplication(apps, models.StatusApplied, nil)

	err := svc.Transition(context.Background(), TransitionRequest{
		ApplicationID: appID,
		NewStatus:     models.StatusPhoneScreenScheduled,
		ChangedBy:     uuid.New(),
		ChangeType:    models.ChangeTypeManual,
	})
	if apperr.CodeOf(err) != apperr.CodeInternal {
		t.Fatalf("code = %q, want %q", apperr.CodeOf(err), apperr.CodeInternal)
	}

	// The committed write stays committed.
	if got := apps.apps[appID].Status; got != models.StatusPhoneScreenScheduled {
		t.Errorf("status rolled back to %q", got)
	}
	if audit.byOutcome[models.AuditOutcomeFailed] != 1 {
		t.Errorf("failed audits = %d, want 1", audit.byOutcome[models.AuditOutcomeFailed])
	}
}

func TestTransition_EnqueuesChatNoticeWhenConversationLinked(t *testing.T) {
	apps := newMockApps()
	spy := &enqueueSpy{}
	svc := newTestService(apps, &mockAuditor{}, spy)

	conversationID := uuid.New()
	appID := seedApplication(apps, models.StatusOfferExtended, &conversationID)

	err := svc.Transition(context.Background(), TransitionRequest{
		ApplicationID: appID,
		NewStatus:     models.StatusOfferAccepted,
		ChangedBy:     uuid.New(),
		ChangeType:    models.ChangeTypeAutomatic,
		TriggerSource: models.TriggerSourceChatMessage,
	})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}

	if len(spy.args) != 1 {
		t.Fatalf("enqueued jobs = %d, want 1", len(spy.args))
	}
	notice, ok := spy.args[0].(notify.PipelineChatNoticeArgs)
	if !ok {
		t.Fatalf("enqueued %T, want PipelineChatNoticeArgs", spy.args[0])
	}
	if notice.ConversationID != conversationID {
		t.Errorf("ConversationID = %v, want %v", notice.ConversationID, conversationID)
	}
	if notice.OldStatus != models.StatusOfferExtended || notice.NewStatus != models.StatusOfferAccepted {
		t.Errorf("notice = %q -> %q", notice.OldStatus, notice.NewStatus)
	}
}

func TestTransition_EnqueueFailureDoesNotFailTransition(t *testing.T) {
	apps := newMockApps()
	spy := &enqueueSpy{err: errors.New("queue down")}
	svc := newTestService(apps, &mockAuditor{}, spy)

	conversationID := uuid.New()
	appID := seedApplication(apps, models.StatusApplied, &conversationID)

	err := svc.Transition(context.Background(), TransitionRequest{
		ApplicationID: appID,
		NewStatus:     models.StatusPhoneScreenScheduled,
		ChangedBy:     uuid.New(),
		ChangeType:    models.ChangeTypeManual,
	})
	if err != nil {
		t.Fatalf("Transition failed on enqueue error: %v", err)
	}
	if len(apps.history) != 1 {
		t.Errorf("history rows = %d, want 1", len(apps.history))
	}
}
