package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/talentbridge/backend/internal/models"
)

type mockNotifications struct {
	created []*models.Notification
	fail    error
}

func (m *mockNotifications) Create(_ context.Context, n *models.Notification) error {
	if m.fail != nil {
		return m.fail
	}
	cp := *n
	m.created = append(m.created, &cp)
	return nil
}

type mockMessenger struct {
	posted []string
	fail   error
}

func (m *mockMessenger) PostSystemMessage(_ context.Context, _ uuid.UUID, body string) error {
	if m.fail != nil {
		return m.fail
	}
	m.posted = append(m.posted, body)
	return nil
}

func TestCandidateUnlockNoticeWorker(t *testing.T) {
	store := &mockNotifications{}
	w := NewCandidateUnlockNoticeWorker(store, slog.Default())

	args := CandidateUnlockNoticeArgs{CandidateID: uuid.New(), CompanyID: uuid.New(), UnlockID: uuid.New()}
	if err := w.Work(context.Background(), &river.Job[CandidateUnlockNoticeArgs]{Args: args}); err != nil {
		t.Fatalf("Work: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("notifications: got %d, want 1", len(store.created))
	}
	n := store.created[0]
	if n.UserID != args.CandidateID {
		t.Error("notification should target the candidate")
	}
	if n.Kind != models.NotificationKindProfileUnlocked {
		t.Errorf("kind: got %q", n.Kind)
	}
}

func TestCandidateUnlockNoticeWorker_StoreFailure(t *testing.T) {
	w := NewCandidateUnlockNoticeWorker(&mockNotifications{fail: errors.New("down")}, slog.Default())

	err := w.Work(context.Background(), &river.Job[CandidateUnlockNoticeArgs]{Args: CandidateUnlockNoticeArgs{}})
	if err == nil {
		t.Fatal("expected error so River can retry")
	}
}

func TestPipelineChatNoticeWorker(t *testing.T) {
	msgs := &mockMessenger{}
	w := NewPipelineChatNoticeWorker(msgs, slog.Default())

	args := PipelineChatNoticeArgs{
		ConversationID: uuid.New(),
		ApplicationID:  uuid.New(),
		OldStatus:      models.StatusTechnicalScheduled,
		NewStatus:      models.StatusTechnicalCompleted,
	}
	if err := w.Work(context.Background(), &river.Job[PipelineChatNoticeArgs]{Args: args}); err != nil {
		t.Fatalf("Work: %v", err)
	}

	if len(msgs.posted) != 1 {
		t.Fatalf("messages: got %d, want 1", len(msgs.posted))
	}
	body := msgs.posted[0]
	if !strings.Contains(body, "technical scheduled") || !strings.Contains(body, "technical completed") {
		t.Errorf("summary should name both statuses: %q", body)
	}
}
