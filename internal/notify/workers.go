package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/talentbridge/backend/internal/models"
)

// NotificationStore persists candidate-facing notices.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Messenger posts system messages into a conversation.
type Messenger interface {
	PostSystemMessage(ctx context.Context, conversationID uuid.UUID, body string) error
}

type CandidateUnlockNoticeWorker struct {
	river.WorkerDefaults[CandidateUnlockNoticeArgs]
	notifications NotificationStore
	logger        *slog.Logger
}

func NewCandidateUnlockNoticeWorker(notifications NotificationStore, logger *slog.Logger) *CandidateUnlockNoticeWorker {
	return &CandidateUnlockNoticeWorker{notifications: notifications, logger: logger}
}

func (w *CandidateUnlockNoticeWorker) Work(ctx context.Context, job *river.Job[CandidateUnlockNoticeArgs]) error {
	args := job.Args
	n := &models.Notification{
		ID:     uuid.New(),
		UserID: args.CandidateID,
		Kind:   models.NotificationKindProfileUnlocked,
		Body:   "A hiring company has unlocked your profile.",
	}
	if err := w.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create unlock notification: %w", err)
	}
	w.logger.Info("candidate unlock notice delivered", "candidate_id", args.CandidateID, "unlock_id", args.UnlockID)
	return nil
}

type PipelineChatNoticeWorker struct {
	river.WorkerDefaults[PipelineChatNoticeArgs]
	messages Messenger
	logger   *slog.Logger
}

func NewPipelineChatNoticeWorker(messages Messenger, logger *slog.Logger) *PipelineChatNoticeWorker {
	return &PipelineChatNoticeWorker{messages: messages, logger: logger}
}

func (w *PipelineChatNoticeWorker) Work(ctx context.Context, job *river.Job[PipelineChatNoticeArgs]) error {
	args := job.Args
	body := fmt.Sprintf("Application status updated: %s to %s.",
		humanStatus(args.OldStatus), humanStatus(args.NewStatus))
	if err := w.messages.PostSystemMessage(ctx, args.ConversationID, body); err != nil {
		return fmt.Errorf("post system message: %w", err)
	}
	w.logger.Info("pipeline chat notice delivered", "conversation_id", args.ConversationID, "application_id", args.ApplicationID)
	return nil
}

func humanStatus(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
