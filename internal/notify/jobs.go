// Package notify carries the best-effort side channels: candidate
// notifications and conversation system messages. Both run as detached River
// jobs so delivery failures (and retries) stay decoupled from the operation
// that raised them.
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// EnqueueFunc inserts a job. Provided by main as a closure over
// river.Client.Insert; services treat enqueue failures as best-effort.
type EnqueueFunc func(ctx context.Context, args river.JobArgs) error

type CandidateUnlockNoticeArgs struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	CompanyID   uuid.UUID `json:"company_id"`
	UnlockID    uuid.UUID `json:"unlock_id"`
}

func (CandidateUnlockNoticeArgs) Kind() string { return "candidate_unlock_notice" }

type PipelineChatNoticeArgs struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	ApplicationID  uuid.UUID `json:"application_id"`
	OldStatus      string    `json:"old_status"`
	NewStatus      string    `json:"new_status"`
}

func (PipelineChatNoticeArgs) Kind() string { return "pipeline_chat_notice" }
