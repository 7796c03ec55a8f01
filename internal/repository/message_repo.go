package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentbridge/backend/internal/models"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// PostSystemMessage appends a system-authored message to a conversation.
func (r *MessageRepo) PostSystemMessage(ctx context.Context, conversationID uuid.UUID, body string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, sender_role, body)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), conversationID, models.SystemActorID, models.SenderRoleSystem, body)
	return err
}
