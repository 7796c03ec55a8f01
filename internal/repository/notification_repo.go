package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentbridge/backend/internal/models"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, kind, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, n.ID, n.UserID, n.Kind, n.Body).Scan(&n.CreatedAt)
}
