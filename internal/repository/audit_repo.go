package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentbridge/backend/internal/models"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Create(ctx context.Context, e *models.AuditLogEntry) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO audit_log (id, action, actor_id, outcome, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, e.ID, e.Action, e.ActorID, e.Outcome, e.Metadata).Scan(&e.CreatedAt)
}
