package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentbridge/backend/internal/models"
)

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

// DuePending lists events still pending whose end time passed within the
// given window. Already-completed events never reappear, which is what makes
// the sweep job idempotent per run.
func (r *EventRepo) DuePending(ctx context.Context, window time.Duration) ([]*models.CalendarEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, application_id, event_type, status, starts_at, ends_at, created_at, updated_at
		FROM calendar_events
		WHERE status = 'pending' AND ends_at <= now() AND ends_at >= now() - $1::interval
		ORDER BY ends_at ASC
	`, window)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.CalendarEvent
	for rows.Next() {
		var e models.CalendarEvent
		if err := rows.Scan(&e.ID, &e.ApplicationID, &e.EventType, &e.Status, &e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

func (r *EventRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE calendar_events SET status = 'completed', updated_at = now() WHERE id = $1
	`, id)
	return err
}
