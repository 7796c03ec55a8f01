package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentbridge/backend/internal/models"
)

type ApplicationRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

func (r *ApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var a models.Application
	err := r.pool.QueryRow(ctx, `
		SELECT id, candidate_id, job_id, status, conversation_id, status_changed_at, status_changed_by, created_at, updated_at
		FROM applications WHERE id = $1
	`, id).Scan(&a.ID, &a.CandidateID, &a.JobID, &a.Status, &a.ConversationID, &a.StatusChangedAt, &a.StatusChangedBy, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateStatusGuarded writes the new status only if the persisted status
// still equals fromStatus — a compare-and-set against the observed value.
// Returns ErrStatusGuardFailed when a concurrent transition won the race.
func (r *ApplicationRepo) UpdateStatusGuarded(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, changedBy uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE applications
		SET status = $3, status_changed_at = now(), status_changed_by = $4, updated_at = now()
		WHERE id = $1 AND status = $2
	`, id, fromStatus, toStatus, changedBy)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrStatusGuardFailed
	}
	return nil
}

// AppendHistory inserts one provenance row. History rows are never updated
// or deleted.
func (r *ApplicationRepo) AppendHistory(ctx context.Context, h *models.StatusHistory) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO application_status_history
			(id, application_id, old_status, new_status, changed_by, change_type, trigger_source, trigger_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, h.ID, h.ApplicationID, h.OldStatus, h.NewStatus, h.ChangedBy, h.ChangeType, h.TriggerSource, h.TriggerID, h.Notes).Scan(&h.CreatedAt)
}

func (r *ApplicationRepo) HistoryByApplication(ctx context.Context, applicationID uuid.UUID) ([]*models.StatusHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, application_id, old_status, new_status, changed_by, change_type, trigger_source, trigger_id, notes, created_at
		FROM application_status_history WHERE application_id = $1 ORDER BY created_at ASC
	`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.StatusHistory
	for rows.Next() {
		var h models.StatusHistory
		if err := rows.Scan(&h.ID, &h.ApplicationID, &h.OldStatus, &h.NewStatus, &h.ChangedBy, &h.ChangeType, &h.TriggerSource, &h.TriggerID, &h.Notes, &h.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &h)
	}
	return list, rows.Err()
}
