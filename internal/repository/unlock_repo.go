package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentbridge/backend/internal/models"
)

type UnlockRepo struct {
	pool *pgxpool.Pool
}

func NewUnlockRepo(pool *pgxpool.Pool) *UnlockRepo {
	return &UnlockRepo{pool: pool}
}

// Find returns the unlock record for (candidate, company), or nil when none
// exists.
func (r *UnlockRepo) Find(ctx context.Context, candidateID, companyID uuid.UUID) (*models.UnlockRecord, error) {
	var u models.UnlockRecord
	err := r.pool.QueryRow(ctx, `
		SELECT id, candidate_id, company_id, unlocked_by, cost, unlocked_at
		FROM unlock_records WHERE candidate_id = $1 AND company_id = $2
	`, candidateID, companyID).Scan(&u.ID, &u.CandidateID, &u.CompanyID, &u.UnlockedBy, &u.Cost, &u.UnlockedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts the record. The unique index on (candidate_id, company_id)
// rejects concurrent duplicates; that case is reported as ErrDuplicateUnlock.
func (r *UnlockRepo) Create(ctx context.Context, u *models.UnlockRecord) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO unlock_records (id, candidate_id, company_id, unlocked_by, cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING unlocked_at
	`, u.ID, u.CandidateID, u.CompanyID, u.UnlockedBy, u.Cost).Scan(&u.UnlockedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateUnlock
	}
	return err
}

func (r *UnlockRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.UnlockRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, candidate_id, company_id, unlocked_by, cost, unlocked_at
		FROM unlock_records WHERE company_id = $1 ORDER BY unlocked_at DESC
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.UnlockRecord
	for rows.Next() {
		var u models.UnlockRecord
		if err := rows.Scan(&u.ID, &u.CandidateID, &u.CompanyID, &u.UnlockedBy, &u.Cost, &u.UnlockedAt); err != nil {
			return nil, err
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}
