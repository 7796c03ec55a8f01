package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentbridge/backend/internal/models"
)

// CandidateRepo is read-only: candidate profiles are created and edited
// upstream, outside this core.
type CandidateRepo struct {
	pool *pgxpool.Pool
}

func NewCandidateRepo(pool *pgxpool.Pool) *CandidateRepo {
	return &CandidateRepo{pool: pool}
}

func (r *CandidateRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	var c models.Candidate
	err := r.pool.QueryRow(ctx, `
		SELECT id, full_name, email, headline, location, skills, years_experience, created_at, updated_at
		FROM candidates WHERE id = $1
	`, id).Scan(&c.ID, &c.FullName, &c.Email, &c.Headline, &c.Location, &c.Skills, &c.YearsExperience, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
