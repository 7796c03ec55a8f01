package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentbridge/backend/internal/models"
)

// CreditAccountRepo mutates company credit balances. All decrements go
// through the conditional write so the balance can never go negative, even
// across concurrent processes.
type CreditAccountRepo struct {
	pool *pgxpool.Pool
}

func NewCreditAccountRepo(pool *pgxpool.Pool) *CreditAccountRepo {
	return &CreditAccountRepo{pool: pool}
}

func (r *CreditAccountRepo) GetByCompanyID(ctx context.Context, companyID uuid.UUID) (*models.CreditAccount, error) {
	var a models.CreditAccount
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, balance, created_at, updated_at
		FROM credit_accounts WHERE company_id = $1
	`, companyID).Scan(&a.ID, &a.CompanyID, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Balance returns the current balance for the company's account.
func (r *CreditAccountRepo) Balance(ctx context.Context, companyID uuid.UUID) (int, error) {
	var balance int
	err := r.pool.QueryRow(ctx, `
		SELECT balance FROM credit_accounts WHERE company_id = $1
	`, companyID).Scan(&balance)
	return balance, err
}

// DeductIfAvailable decrements the balance only if the persisted balance is
// still >= amount at write time. Returns ErrBalanceGuardFailed when a
// concurrent caller drained the balance first.
func (r *CreditAccountRepo) DeductIfAvailable(ctx context.Context, companyID uuid.UUID, amount int) (newBalance int, err error) {
	err = r.pool.QueryRow(ctx, `
		UPDATE credit_accounts SET balance = balance - $1, updated_at = now()
		WHERE company_id = $2 AND balance >= $1
		RETURNING balance
	`, amount, companyID).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrBalanceGuardFailed
	}
	return newBalance, err
}

// AddCredits increments the balance and returns the new value. Used for
// compensation after a failed unlock insert.
func (r *CreditAccountRepo) AddCredits(ctx context.Context, companyID uuid.UUID, amount int) (newBalance int, err error) {
	err = r.pool.QueryRow(ctx, `
		UPDATE credit_accounts SET balance = balance + $1, updated_at = now()
		WHERE company_id = $2
		RETURNING balance
	`, amount, companyID).Scan(&newBalance)
	return newBalance, err
}
