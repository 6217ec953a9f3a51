package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/megazord/team-search/internal/domain"
)

// ConfirmationCodeRepository manages one-time signup codes. The upsert
// guarantees at most one live code per account.
type ConfirmationCodeRepository interface {
	Upsert(ctx context.Context, code *domain.ConfirmationCode) error
	Get(ctx context.Context, accountID string) (*domain.ConfirmationCode, error)
	Delete(ctx context.Context, accountID string) error
}

type confirmationCodeRepository struct {
	pool *pgxpool.Pool
}

// NewConfirmationCodeRepository constructs repository.
func NewConfirmationCodeRepository(pool *pgxpool.Pool) ConfirmationCodeRepository {
	return &confirmationCodeRepository{pool: pool}
}

func (r *confirmationCodeRepository) Upsert(ctx context.Context, code *domain.ConfirmationCode) error {
	const query = `
        INSERT INTO confirmation_codes (account_id, code, expires_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (account_id) DO UPDATE SET code=EXCLUDED.code, expires_at=EXCLUDED.expires_at`

	_, err := r.pool.Exec(ctx, query, code.AccountID, code.Code, code.ExpiresAt)
	return err
}

func (r *confirmationCodeRepository) Get(ctx context.Context, accountID string) (*domain.ConfirmationCode, error) {
	const query = `
        SELECT account_id, code, expires_at
        FROM confirmation_codes WHERE account_id=$1`

	var code domain.ConfirmationCode
	if err := r.pool.QueryRow(ctx, query, accountID).Scan(&code.AccountID, &code.Code, &code.ExpiresAt); err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *confirmationCodeRepository) Delete(ctx context.Context, accountID string) error {
	const query = `DELETE FROM confirmation_codes WHERE account_id=$1`
	_, err := r.pool.Exec(ctx, query, accountID)
	return err
}
