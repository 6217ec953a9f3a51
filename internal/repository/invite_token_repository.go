package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/megazord/team-search/internal/domain"
)

// ErrTokenInactive reports a redeemed invite token.
var ErrTokenInactive = errors.New("invite token is not active")

// InviteTokenRepository manages single-use invite tokens.
type InviteTokenRepository interface {
	Create(ctx context.Context, token *domain.InviteToken) error
	Claim(ctx context.Context, token string) (*domain.InviteToken, error)
}

type inviteTokenRepository struct {
	pool *pgxpool.Pool
}

// NewInviteTokenRepository constructs repository.
func NewInviteTokenRepository(pool *pgxpool.Pool) InviteTokenRepository {
	return &inviteTokenRepository{pool: pool}
}

func (r *inviteTokenRepository) Create(ctx context.Context, token *domain.InviteToken) error {
	const query = `
        INSERT INTO invite_tokens (token, kind, target_id, email, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		token.Token,
		token.Kind,
		token.TargetID,
		token.Email,
		token.IsActive,
	).Scan(&token.ID, &token.CreatedAt)
}

// Claim flips is_active in a single conditional update, so two
// concurrent redemptions of the same token cannot both succeed. Returns
// pgx.ErrNoRows for an unknown token and ErrTokenInactive for an
// already-claimed one.
func (r *inviteTokenRepository) Claim(ctx context.Context, tokenStr string) (*domain.InviteToken, error) {
	const claim = `
        UPDATE invite_tokens SET is_active=FALSE
        WHERE token=$1 AND is_active=TRUE
        RETURNING id, token, kind, target_id, email, is_active, created_at`

	var token domain.InviteToken
	err := r.pool.QueryRow(ctx, claim, tokenStr).Scan(
		&token.ID,
		&token.Token,
		&token.Kind,
		&token.TargetID,
		&token.Email,
		&token.IsActive,
		&token.CreatedAt,
	)
	if err == nil {
		return &token, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invite_tokens WHERE token=$1)`, tokenStr).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrTokenInactive
	}
	return nil, pgx.ErrNoRows
}
