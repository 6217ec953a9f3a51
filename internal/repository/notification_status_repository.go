package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/megazord/team-search/internal/domain"
)

// NotificationStatusRepository keeps the per-email delivery failure
// ledger. Record replaces the previous state: a fully successful send
// leaves no row behind.
type NotificationStatusRepository interface {
	Record(ctx context.Context, email string, emailSent, telegramSent bool) error
	GetByEmail(ctx context.Context, email string) (*domain.NotificationStatus, error)
}

type notificationStatusRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationStatusRepository constructs repository.
func NewNotificationStatusRepository(pool *pgxpool.Pool) NotificationStatusRepository {
	return &notificationStatusRepository{pool: pool}
}

func (r *notificationStatusRepository) Record(ctx context.Context, email string, emailSent, telegramSent bool) error {
	if emailSent && telegramSent {
		_, err := r.pool.Exec(ctx, `DELETE FROM notification_statuses WHERE email=$1`, email)
		return err
	}

	const upsert = `
        INSERT INTO notification_statuses (email, email_sent, telegram_sent, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (email) DO UPDATE
        SET email_sent=EXCLUDED.email_sent, telegram_sent=EXCLUDED.telegram_sent, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, upsert, email, emailSent, telegramSent)
	return err
}

func (r *notificationStatusRepository) GetByEmail(ctx context.Context, email string) (*domain.NotificationStatus, error) {
	const query = `
        SELECT email, email_sent, telegram_sent, updated_at
        FROM notification_statuses WHERE email=$1`

	var status domain.NotificationStatus
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&status.Email,
		&status.EmailSent,
		&status.TelegramSent,
		&status.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &status, nil
}
