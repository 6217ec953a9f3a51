package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/megazord/team-search/internal/domain"
)

// HackathonRepository defines persistence access for hackathons and
// their invite, participant and role sets.
type HackathonRepository interface {
	Create(ctx context.Context, hackathon *domain.Hackathon, roles []string, inviteEmails []string) error
	Update(ctx context.Context, hackathon *domain.Hackathon) error
	SetStatus(ctx context.Context, id string, status domain.HackathonStatus) error
	GetByID(ctx context.Context, id string) (*domain.Hackathon, error)
	List(ctx context.Context) ([]domain.Hackathon, error)
	ListForAccount(ctx context.Context, accountID string) ([]domain.Hackathon, error)

	InviteEmail(ctx context.Context, hackathonID, address string) (bool, error)
	ListInvitedEmails(ctx context.Context, hackathonID string) ([]domain.Email, error)
	IsInvited(ctx context.Context, hackathonID, address string) (bool, error)

	AddParticipant(ctx context.Context, hackathonID, accountID string) (bool, error)
	RemoveParticipant(ctx context.Context, hackathonID, accountID string) error
	ListParticipants(ctx context.Context, hackathonID string) ([]domain.Account, error)
	IsParticipant(ctx context.Context, hackathonID, accountID string) (bool, error)

	ListRoles(ctx context.Context, hackathonID string) ([]domain.Role, error)
	GetRole(ctx context.Context, roleID string) (*domain.Role, error)
	AssignRole(ctx context.Context, roleID, hackathonID, accountID string) error
	RoleNamesByAccount(ctx context.Context, hackathonID string) (map[string]string, error)
}

type hackathonRepository struct {
	pool *pgxpool.Pool
}

// NewHackathonRepository returns a Postgres-backed implementation.
func NewHackathonRepository(pool *pgxpool.Pool) HackathonRepository {
	return &hackathonRepository{pool: pool}
}

// Create persists the hackathon together with its roles and initial
// invite set in a single transaction.
func (r *hackathonRepository) Create(ctx context.Context, hackathon *domain.Hackathon, roles []string, inviteEmails []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertHackathon = `
        INSERT INTO hackathons (creator_id, name, description, min_participants, max_participants, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	if err := tx.QueryRow(ctx, insertHackathon,
		hackathon.CreatorID,
		hackathon.Name,
		hackathon.Description,
		hackathon.MinParticipants,
		hackathon.MaxParticipants,
		hackathon.Status,
	).Scan(&hackathon.ID, &hackathon.CreatedAt, &hackathon.UpdatedAt); err != nil {
		return err
	}

	const insertRole = `INSERT INTO roles (hackathon_id, name) VALUES ($1, $2) ON CONFLICT (hackathon_id, name) DO NOTHING`
	for _, name := range roles {
		if _, err := tx.Exec(ctx, insertRole, hackathon.ID, name); err != nil {
			return err
		}
	}

	for _, address := range inviteEmails {
		if _, err := linkInvite(ctx, tx, hackathon.ID, address); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *hackathonRepository) Update(ctx context.Context, hackathon *domain.Hackathon) error {
	const query = `
        UPDATE hackathons
        SET name=$1, description=$2, min_participants=$3, max_participants=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		hackathon.Name,
		hackathon.Description,
		hackathon.MinParticipants,
		hackathon.MaxParticipants,
		hackathon.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *hackathonRepository) SetStatus(ctx context.Context, id string, status domain.HackathonStatus) error {
	const query = `UPDATE hackathons SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const hackathonColumns = `id, creator_id, name, description, min_participants, max_participants, status, created_at, updated_at`

func scanHackathon(row pgx.Row) (*domain.Hackathon, error) {
	var h domain.Hackathon
	if err := row.Scan(
		&h.ID,
		&h.CreatorID,
		&h.Name,
		&h.Description,
		&h.MinParticipants,
		&h.MaxParticipants,
		&h.Status,
		&h.CreatedAt,
		&h.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *hackathonRepository) GetByID(ctx context.Context, id string) (*domain.Hackathon, error) {
	const query = `SELECT ` + hackathonColumns + ` FROM hackathons WHERE id=$1`
	return scanHackathon(r.pool.QueryRow(ctx, query, id))
}

func (r *hackathonRepository) List(ctx context.Context) ([]domain.Hackathon, error) {
	const query = `SELECT ` + hackathonColumns + ` FROM hackathons ORDER BY created_at`
	return r.queryHackathons(ctx, query)
}

func (r *hackathonRepository) ListForAccount(ctx context.Context, accountID string) ([]domain.Hackathon, error) {
	const query = `
        SELECT ` + hackathonColumns + ` FROM hackathons h
        WHERE h.creator_id=$1
           OR EXISTS (SELECT 1 FROM hackathon_participants p WHERE p.hackathon_id=h.id AND p.account_id=$1)
        ORDER BY h.created_at`
	return r.queryHackathons(ctx, query, accountID)
}

func (r *hackathonRepository) queryHackathons(ctx context.Context, query string, args ...any) ([]domain.Hackathon, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hackathons []domain.Hackathon
	for rows.Next() {
		h, err := scanHackathon(rows)
		if err != nil {
			return nil, err
		}
		hackathons = append(hackathons, *h)
	}
	return hackathons, rows.Err()
}

// linkInvite ensures the standalone email record exists and links it to
// the hackathon. Returns false when the address was already invited.
func linkInvite(ctx context.Context, tx pgx.Tx, hackathonID, address string) (bool, error) {
	const ensureEmail = `
        INSERT INTO emails (address) VALUES ($1)
        ON CONFLICT (address) DO UPDATE SET address=EXCLUDED.address
        RETURNING id`

	var emailID string
	if err := tx.QueryRow(ctx, ensureEmail, address).Scan(&emailID); err != nil {
		return false, err
	}

	const link = `
        INSERT INTO hackathon_emails (hackathon_id, email_id) VALUES ($1, $2)
        ON CONFLICT DO NOTHING`
	cmd, err := tx.Exec(ctx, link, hackathonID, emailID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *hackathonRepository) InviteEmail(ctx context.Context, hackathonID, address string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	added, err := linkInvite(ctx, tx, hackathonID, address)
	if err != nil {
		return false, err
	}
	return added, tx.Commit(ctx)
}

func (r *hackathonRepository) ListInvitedEmails(ctx context.Context, hackathonID string) ([]domain.Email, error) {
	const query = `
        SELECT e.id, e.address
        FROM emails e
        JOIN hackathon_emails he ON he.email_id = e.id
        WHERE he.hackathon_id=$1
        ORDER BY e.address`

	rows, err := r.pool.Query(ctx, query, hackathonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []domain.Email
	for rows.Next() {
		var e domain.Email
		if err := rows.Scan(&e.ID, &e.Address); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

func (r *hackathonRepository) IsInvited(ctx context.Context, hackathonID, address string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM hackathon_emails he
            JOIN emails e ON e.id = he.email_id
            WHERE he.hackathon_id=$1 AND e.address=$2
        )`
	var invited bool
	err := r.pool.QueryRow(ctx, query, hackathonID, address).Scan(&invited)
	return invited, err
}

func (r *hackathonRepository) AddParticipant(ctx context.Context, hackathonID, accountID string) (bool, error) {
	const query = `
        INSERT INTO hackathon_participants (hackathon_id, account_id) VALUES ($1, $2)
        ON CONFLICT DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query, hackathonID, accountID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *hackathonRepository) RemoveParticipant(ctx context.Context, hackathonID, accountID string) error {
	const query = `DELETE FROM hackathon_participants WHERE hackathon_id=$1 AND account_id=$2`
	_, err := r.pool.Exec(ctx, query, hackathonID, accountID)
	return err
}

func (r *hackathonRepository) ListParticipants(ctx context.Context, hackathonID string) ([]domain.Account, error) {
	const query = `
        SELECT ` + prefixedAccountColumns + `
        FROM accounts a
        JOIN hackathon_participants p ON p.account_id = a.id
        WHERE p.hackathon_id=$1
        ORDER BY p.joined_at`
	return queryAccounts(ctx, r.pool, query, hackathonID)
}

func (r *hackathonRepository) IsParticipant(ctx context.Context, hackathonID, accountID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM hackathon_participants WHERE hackathon_id=$1 AND account_id=$2
        )`
	var joined bool
	err := r.pool.QueryRow(ctx, query, hackathonID, accountID).Scan(&joined)
	return joined, err
}

func (r *hackathonRepository) ListRoles(ctx context.Context, hackathonID string) ([]domain.Role, error) {
	const query = `SELECT id, hackathon_id, name FROM roles WHERE hackathon_id=$1 ORDER BY name`

	rows, err := r.pool.Query(ctx, query, hackathonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.HackathonID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *hackathonRepository) GetRole(ctx context.Context, roleID string) (*domain.Role, error) {
	const query = `SELECT id, hackathon_id, name FROM roles WHERE id=$1`
	var role domain.Role
	if err := r.pool.QueryRow(ctx, query, roleID).Scan(&role.ID, &role.HackathonID, &role.Name); err != nil {
		return nil, err
	}
	return &role, nil
}

// AssignRole attaches the account to the role. An account holds at most
// one role per hackathon; picking a new one replaces the old.
func (r *hackathonRepository) AssignRole(ctx context.Context, roleID, hackathonID, accountID string) error {
	const query = `
        INSERT INTO role_users (role_id, hackathon_id, account_id) VALUES ($1, $2, $3)
        ON CONFLICT (hackathon_id, account_id) DO UPDATE SET role_id=EXCLUDED.role_id`
	_, err := r.pool.Exec(ctx, query, roleID, hackathonID, accountID)
	return err
}

func (r *hackathonRepository) RoleNamesByAccount(ctx context.Context, hackathonID string) (map[string]string, error) {
	const query = `
        SELECT ru.account_id, r.name
        FROM role_users ru
        JOIN roles r ON r.id = ru.role_id
        WHERE ru.hackathon_id=$1`

	rows, err := r.pool.Query(ctx, query, hackathonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var accountID, name string
		if err := rows.Scan(&accountID, &name); err != nil {
			return nil, err
		}
		names[accountID] = name
	}
	return names, rows.Err()
}
