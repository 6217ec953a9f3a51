package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/megazord/team-search/internal/domain"
)

// TeamRepository defines persistence access for teams and memberships.
type TeamRepository interface {
	CreateWithVacancies(ctx context.Context, team *domain.Team, vacancies []domain.Vacancy) ([]domain.Vacancy, error)
	Rename(ctx context.Context, teamID, name string) error
	ReplaceVacancies(ctx context.Context, teamID string, vacancies []domain.Vacancy) ([]domain.Vacancy, error)
	Delete(ctx context.Context, teamID string) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListByHackathon(ctx context.Context, hackathonID string) ([]domain.Team, error)

	AddMember(ctx context.Context, teamID, accountID string) (bool, error)
	RemoveMember(ctx context.Context, teamID, accountID string) error
	ListMembers(ctx context.Context, teamID string) ([]domain.Account, error)
	CountMembers(ctx context.Context, teamID string) (int, error)
	TeamForAccount(ctx context.Context, hackathonID, accountID string) (*domain.Team, error)
	SetCreator(ctx context.Context, teamID, accountID string) error
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository returns a Postgres-backed implementation.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

func insertVacancies(ctx context.Context, tx pgx.Tx, teamID string, vacancies []domain.Vacancy) ([]domain.Vacancy, error) {
	const insertVacancy = `INSERT INTO vacancies (team_id, name) VALUES ($1, $2) RETURNING id`
	const insertKeyword = `INSERT INTO vacancy_keywords (vacancy_id, text) VALUES ($1, $2)`

	created := make([]domain.Vacancy, 0, len(vacancies))
	for _, v := range vacancies {
		v.TeamID = teamID
		if err := tx.QueryRow(ctx, insertVacancy, teamID, v.Name).Scan(&v.ID); err != nil {
			return nil, err
		}
		for _, kw := range v.Keywords {
			if _, err := tx.Exec(ctx, insertKeyword, v.ID, kw); err != nil {
				return nil, err
			}
		}
		created = append(created, v)
	}
	return created, nil
}

// CreateWithVacancies persists the team, its initial vacancies and the
// creator membership in one transaction, so a mid-sequence failure never
// leaves a partial aggregate.
func (r *teamRepository) CreateWithVacancies(ctx context.Context, team *domain.Team, vacancies []domain.Vacancy) ([]domain.Vacancy, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertTeam = `
        INSERT INTO teams (hackathon_id, creator_id, name)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	if err := tx.QueryRow(ctx, insertTeam, team.HackathonID, team.CreatorID, team.Name).
		Scan(&team.ID, &team.CreatedAt); err != nil {
		return nil, err
	}

	const insertMember = `INSERT INTO team_members (team_id, account_id) VALUES ($1, $2)`
	if _, err := tx.Exec(ctx, insertMember, team.ID, team.CreatorID); err != nil {
		return nil, err
	}

	created, err := insertVacancies(ctx, tx, team.ID, vacancies)
	if err != nil {
		return nil, err
	}

	return created, tx.Commit(ctx)
}

func (r *teamRepository) Rename(ctx context.Context, teamID, name string) error {
	const query = `UPDATE teams SET name=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, name, teamID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ReplaceVacancies swaps the whole vacancy set of a team atomically.
func (r *teamRepository) ReplaceVacancies(ctx context.Context, teamID string, vacancies []domain.Vacancy) ([]domain.Vacancy, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM vacancies WHERE team_id=$1`, teamID); err != nil {
		return nil, err
	}

	created, err := insertVacancies(ctx, tx, teamID, vacancies)
	if err != nil {
		return nil, err
	}

	return created, tx.Commit(ctx)
}

func (r *teamRepository) Delete(ctx context.Context, teamID string) error {
	const query = `DELETE FROM teams WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, teamID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const teamColumns = `id, hackathon_id, creator_id, name, created_at`

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var team domain.Team
	if err := row.Scan(&team.ID, &team.HackathonID, &team.CreatorID, &team.Name, &team.CreatedAt); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	const query = `SELECT ` + teamColumns + ` FROM teams WHERE id=$1`
	return scanTeam(r.pool.QueryRow(ctx, query, id))
}

func (r *teamRepository) ListByHackathon(ctx context.Context, hackathonID string) ([]domain.Team, error) {
	const query = `SELECT ` + teamColumns + ` FROM teams WHERE hackathon_id=$1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, hackathonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *team)
	}
	return teams, rows.Err()
}

func (r *teamRepository) AddMember(ctx context.Context, teamID, accountID string) (bool, error) {
	const query = `
        INSERT INTO team_members (team_id, account_id) VALUES ($1, $2)
        ON CONFLICT DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query, teamID, accountID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *teamRepository) RemoveMember(ctx context.Context, teamID, accountID string) error {
	const query = `DELETE FROM team_members WHERE team_id=$1 AND account_id=$2`
	_, err := r.pool.Exec(ctx, query, teamID, accountID)
	return err
}

func (r *teamRepository) ListMembers(ctx context.Context, teamID string) ([]domain.Account, error) {
	const query = `
        SELECT ` + prefixedAccountColumns + `
        FROM accounts a
        JOIN team_members m ON m.account_id = a.id
        WHERE m.team_id=$1
        ORDER BY m.joined_at`
	return queryAccounts(ctx, r.pool, query, teamID)
}

func (r *teamRepository) CountMembers(ctx context.Context, teamID string) (int, error) {
	const query = `SELECT COUNT(*) FROM team_members WHERE team_id=$1`
	var count int
	err := r.pool.QueryRow(ctx, query, teamID).Scan(&count)
	return count, err
}

// TeamForAccount finds the team within a hackathon that the account
// belongs to. Returns pgx.ErrNoRows when the account is teamless.
func (r *teamRepository) TeamForAccount(ctx context.Context, hackathonID, accountID string) (*domain.Team, error) {
	const query = `
        SELECT t.id, t.hackathon_id, t.creator_id, t.name, t.created_at
        FROM teams t
        JOIN team_members m ON m.team_id = t.id
        WHERE t.hackathon_id=$1 AND m.account_id=$2`
	return scanTeam(r.pool.QueryRow(ctx, query, hackathonID, accountID))
}

func (r *teamRepository) SetCreator(ctx context.Context, teamID, accountID string) error {
	const query = `UPDATE teams SET creator_id=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, accountID, teamID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
