package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/megazord/team-search/internal/domain"
)

// VacancyRepository defines persistence access for vacancies, their
// keywords and pending applications.
type VacancyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Vacancy, error)
	ListByTeam(ctx context.Context, teamID string) ([]domain.Vacancy, error)
	ListByHackathon(ctx context.Context, hackathonID string) ([]domain.Vacancy, error)

	CreateApply(ctx context.Context, apply *domain.Apply) error
	GetApply(ctx context.Context, id string) (*domain.Apply, error)
	DeleteApply(ctx context.Context, id string) error
	DeleteAppliesForApplicant(ctx context.Context, teamID, applicantID string) error
	ListAppliesByTeam(ctx context.Context, teamID string) ([]domain.Apply, error)
}

type vacancyRepository struct {
	pool *pgxpool.Pool
}

// NewVacancyRepository returns a Postgres-backed implementation.
func NewVacancyRepository(pool *pgxpool.Pool) VacancyRepository {
	return &vacancyRepository{pool: pool}
}

func (r *vacancyRepository) GetByID(ctx context.Context, id string) (*domain.Vacancy, error) {
	const query = `SELECT id, team_id, name FROM vacancies WHERE id=$1`

	var v domain.Vacancy
	if err := r.pool.QueryRow(ctx, query, id).Scan(&v.ID, &v.TeamID, &v.Name); err != nil {
		return nil, err
	}

	keywords, err := r.keywordsFor(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	v.Keywords = keywords
	return &v, nil
}

func (r *vacancyRepository) keywordsFor(ctx context.Context, vacancyID string) ([]string, error) {
	const query = `SELECT text FROM vacancy_keywords WHERE vacancy_id=$1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, vacancyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		keywords = append(keywords, text)
	}
	return keywords, rows.Err()
}

func (r *vacancyRepository) ListByTeam(ctx context.Context, teamID string) ([]domain.Vacancy, error) {
	const query = `
        SELECT v.id, v.team_id, v.name, k.text
        FROM vacancies v
        LEFT JOIN vacancy_keywords k ON k.vacancy_id = v.id
        WHERE v.team_id=$1
        ORDER BY v.id, k.id`
	return r.queryVacanciesWithKeywords(ctx, query, teamID)
}

func (r *vacancyRepository) ListByHackathon(ctx context.Context, hackathonID string) ([]domain.Vacancy, error) {
	const query = `
        SELECT v.id, v.team_id, v.name, k.text
        FROM vacancies v
        JOIN teams t ON t.id = v.team_id
        LEFT JOIN vacancy_keywords k ON k.vacancy_id = v.id
        WHERE t.hackathon_id=$1
        ORDER BY t.created_at, v.id, k.id`
	return r.queryVacanciesWithKeywords(ctx, query, hackathonID)
}

func (r *vacancyRepository) queryVacanciesWithKeywords(ctx context.Context, query string, args ...any) ([]domain.Vacancy, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vacancies []domain.Vacancy
	index := make(map[string]int)
	for rows.Next() {
		var (
			id, teamID, name string
			keyword          *string
		)
		if err := rows.Scan(&id, &teamID, &name, &keyword); err != nil {
			return nil, err
		}
		i, seen := index[id]
		if !seen {
			vacancies = append(vacancies, domain.Vacancy{ID: id, TeamID: teamID, Name: name})
			i = len(vacancies) - 1
			index[id] = i
		}
		if keyword != nil {
			vacancies[i].Keywords = append(vacancies[i].Keywords, *keyword)
		}
	}
	return vacancies, rows.Err()
}

func (r *vacancyRepository) CreateApply(ctx context.Context, apply *domain.Apply) error {
	const query = `
        INSERT INTO applies (team_id, vacancy_id, applicant_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, apply.TeamID, apply.VacancyID, apply.ApplicantID).
		Scan(&apply.ID, &apply.CreatedAt)
}

func (r *vacancyRepository) GetApply(ctx context.Context, id string) (*domain.Apply, error) {
	const query = `SELECT id, team_id, vacancy_id, applicant_id, created_at FROM applies WHERE id=$1`

	var apply domain.Apply
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&apply.ID,
		&apply.TeamID,
		&apply.VacancyID,
		&apply.ApplicantID,
		&apply.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &apply, nil
}

func (r *vacancyRepository) DeleteApply(ctx context.Context, id string) error {
	const query = `DELETE FROM applies WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// DeleteAppliesForApplicant clears every pending application by the
// applicant to the team, not only the accepted one.
func (r *vacancyRepository) DeleteAppliesForApplicant(ctx context.Context, teamID, applicantID string) error {
	const query = `DELETE FROM applies WHERE team_id=$1 AND applicant_id=$2`
	_, err := r.pool.Exec(ctx, query, teamID, applicantID)
	return err
}

func (r *vacancyRepository) ListAppliesByTeam(ctx context.Context, teamID string) ([]domain.Apply, error) {
	const query = `
        SELECT id, team_id, vacancy_id, applicant_id, created_at
        FROM applies WHERE team_id=$1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applies []domain.Apply
	for rows.Next() {
		var apply domain.Apply
		if err := rows.Scan(&apply.ID, &apply.TeamID, &apply.VacancyID, &apply.ApplicantID, &apply.CreatedAt); err != nil {
			return nil, err
		}
		applies = append(applies, apply)
	}
	return applies, rows.Err()
}
