package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/megazord/team-search/internal/domain"
)

// ResumeRepository defines persistence access for resumes, their skill
// tags and portfolio projects.
type ResumeRepository interface {
	Create(ctx context.Context, resume *domain.Resume) error
	Update(ctx context.Context, resume *domain.Resume) error
	GetByID(ctx context.Context, id string) (*domain.Resume, error)
	GetByUserAndHackathon(ctx context.Context, userID, hackathonID string) (*domain.Resume, error)
	GitHubLinksByUser(ctx context.Context, hackathonID string) (map[string]string, error)

	CreateProject(ctx context.Context, project *domain.Project) error
	ListProjects(ctx context.Context, resumeID string) ([]domain.Project, error)
}

type resumeRepository struct {
	pool *pgxpool.Pool
}

// NewResumeRepository returns a Postgres-backed implementation.
func NewResumeRepository(pool *pgxpool.Pool) ResumeRepository {
	return &resumeRepository{pool: pool}
}

func replaceTags(ctx context.Context, tx pgx.Tx, table, resumeID string, tags []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE resume_id=$1`, resumeID); err != nil {
		return err
	}
	for _, tag := range tags {
		if _, err := tx.Exec(ctx, `INSERT INTO `+table+` (resume_id, tag_text) VALUES ($1, $2)`, resumeID, tag); err != nil {
			return err
		}
	}
	return nil
}

// Create persists the resume with both tag sets in one transaction. The
// (user_id, hackathon_id) unique constraint surfaces duplicates.
func (r *resumeRepository) Create(ctx context.Context, resume *domain.Resume) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
        INSERT INTO resumes (user_id, hackathon_id, bio, personal_website, github, hhru, telegram)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at`

	if err := tx.QueryRow(ctx, insert,
		resume.UserID,
		resume.HackathonID,
		resume.Bio,
		resume.PersonalWebsite,
		resume.GitHub,
		resume.HHru,
		resume.Telegram,
	).Scan(&resume.ID, &resume.CreatedAt); err != nil {
		return err
	}

	if err := replaceTags(ctx, tx, "resume_hard_skills", resume.ID, resume.HardSkills); err != nil {
		return err
	}
	if err := replaceTags(ctx, tx, "resume_soft_skills", resume.ID, resume.SoftSkills); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *resumeRepository) Update(ctx context.Context, resume *domain.Resume) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const update = `
        UPDATE resumes
        SET bio=$1, personal_website=$2, github=$3, hhru=$4, telegram=$5
        WHERE id=$6`

	cmd, err := tx.Exec(ctx, update,
		resume.Bio,
		resume.PersonalWebsite,
		resume.GitHub,
		resume.HHru,
		resume.Telegram,
		resume.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if err := replaceTags(ctx, tx, "resume_hard_skills", resume.ID, resume.HardSkills); err != nil {
		return err
	}
	if err := replaceTags(ctx, tx, "resume_soft_skills", resume.ID, resume.SoftSkills); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const resumeColumns = `id, user_id, hackathon_id, bio, personal_website, github, hhru, telegram, created_at`

func (r *resumeRepository) scanResume(ctx context.Context, row pgx.Row) (*domain.Resume, error) {
	var resume domain.Resume
	if err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.HackathonID,
		&resume.Bio,
		&resume.PersonalWebsite,
		&resume.GitHub,
		&resume.HHru,
		&resume.Telegram,
		&resume.CreatedAt,
	); err != nil {
		return nil, err
	}

	hard, err := r.tagsFor(ctx, "resume_hard_skills", resume.ID)
	if err != nil {
		return nil, err
	}
	soft, err := r.tagsFor(ctx, "resume_soft_skills", resume.ID)
	if err != nil {
		return nil, err
	}
	resume.HardSkills = hard
	resume.SoftSkills = soft
	return &resume, nil
}

func (r *resumeRepository) tagsFor(ctx context.Context, table, resumeID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT tag_text FROM `+table+` WHERE resume_id=$1 ORDER BY id`, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *resumeRepository) GetByID(ctx context.Context, id string) (*domain.Resume, error) {
	const query = `SELECT ` + resumeColumns + ` FROM resumes WHERE id=$1`
	return r.scanResume(ctx, r.pool.QueryRow(ctx, query, id))
}

func (r *resumeRepository) GetByUserAndHackathon(ctx context.Context, userID, hackathonID string) (*domain.Resume, error) {
	const query = `SELECT ` + resumeColumns + ` FROM resumes WHERE user_id=$1 AND hackathon_id=$2`
	return r.scanResume(ctx, r.pool.QueryRow(ctx, query, userID, hackathonID))
}

// GitHubLinksByUser maps participant account ids to the GitHub link from
// their resume for this hackathon. Used by the roster export.
func (r *resumeRepository) GitHubLinksByUser(ctx context.Context, hackathonID string) (map[string]string, error) {
	const query = `SELECT user_id, github FROM resumes WHERE hackathon_id=$1`

	rows, err := r.pool.Query(ctx, query, hackathonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make(map[string]string)
	for rows.Next() {
		var userID, github string
		if err := rows.Scan(&userID, &github); err != nil {
			return nil, err
		}
		links[userID] = github
	}
	return links, rows.Err()
}

func (r *resumeRepository) CreateProject(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (resume_id, name, description)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, project.ResumeID, project.Name, project.Description).
		Scan(&project.ID, &project.CreatedAt)
}

func (r *resumeRepository) ListProjects(ctx context.Context, resumeID string) ([]domain.Project, error) {
	const query = `
        SELECT id, resume_id, name, description, created_at
        FROM projects WHERE resume_id=$1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(&project.ID, &project.ResumeID, &project.Name, &project.Description, &project.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}
