package service

import (
	"context"
	"strings"

	"github.com/megazord/team-search/internal/domain"
	"github.com/megazord/team-search/internal/repository"
	apperrors "github.com/megazord/team-search/pkg/util"
)

// ResumeInput carries the fields of a resume create or edit.
type ResumeInput struct {
	HackathonID     string
	Bio             string
	PersonalWebsite string
	GitHub          string
	HHru            string
	Telegram        string
	HardSkills      []string
	SoftSkills      []string
}

// ProjectInput carries the fields of a portfolio project.
type ProjectInput struct {
	ResumeID    string
	Name        string
	Description string
}

// ResumeService owns resumes and their portfolio projects.
type ResumeService struct {
	resumes    repository.ResumeRepository
	hackathons repository.HackathonRepository
}

// NewResumeService constructs a ResumeService.
func NewResumeService(resumes repository.ResumeRepository, hackathons repository.HackathonRepository) *ResumeService {
	return &ResumeService{resumes: resumes, hackathons: hackathons}
}

// Create registers the caller's resume for a hackathon. One resume per
// (user, hackathon); a duplicate surfaces as 409 from the storage
// constraint.
func (s *ResumeService) Create(ctx context.Context, account *domain.Account, input ResumeInput) (*domain.Resume, error) {
	if _, err := s.hackathons.GetByID(ctx, input.HackathonID); err != nil {
		return nil, apperrors.MapError(err)
	}
	isParticipant, err := s.hackathons.IsParticipant(ctx, input.HackathonID, account.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !isParticipant {
		return nil, apperrors.NewBadRequest("You are not a participant of this hackathon")
	}

	resume := &domain.Resume{
		UserID:          account.ID,
		HackathonID:     input.HackathonID,
		Bio:             input.Bio,
		PersonalWebsite: strings.TrimSpace(input.PersonalWebsite),
		GitHub:          strings.TrimSpace(input.GitHub),
		HHru:            strings.TrimSpace(input.HHru),
		Telegram:        strings.TrimSpace(input.Telegram),
		HardSkills:      cleanTags(input.HardSkills),
		SoftSkills:      cleanTags(input.SoftSkills),
	}
	if err := s.resumes.Create(ctx, resume); err != nil {
		return nil, apperrors.MapError(err)
	}
	return resume, nil
}

// Get returns the caller's resume for a hackathon.
func (s *ResumeService) Get(ctx context.Context, account *domain.Account, hackathonID string) (*domain.Resume, error) {
	resume, err := s.resumes.GetByUserAndHackathon(ctx, account.ID, hackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return resume, nil
}

// Update rewrites the caller's resume for a hackathon, replacing both
// tag sets.
func (s *ResumeService) Update(ctx context.Context, account *domain.Account, input ResumeInput) (*domain.Resume, error) {
	resume, err := s.resumes.GetByUserAndHackathon(ctx, account.ID, input.HackathonID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	resume.Bio = input.Bio
	resume.PersonalWebsite = strings.TrimSpace(input.PersonalWebsite)
	resume.GitHub = strings.TrimSpace(input.GitHub)
	resume.HHru = strings.TrimSpace(input.HHru)
	resume.Telegram = strings.TrimSpace(input.Telegram)
	resume.HardSkills = cleanTags(input.HardSkills)
	resume.SoftSkills = cleanTags(input.SoftSkills)

	if err := s.resumes.Update(ctx, resume); err != nil {
		return nil, apperrors.MapError(err)
	}
	return resume, nil
}

// CreateProject attaches a portfolio project to the caller's resume.
func (s *ResumeService) CreateProject(ctx context.Context, account *domain.Account, input ProjectInput) (*domain.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("Project name is required")
	}
	resume, err := s.resumes.GetByID(ctx, input.ResumeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if resume.UserID != account.ID {
		return nil, apperrors.NewForbidden("You are not the owner of this resume")
	}

	project := &domain.Project{
		ResumeID:    resume.ID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	}
	if err := s.resumes.CreateProject(ctx, project); err != nil {
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

// ListProjects returns the projects of a resume.
func (s *ResumeService) ListProjects(ctx context.Context, resumeID string) ([]domain.Project, error) {
	if _, err := s.resumes.GetByID(ctx, resumeID); err != nil {
		return nil, apperrors.MapError(err)
	}
	projects, err := s.resumes.ListProjects(ctx, resumeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return projects, nil
}

func cleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, tag)
	}
	return cleaned
}
