package dto

import (
	"time"

	"github.com/megazord/team-search/internal/domain"
)

// ResumeRequest payload for creating or editing a resume.
type ResumeRequest struct {
	HackathonID     string   `json:"hackathon_id"`
	Bio             string   `json:"bio"`
	PersonalWebsite string   `json:"personal_website"`
	GitHub          string   `json:"github"`
	HHru            string   `json:"hhru"`
	Telegram        string   `json:"telegram"`
	HardSkills      []string `json:"hard_skills"`
	SoftSkills      []string `json:"soft_skills"`
}

// ResumeResponse is the serialized resume view.
type ResumeResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	HackathonID     string    `json:"hackathon_id"`
	Bio             string    `json:"bio"`
	PersonalWebsite string    `json:"personal_website"`
	GitHub          string    `json:"github"`
	HHru            string    `json:"hhru"`
	Telegram        string    `json:"telegram"`
	HardSkills      []string  `json:"hard_skills"`
	SoftSkills      []string  `json:"soft_skills"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewResumeResponse maps a resume to its serialized view.
func NewResumeResponse(resume domain.Resume) ResumeResponse {
	return ResumeResponse{
		ID:              resume.ID,
		UserID:          resume.UserID,
		HackathonID:     resume.HackathonID,
		Bio:             resume.Bio,
		PersonalWebsite: resume.PersonalWebsite,
		GitHub:          resume.GitHub,
		HHru:            resume.HHru,
		Telegram:        resume.Telegram,
		HardSkills:      resume.HardSkills,
		SoftSkills:      resume.SoftSkills,
		CreatedAt:       resume.CreatedAt,
	}
}

// CreateProjectRequest payload for adding a portfolio project.
type CreateProjectRequest struct {
	ResumeID    string `json:"resume_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProjectResponse is the serialized project view.
type ProjectResponse struct {
	ID          string    `json:"id"`
	ResumeID    string    `json:"resume_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewProjectResponse maps a project to its serialized view.
func NewProjectResponse(project domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID,
		ResumeID:    project.ResumeID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
	}
}

// NewProjectResponses maps a slice of projects.
func NewProjectResponses(projects []domain.Project) []ProjectResponse {
	responses := make([]ProjectResponse, 0, len(projects))
	for _, project := range projects {
		responses = append(responses, NewProjectResponse(project))
	}
	return responses
}
