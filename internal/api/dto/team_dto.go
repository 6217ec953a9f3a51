package dto

import (
	"time"

	"github.com/megazord/team-search/internal/domain"
	"github.com/megazord/team-search/internal/service"
)

// VacancyPayload is a vacancy inside team create and edit payloads.
type VacancyPayload struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// CreateTeamRequest payload for team creation.
type CreateTeamRequest struct {
	HackathonID string           `json:"hackathon_id"`
	Name        string           `json:"name"`
	Vacancies   []VacancyPayload `json:"vacancies"`
}

// UpdateTeamRequest payload for team edits. A present vacancy list
// replaces the previous set.
type UpdateTeamRequest struct {
	Name      *string           `json:"name"`
	Vacancies *[]VacancyPayload `json:"vacancies"`
}

// JoinTeamRequest payload for redeeming a team invite token.
type JoinTeamRequest struct {
	Token string `json:"token"`
}

// TeamInviteRequest payload for inviting someone to a team.
type TeamInviteRequest struct {
	Email string `json:"email"`
}

// TeamMemberRequest payload targeting a member of a team.
type TeamMemberRequest struct {
	UserID string `json:"user_id"`
}

// LeaveTeamRequest payload for leaving a team.
type LeaveTeamRequest struct {
	TeamID string `json:"team_id"`
}

// ApplyRequest payload for applying to a vacancy.
type ApplyRequest struct {
	VacancyID string `json:"vacancy_id"`
}

// ApplicationDecisionRequest payload for accepting or declining an
// application.
type ApplicationDecisionRequest struct {
	ApplyID string `json:"apply_id"`
}

// VacancyResponse is the serialized vacancy view.
type VacancyResponse struct {
	ID       string   `json:"id"`
	TeamID   string   `json:"team_id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// NewVacancyResponse maps a vacancy to its serialized view.
func NewVacancyResponse(vacancy domain.Vacancy) VacancyResponse {
	return VacancyResponse{
		ID:       vacancy.ID,
		TeamID:   vacancy.TeamID,
		Name:     vacancy.Name,
		Keywords: vacancy.Keywords,
	}
}

// NewVacancyResponses maps a slice of vacancies.
func NewVacancyResponses(vacancies []domain.Vacancy) []VacancyResponse {
	responses := make([]VacancyResponse, 0, len(vacancies))
	for _, vacancy := range vacancies {
		responses = append(responses, NewVacancyResponse(vacancy))
	}
	return responses
}

// TeamResponse is the serialized team view.
type TeamResponse struct {
	ID          string    `json:"id"`
	HackathonID string    `json:"hackathon_id"`
	CreatorID   string    `json:"creator_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTeamResponse maps a team to its serialized view.
func NewTeamResponse(team domain.Team) TeamResponse {
	return TeamResponse{
		ID:          team.ID,
		HackathonID: team.HackathonID,
		CreatorID:   team.CreatorID,
		Name:        team.Name,
		CreatedAt:   team.CreatedAt,
	}
}

// NewTeamResponses maps a slice of teams.
func NewTeamResponses(teams []domain.Team) []TeamResponse {
	responses := make([]TeamResponse, 0, len(teams))
	for _, team := range teams {
		responses = append(responses, NewTeamResponse(team))
	}
	return responses
}

// TeamViewResponse is a team with members and vacancies.
type TeamViewResponse struct {
	Team      TeamResponse      `json:"team"`
	Members   []ProfileResponse `json:"members"`
	Vacancies []VacancyResponse `json:"vacancies"`
}

// NewTeamViewResponse maps a service TeamView.
func NewTeamViewResponse(view service.TeamView) TeamViewResponse {
	return TeamViewResponse{
		Team:      NewTeamResponse(view.Team),
		Members:   NewProfileResponses(view.Members),
		Vacancies: NewVacancyResponses(view.Vacancies),
	}
}

// ApplyResponse pairs an application with its applicant.
type ApplyResponse struct {
	ID        string          `json:"id"`
	TeamID    string          `json:"team_id"`
	VacancyID string          `json:"vacancy_id"`
	Applicant ProfileResponse `json:"applicant"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewApplyResponses maps service ApplyViews.
func NewApplyResponses(views []service.ApplyView) []ApplyResponse {
	responses := make([]ApplyResponse, 0, len(views))
	for _, view := range views {
		responses = append(responses, ApplyResponse{
			ID:        view.Apply.ID,
			TeamID:    view.Apply.TeamID,
			VacancyID: view.Apply.VacancyID,
			Applicant: NewProfileResponse(view.Applicant),
			CreatedAt: view.Apply.CreatedAt,
		})
	}
	return responses
}

// UserSuggestionResponse is a scored candidate for a vacancy.
type UserSuggestionResponse struct {
	Account ProfileResponse `json:"account"`
	Score   int             `json:"score"`
}

// NewUserSuggestionResponses maps matching results.
func NewUserSuggestionResponses(suggestions []service.UserSuggestion) []UserSuggestionResponse {
	responses := make([]UserSuggestionResponse, 0, len(suggestions))
	for _, suggestion := range suggestions {
		responses = append(responses, UserSuggestionResponse{
			Account: NewProfileResponse(suggestion.Account),
			Score:   suggestion.Score,
		})
	}
	return responses
}

// VacancySuggestionResponse is a scored vacancy for a resume.
type VacancySuggestionResponse struct {
	Vacancy VacancyResponse `json:"vacancy"`
	Score   int             `json:"score"`
}

// NewVacancySuggestionResponses maps matching results.
func NewVacancySuggestionResponses(suggestions []service.VacancySuggestion) []VacancySuggestionResponse {
	responses := make([]VacancySuggestionResponse, 0, len(suggestions))
	for _, suggestion := range suggestions {
		responses = append(responses, VacancySuggestionResponse{
			Vacancy: NewVacancyResponse(suggestion.Vacancy),
			Score:   suggestion.Score,
		})
	}
	return responses
}
