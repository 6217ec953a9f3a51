package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/megazord/team-search/internal/api/dto"
	"github.com/megazord/team-search/internal/auth"
	"github.com/megazord/team-search/internal/service"
	apperrors "github.com/megazord/team-search/pkg/util"
)

// TeamsHandler exposes team, vacancy, application, matching and
// analytics endpoints.
type TeamsHandler struct {
	teams    *service.TeamService
	matching *service.MatchingService
}

// NewTeamsHandler constructs handler.
func NewTeamsHandler(teams *service.TeamService, matching *service.MatchingService) *TeamsHandler {
	return &TeamsHandler{teams: teams, matching: matching}
}

// Create handles POST /teams/create.
func (h *TeamsHandler) Create(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.HackathonID == "" {
		return apperrors.NewValidationError("Hackathon id is required")
	}

	view, err := h.teams.Create(c.UserContext(), account, service.CreateTeamInput{
		HackathonID: req.HackathonID,
		Name:        req.Name,
		Vacancies:   vacancyInputs(req.Vacancies),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTeamViewResponse(*view))
}

// List handles GET /teams?hackathon_id=...
func (h *TeamsHandler) List(c *fiber.Ctx) error {
	hackathonID := c.Query("hackathon_id")
	if hackathonID == "" {
		return apperrors.NewValidationError("hackathon_id query parameter is required")
	}
	teams, err := h.teams.ListByHackathon(c.UserContext(), hackathonID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTeamResponses(teams))
}

// Get handles GET /teams/:id.
func (h *TeamsHandler) Get(c *fiber.Ctx) error {
	view, err := h.teams.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTeamViewResponse(*view))
}

// Update handles PATCH /teams/:id.
func (h *TeamsHandler) Update(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.UpdateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}

	input := service.UpdateTeamInput{Name: req.Name}
	if req.Vacancies != nil {
		vacancies := vacancyInputs(*req.Vacancies)
		input.Vacancies = &vacancies
	}

	view, err := h.teams.Update(c.UserContext(), account, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTeamViewResponse(*view))
}

// Delete handles DELETE /teams/:id.
func (h *TeamsHandler) Delete(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}
	if err := h.teams.Delete(c.UserContext(), account, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Join handles POST /teams/join-team.
func (h *TeamsHandler) Join(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.JoinTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.Token == "" {
		return apperrors.NewValidationError("Token is required")
	}

	view, err := h.teams.JoinByToken(c.UserContext(), account, req.Token)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTeamViewResponse(*view))
}

// Invite handles POST /teams/:id/add_user.
func (h *TeamsHandler) Invite(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.TeamInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}

	if err := h.teams.Invite(c.UserContext(), account, c.Params("id"), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"detail": "Invitation has been sent"})
}

// RemoveMember handles POST /teams/:id/remove_user.
func (h *TeamsHandler) RemoveMember(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.TeamMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("User id is required")
	}

	if err := h.teams.RemoveMember(c.UserContext(), account, c.Params("id"), req.UserID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"detail": "Member has been removed"})
}

// Leave handles POST /teams/leave.
func (h *TeamsHandler) Leave(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.LeaveTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.TeamID == "" {
		return apperrors.NewValidationError("Team id is required")
	}

	if err := h.teams.Leave(c.UserContext(), account, req.TeamID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"detail": "You have left the team"})
}

// Apply handles POST /teams/apply_for_job.
func (h *TeamsHandler) Apply(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.VacancyID == "" {
		return apperrors.NewValidationError("Vacancy id is required")
	}

	apply, err := h.teams.Apply(c.UserContext(), account, req.VacancyID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":         apply.ID,
		"team_id":    apply.TeamID,
		"vacancy_id": apply.VacancyID,
		"created_at": apply.CreatedAt,
	})
}

// AcceptApplication handles POST /teams/accept_application.
func (h *TeamsHandler) AcceptApplication(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.ApplicationDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.ApplyID == "" {
		return apperrors.NewValidationError("Apply id is required")
	}

	view, err := h.teams.AcceptApplication(c.UserContext(), account, req.ApplyID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTeamViewResponse(*view))
}

// DeclineApplication handles POST /teams/decline_application.
func (h *TeamsHandler) DeclineApplication(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.ApplicationDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.ApplyID == "" {
		return apperrors.NewValidationError("Apply id is required")
	}

	if err := h.teams.DeclineApplication(c.UserContext(), account, req.ApplyID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"detail": "Application has been declined"})
}

// ListApplies handles GET /teams/get_applies_for_team?team_id=...
func (h *TeamsHandler) ListApplies(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}
	teamID := c.Query("team_id")
	if teamID == "" {
		return apperrors.NewValidationError("team_id query parameter is required")
	}

	views, err := h.teams.ListApplies(c.UserContext(), account, teamID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewApplyResponses(views))
}

// ListVacancies handles GET /teams/team_vacancies?team_id=...
func (h *TeamsHandler) ListVacancies(c *fiber.Ctx) error {
	teamID := c.Query("team_id")
	if teamID == "" {
		return apperrors.NewValidationError("team_id query parameter is required")
	}
	vacancies, err := h.teams.ListVacancies(c.UserContext(), teamID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewVacancyResponses(vacancies))
}

// SuggestUsers handles GET /teams/suggest_users_for_vacancy/:id.
func (h *TeamsHandler) SuggestUsers(c *fiber.Ctx) error {
	suggestions, err := h.matching.SuggestUsersForVacancy(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserSuggestionResponses(suggestions))
}

// SuggestVacancies handles GET /teams/suggest_vacancies_for_resume/:id.
func (h *TeamsHandler) SuggestVacancies(c *fiber.Ctx) error {
	suggestions, err := h.matching.SuggestVacanciesForResume(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewVacancySuggestionResponses(suggestions))
}

// Merge handles POST /teams/merge/:team1_id/:team2_id.
func (h *TeamsHandler) Merge(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}
	view, err := h.teams.Merge(c.UserContext(), account, c.Params("team1_id"), c.Params("team2_id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTeamViewResponse(*view))
}

// Analytics handles GET /teams/analytic/:hackathon_id.
func (h *TeamsHandler) Analytics(c *fiber.Ctx) error {
	analytics, err := h.teams.Analytics(c.UserContext(), c.Params("hackathon_id"))
	if err != nil {
		return err
	}
	return c.JSON(analytics)
}

// ExperienceAnalytics handles GET /teams/analytic_difficulty/:hackathon_id.
func (h *TeamsHandler) ExperienceAnalytics(c *fiber.Ctx) error {
	result, err := h.teams.ExperienceByTeam(c.UserContext(), c.Params("hackathon_id"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// SkillAnalytics handles GET /teams/analytic_skills/:hackathon_id.
func (h *TeamsHandler) SkillAnalytics(c *fiber.Ctx) error {
	result, err := h.teams.TopDemandedSkills(c.UserContext(), c.Params("hackathon_id"), 3)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func vacancyInputs(payloads []dto.VacancyPayload) []service.VacancyInput {
	inputs := make([]service.VacancyInput, 0, len(payloads))
	for _, payload := range payloads {
		inputs = append(inputs, service.VacancyInput{
			Name:     payload.Name,
			Keywords: payload.Keywords,
		})
	}
	return inputs
}
