package handlers

import (
	"bytes"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/megazord/team-search/internal/api/dto"
	"github.com/megazord/team-search/internal/auth"
	"github.com/megazord/team-search/internal/service"
	apperrors "github.com/megazord/team-search/pkg/util"
)

// HackathonsHandler exposes hackathon lifecycle endpoints.
type HackathonsHandler struct {
	hackathons *service.HackathonService
}

// NewHackathonsHandler constructs handler.
func NewHackathonsHandler(hackathons *service.HackathonService) *HackathonsHandler {
	return &HackathonsHandler{hackathons: hackathons}
}

// Create handles POST /hackathons.
func (h *HackathonsHandler) Create(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.CreateHackathonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}

	hackathon, err := h.hackathons.Create(c.UserContext(), account, service.CreateHackathonInput{
		Name:            req.Name,
		Description:     req.Description,
		MinParticipants: req.MinParticipants,
		MaxParticipants: req.MaxParticipants,
		Roles:           req.Roles,
		InviteEmails:    req.InviteEmails,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewHackathonResponse(*hackathon))
}

// List handles GET /hackathons.
func (h *HackathonsHandler) List(c *fiber.Ctx) error {
	hackathons, err := h.hackathons.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewHackathonResponses(hackathons))
}

// ListMine handles GET /myhackathons.
func (h *HackathonsHandler) ListMine(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}
	hackathons, err := h.hackathons.ListForAccount(c.UserContext(), account.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewHackathonResponses(hackathons))
}

// Get handles GET /hackathons/:id.
func (h *HackathonsHandler) Get(c *fiber.Ctx) error {
	hackathon, err := h.hackathons.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewHackathonResponse(*hackathon))
}

// Update handles PATCH /hackathons/:id.
func (h *HackathonsHandler) Update(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.UpdateHackathonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}

	hackathon, err := h.hackathons.Update(c.UserContext(), account, c.Params("id"), service.UpdateHackathonInput{
		Name:            req.Name,
		Description:     req.Description,
		MinParticipants: req.MinParticipants,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewHackathonResponse(*hackathon))
}

// Start handles POST /hackathons/:id/start.
func (h *HackathonsHandler) Start(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}
	hackathon, err := h.hackathons.Start(c.UserContext(), account, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewHackathonResponse(*hackathon))
}

// End handles POST /hackathons/:id/end.
func (h *HackathonsHandler) End(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}
	hackathon, err := h.hackathons.End(c.UserContext(), account, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewHackathonResponse(*hackathon))
}

// Join handles POST /hackathons/join.
func (h *HackathonsHandler) Join(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.JoinHackathonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.Token == "" {
		return apperrors.NewValidationError("Token is required")
	}

	hackathon, err := h.hackathons.Join(c.UserContext(), account, service.JoinHackathonInput{
		Token:  req.Token,
		RoleID: req.RoleID,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewHackathonResponse(*hackathon))
}

// Invite handles POST /hackathons/:id/add_user.
func (h *HackathonsHandler) Invite(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}

	if err := h.hackathons.Invite(c.UserContext(), account, c.Params("id"), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"detail": "Invitation has been sent"})
}

// RemoveParticipant handles POST /hackathons/:id/remove_user.
func (h *HackathonsHandler) RemoveParticipant(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.RemoveParticipantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("User id is required")
	}

	if err := h.hackathons.RemoveParticipant(c.UserContext(), account, c.Params("id"), req.UserID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"detail": "Participant has been removed"})
}

// Summary handles GET /hackathons/:id/summary.
func (h *HackathonsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.hackathons.Summary(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// GetUserTeam handles GET /hackathons/get_user_team/:id.
func (h *HackathonsHandler) GetUserTeam(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}
	team, err := h.hackathons.TeamFor(c.UserContext(), account, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTeamResponse(*team))
}

// UploadCSV handles POST /hackathons/:id/upload_csv.
func (h *HackathonsHandler) UploadCSV(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("A CSV file is required")
	}
	src, err := file.Open()
	if err != nil {
		return apperrors.NewValidationError("CSV file could not be read")
	}
	defer src.Close()

	result, err := h.hackathons.ImportInviteCSV(c.UserContext(), account, c.Params("id"), src)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// ExportCSV handles GET /hackathons/:id/export_csv.
func (h *HackathonsHandler) ExportCSV(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var buf bytes.Buffer
	if err := h.hackathons.ExportRosterCSV(c.UserContext(), account, c.Params("id"), &buf); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="roster.csv"`)
	return c.Send(buf.Bytes())
}
