package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/megazord/team-search/internal/api/dto"
	"github.com/megazord/team-search/internal/auth"
	"github.com/megazord/team-search/internal/service"
	apperrors "github.com/megazord/team-search/pkg/util"
)

// ProfilesHandler exposes account profile endpoints.
type ProfilesHandler struct {
	profiles *service.ProfileService
}

// NewProfilesHandler constructs handler.
func NewProfilesHandler(profiles *service.ProfileService) *ProfilesHandler {
	return &ProfilesHandler{profiles: profiles}
}

// GetSelf handles GET /profile.
func (h *ProfilesHandler) GetSelf(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}
	return c.JSON(dto.NewProfileResponse(*account))
}

// GetByID handles GET /profiles/:id.
func (h *ProfilesHandler) GetByID(c *fiber.Ctx) error {
	account, err := h.profiles.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProfileResponse(*account))
}

// Update handles PATCH /profile.
func (h *ProfilesHandler) Update(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}

	updated, err := h.profiles.Update(c.UserContext(), account, service.ProfileUpdateInput{
		Username:       req.Username,
		Age:            req.Age,
		City:           req.City,
		WorkExperience: req.WorkExperience,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProfileResponse(*updated))
}

// LinkTelegram handles PATCH /profile/telegram.
func (h *ProfilesHandler) LinkTelegram(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Provided token is not valid")
	}

	var req dto.LinkTelegramRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}

	updated, err := h.profiles.LinkTelegram(c.UserContext(), account, req.TelegramID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProfileResponse(*updated))
}
