package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/megazord/team-search/internal/api/dto"
	"github.com/megazord/team-search/internal/service"
	apperrors "github.com/megazord/team-search/pkg/util"
)

// AuthHandler exposes signup, activation, signin and password reset.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}

	account, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		IsOrganizer: req.IsOrganizer,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewProfileResponse(*account))
}

// Activate handles POST /auth/activate.
func (h *AuthHandler) Activate(c *fiber.Ctx) error {
	var req dto.ActivateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.Email == "" || req.Code == "" {
		return apperrors.NewValidationError("Email and code are required")
	}

	session, err := h.auth.Activate(c.UserContext(), req.Email, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"account":    dto.NewProfileResponse(session.Account),
	})
}

// ResendCode handles POST /auth/resend_code.
func (h *AuthHandler) ResendCode(c *fiber.Ctx) error {
	var req dto.ResendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.Email == "" {
		return apperrors.NewValidationError("Email is required")
	}

	if err := h.auth.ResendCode(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"detail": "Code has been sent"})
}

// Signin handles POST /auth/signin.
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req dto.SigninRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("Email and password are required")
	}

	session, err := h.auth.Signin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"account":    dto.NewProfileResponse(session.Account),
	})
}

// RequestPasswordReset handles POST /auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.Email == "" {
		return apperrors.NewValidationError("Email is required")
	}

	if err := h.auth.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"detail": "If the email exists, a reset link has been sent"})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Request body is not valid")
	}
	if req.Token == "" || req.Password == "" {
		return apperrors.NewValidationError("Token and password are required")
	}

	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"detail": "Password has been changed"})
}
