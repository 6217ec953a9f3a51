package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/megazord/team-search/pkg/util"
)

// RequireOrganizer ensures the caller carries the organizer flag.
func RequireOrganizer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := AccountFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Provided token is not valid")
		}
		if !account.IsOrganizer {
			return apperrors.NewForbidden("You are not organizer and you can't do this")
		}
		return c.Next()
	}
}
