package middlewares

import (
	"ringwin/helpers"
	"ringwin/services"

	"github.com/gofiber/fiber/v2"
)

// SessionAuth resolves the X-Session-ID header to a user and stores it in
// request locals. Everything money-related sits behind this.
func SessionAuth(svc *services.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Get("X-Session-ID")
		if sid == "" {
			return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "SESSION_ID_REQUIRED")
		}

		user, err := svc.Authenticate(c.UserContext(), sid)
		if err != nil {
			return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_OR_EXPIRED_SESSION")
		}

		c.Locals("user", *user)
		return c.Next()
	}
}
