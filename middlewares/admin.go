package middlewares

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/gofiber/fiber/v2"
)

// AdminAuth guards the seeding endpoints with a shared-secret signature:
// hmac-sha256 over ADMIN_CODE+ADMIN_SECRET keyed with ADMIN_SECRET.
func AdminAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Signature string `json:"signature"`
		}

		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "INVALID_JSON",
			})
		}

		adminCode := os.Getenv("ADMIN_CODE")
		adminSecret := os.Getenv("ADMIN_SECRET")

		h := hmac.New(sha256.New, []byte(adminSecret))
		h.Write([]byte(adminCode + adminSecret))
		expected := hex.EncodeToString(h.Sum(nil))

		if body.Signature == "" || !hmac.Equal([]byte(body.Signature), []byte(expected)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "INVALID_SIGNATURE",
			})
		}

		return c.Next()
	}
}
