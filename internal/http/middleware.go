package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aquametrics/pluviometro/internal/config"
)

// Actor resolves the acting user for audit logs from the X-Actor header.
// Mutating operations always log who performed them; absent a header the
// actor is "guest", matching the legacy behavior.
func Actor(c *fiber.Ctx) string {
	if a := c.Get("X-Actor"); a != "" {
		return a
	}
	return "guest"
}

// TokenGuard protects the management routes with a static bearer token.
// An empty API_TOKEN leaves them open (local development).
func TokenGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := config.APIToken()
		if token == "" {
			return c.Next()
		}
		auth := c.Get(fiber.HeaderAuthorization)
		if strings.TrimPrefix(auth, "Bearer ") != token {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "não autorizado",
			})
		}
		return c.Next()
	}
}
