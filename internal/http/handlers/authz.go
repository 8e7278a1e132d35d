package handlers

import (
	"strings"

	applog "weddingsite/internal/log"
	"weddingsite/internal/services"

	"github.com/gofiber/fiber/v2"
)

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// RequireAdmin rejects requests without a valid admin bearer token.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		claims, err := auth.Verify(tok)
		if err != nil {
			applog.Security(c, "access.denied.admin", map[string]any{"has_token": tok != ""})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		c.Locals(applog.AdminKey, claims.Subject)
		return c.Next()
	}
}

// OptionalAdmin marks the request as admin when a valid token is present and
// lets it through either way.
func OptionalAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := bearerToken(c); tok != "" {
			if claims, err := auth.Verify(tok); err == nil {
				c.Locals(applog.AdminKey, claims.Subject)
			}
		}
		return c.Next()
	}
}

func isAdmin(c *fiber.Ctx) bool {
	id, ok := c.Locals(applog.AdminKey).(string)
	return ok && id != ""
}
