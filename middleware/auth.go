package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the user identity set by the Gateway and
// rejects requests that arrive without one. Identity issuance itself lives in
// the auth service; by the time a request gets here, X-User-ID is either the
// verified caller or absent.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized - please log in",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// OptionalUserContextMiddleware attaches the user identity when present but
// lets anonymous requests through. Public leaderboard reads use it so
// includeMe can still resolve the caller's own rank.
func OptionalUserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID := c.Get("X-User-ID"); userID != "" {
			c.Locals("user_id", userID)
		}
		return c.Next()
	}
}

// UserID reads the authenticated user id from the request context, or "" for
// anonymous requests.
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}
