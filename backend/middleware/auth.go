package middleware

import (
	"strings"

	"coursemarket/backend/config"
	"coursemarket/backend/store"
	"coursemarket/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "userID"

// SessionToken returns the raw token from the session cookie, falling back
// to the Authorization header for non-browser clients.
func SessionToken(c *fiber.Ctx) string {
	if token := c.Cookies("session_token"); token != "" {
		return token
	}
	return strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
}

// AuthMiddleware resolves the session cookie into a user ID and stores it in
// the request locals. Handlers behind it read the ID with UserID instead of
// parsing tokens themselves. A token whose session was deleted from the
// store is rejected even if its JWT expiry has not passed.
func AuthMiddleware(cfg *config.Config, sessions store.SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := SessionToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		userID, sessionID, err := utils.ParseSessionToken(tokenString, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		storedID, err := sessions.Get(c.Context(), sessionID)
		if err != nil || storedID != userID {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user ID set by AuthMiddleware.
func UserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals(userIDKey).(uint)
	return userID
}
