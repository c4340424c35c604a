package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/greenchain/internal/config"
	"github.com/example/greenchain/internal/models"
	"github.com/example/greenchain/internal/repo"
	"github.com/example/greenchain/internal/utils"
)

const userContextKey = "currentUser"

// sessionCookie mirrors the cookie name set by the auth handlers.
const sessionCookie = "jwt"

// Authenticate validates the session token (HTTP-only cookie first, bearer
// header as fallback), resolves the user and stores it request-scoped in
// fiber Locals. Inactive and unverified accounts are rejected here so no
// protected handler sees them.
func Authenticate(users repo.UserStore, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(sessionCookie)
		if token == "" {
			token = bearerToken(c.Get("Authorization"))
		}
		if token == "" {
			return unauthorized(c, "Access denied. No token provided.")
		}

		userID, err := utils.ParseToken(cfg.JWTSecret, token)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				return unauthorized(c, "Token expired. Please login again.")
			}
			return unauthorized(c, "Invalid token.")
		}

		user, err := users.FindByID(c.Context(), userID)
		if err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return unauthorized(c, "User no longer exists.")
			}
			return err
		}

		if !user.IsActive {
			return unauthorized(c, "Account has been deactivated.")
		}

		if !user.IsEmailVerified {
			return unauthorized(c, "Email not verified. Please verify your email first.")
		}

		c.Locals(userContextKey, user)
		return c.Next()
	}
}

// RequireRoles allows only the listed roles past. It must run after
// Authenticate.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return unauthorized(c, "Authentication required.")
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(models.Envelope{
			Success: false,
			Message: "Access denied. Role '" + string(user.Role) + "' is not authorized to access this resource.",
		})
	}
}

// RequireResource gates a named resource through the static role capability
// table. Unknown resources admit nobody.
func RequireResource(resource string) fiber.Handler {
	return RequireRoles(models.ResourceRoles[resource]...)
}

// CurrentUser extracts the authenticated user from request context.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(userContextKey).(*models.User)
	return user, ok
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.Envelope{
		Success: false,
		Message: message,
	})
}
