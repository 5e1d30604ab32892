package middleware

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*models.User, error)
}

var authMessages = map[identity.Reason]string{
	identity.ReasonMissingHeader:       "Authorization header is required",
	identity.ReasonMalformedHeader:     "Authorization header must be 'Bearer <token>'",
	identity.ReasonProviderUnreachable: "Identity provider unavailable",
	identity.ReasonInvalidToken:        "Unauthorized: invalid or expired token",
	identity.ReasonUserNotFound:        "Unauthorized: user not found",
}

// IdentityRequired authenticates every request against the identity provider
// and stores the synced user in locals. Failures answer 401 with the reason.
func IdentityRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			reason := identity.ReasonOf(err)
			if reason == "" {
				slog.Error("identity sync failed", "path", c.Path(), "error", err)
				return dto.Fail(c, fiber.StatusInternalServerError, "Internal server error")
			}
			metrics.AuthFailures.WithLabelValues(string(reason)).Inc()
			if reason == identity.ReasonProviderUnreachable {
				slog.Warn("identity provider unreachable", "path", c.Path(), "error", err)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:      true,
				Message:    authMessages[reason],
				StatusCode: fiber.StatusUnauthorized,
				Reason:     string(reason),
			})
		}

		session.SetUser(c, user)
		return c.Next()
	}
}
