package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired admits a request when any of these hold:
// 1. X-Admin-Token matches the configured token
// 2. the user's email or provider subject is in the configured admin lists
// 3. the user's profile role is ADMIN
func AdminRequired(cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminSubjects := parseCSV(cfg.AdminSubjects)

	return func(c *fiber.Ctx) error {
		if HasAdminToken(c, cfg) {
			return c.Next()
		}

		user, err := session.GetUser(c)
		if err != nil {
			return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		if models.Contains(adminEmails, user.Email) || models.Contains(adminSubjects, user.Subject) {
			return c.Next()
		}
		if user.HasRole(models.RoleAdmin) {
			return c.Next()
		}

		return dto.Fail(c, fiber.StatusForbidden, "Admin access required")
	}
}

// HasAdminToken reports whether X-Admin-Token matches the configured token.
func HasAdminToken(c *fiber.Ctx, cfg *config.Config) bool {
	if cfg.AdminToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Get("X-Admin-Token")), []byte(cfg.AdminToken)) == 1
}

// IdentityOrAdminToken lets token-bearing admin requests skip identity sync;
// every other request goes through next.
func IdentityOrAdminToken(cfg *config.Config, next fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if HasAdminToken(c, cfg) {
			return c.Next()
		}
		return next(c)
	}
}

// RequireRole admits users whose profile role is one of roles. ADMIN is
// always admitted.
func RequireRole(roles ...string) fiber.Handler {
	allowed := append([]string{models.RoleAdmin}, roles...)
	return func(c *fiber.Ctx) error {
		user, err := session.GetUser(c)
		if err != nil {
			return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		if !user.HasRole(allowed...) {
			return dto.Fail(c, fiber.StatusForbidden, "This action requires role "+strings.Join(roles, " or "))
		}
		return c.Next()
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
