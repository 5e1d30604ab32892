// Package session carries the authenticated user through a request.
package session

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userKey = "user"

var ErrNoUser = errors.New("no authenticated user in context")

func SetUser(c *fiber.Ctx, user *models.User) {
	c.Locals(userKey, user)
}

// GetUser returns the user stored by the identity middleware.
func GetUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(userKey).(*models.User)
	if !ok || user == nil {
		return nil, ErrNoUser
	}
	return user, nil
}

func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	user, err := GetUser(c)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// Role returns the caller's profile role, or "".
func Role(c *fiber.Ctx) string {
	user, err := GetUser(c)
	if err != nil || user.Profile == nil {
		return ""
	}
	return user.Profile.Role
}
