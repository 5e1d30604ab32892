// Package httpx holds request parsing helpers shared by the dashboard handlers.
package httpx

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ParamUUID parses a route parameter as a UUID.
func ParamUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Invalid(name, "must be a valid UUID")
	}
	return id, nil
}

// QueryUUID parses an optional query parameter; absent yields nil.
func QueryUUID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Invalid(name, "must be a valid UUID")
	}
	return &id, nil
}

// Page reads limit and offset, clamping limit to (0, 100] with default 20.
func Page(c *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ = strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func Unauthorized(c *fiber.Ctx) error {
	return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
}

func InvalidBody(c *fiber.Ctx) error {
	return dto.Fail(c, fiber.StatusBadRequest, "Invalid request body")
}
