// Package apperr holds the error kinds shared by services and handlers and
// their mapping to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

var (
	// ErrNotFound covers both absent records and records the caller does not own.
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrForbidden = errors.New("forbidden")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound wraps ErrNotFound with the missing entity name.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Conflict wraps ErrConflict with a reason.
func Conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

// Status maps an error to the HTTP status a handler should answer with.
func Status(err error) int {
	var ve *ValidationError
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// Field returns the field of a validation error, or "".
func Field(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}

// Respond writes err as the standard error body. Server errors are logged and
// answered with fallback so internals never leak.
func Respond(c *fiber.Ctx, err error, fallback string) error {
	status := Status(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error(fallback, "method", c.Method(), "path", c.Path(), "error", err)
		return dto.Fail(c, status, fallback)
	}
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:      true,
		Message:    err.Error(),
		StatusCode: status,
		Field:      Field(err),
	})
}
