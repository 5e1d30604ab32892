package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db        *gorm.DB
	publisher events.Publisher
}

func NewHealthHandler(db *gorm.DB, publisher events.Publisher) *HealthHandler {
	return &HealthHandler{db: db, publisher: publisher}
}

// Check answers 503 when the database is unreachable. The event broker is
// reported but never fails the check.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.StatusOK
	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        "ok",
		Events:    h.publisher.Status(),
	}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		status = fiber.StatusServiceUnavailable
		resp.Status = "degraded"
		resp.DB = "unhealthy: " + err.Error()
	}

	return c.Status(status).JSON(resp)
}
