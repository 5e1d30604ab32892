package handlers

import (
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	overviewService *services.OverviewService
}

func NewAdminHandler(overviewService *services.OverviewService) *AdminHandler {
	return &AdminHandler{overviewService: overviewService}
}

func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.overviewService.Overview(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err, "Failed to build overview")
	}
	return c.JSON(overview)
}
