package handlers

import (
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/httpx"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the user the identity middleware synced for this request.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := session.GetUser(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	return c.JSON(user)
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	user, err := h.userService.Update(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update user")
	}
	return c.JSON(user)
}
