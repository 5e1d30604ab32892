package supplier

import (
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/httpx"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type SupplierHandler struct {
	service *SupplierService
}

func NewSupplierHandler(service *SupplierService) *SupplierHandler {
	return &SupplierHandler{service: service}
}

func (h *SupplierHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	profile, err := h.service.GetProfile(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch profile")
	}
	return c.JSON(profile)
}

func (h *SupplierHandler) CreateProfile(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req CreateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	profile, err := h.service.CreateProfile(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create profile")
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (h *SupplierHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	profile, err := h.service.UpdateProfile(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update profile")
	}
	return c.JSON(profile)
}

func (h *SupplierHandler) ListProducts(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	products, err := h.service.ListProducts(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch products")
	}
	return c.JSON(products)
}

func (h *SupplierHandler) GetProduct(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	product, err := h.service.GetProduct(c.UserContext(), userID, id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch product")
	}
	return c.JSON(product)
}

func (h *SupplierHandler) CreateProduct(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	product, err := h.service.CreateProduct(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *SupplierHandler) UpdateProduct(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	product, err := h.service.UpdateProduct(c.UserContext(), userID, id, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update product")
	}
	return c.JSON(product)
}

func (h *SupplierHandler) DeleteProduct(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	if err := h.service.DeleteProduct(c.UserContext(), userID, id); err != nil {
		return apperr.Respond(c, err, "Failed to delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SupplierHandler) ListOrders(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	orders, err := h.service.ListOrders(c.UserContext(), userID, c.Query("status"))
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch orders")
	}
	return c.JSON(orders)
}

func (h *SupplierHandler) GetOrder(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	order, err := h.service.GetOrder(c.UserContext(), userID, id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch order")
	}
	return c.JSON(order)
}

func (h *SupplierHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	order, err := h.service.UpdateOrderStatus(c.UserContext(), userID, id, req.Status)
	if err != nil {
		return apperr.Respond(c, err, "Failed to update order")
	}
	return c.JSON(order)
}
