package billing

import (
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/httpx"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type BillingHandler struct {
	service *BillingService
}

func NewBillingHandler(service *BillingService) *BillingHandler {
	return &BillingHandler{service: service}
}

func (h *BillingHandler) Plans(c *fiber.Ctx) error {
	plans, err := h.service.Plans(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch plans")
	}
	return c.JSON(plans)
}

// --- Subscription ---

func (h *BillingHandler) CurrentSubscription(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	sub, err := h.service.CurrentSubscription(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch subscription")
	}
	return c.JSON(sub)
}

func (h *BillingHandler) CancelSubscription(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	sub, err := h.service.CancelSubscription(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to cancel subscription")
	}
	return c.JSON(sub)
}

func (h *BillingHandler) ReactivateSubscription(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	sub, err := h.service.ReactivateSubscription(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to reactivate subscription")
	}
	return c.JSON(sub)
}

func (h *BillingHandler) UpgradeSubscription(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req UpgradeRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	resp, err := h.service.UpgradeSubscription(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to change plan")
	}
	return c.JSON(resp)
}

// --- Payment methods ---

func (h *BillingHandler) PaymentMethods(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	methods, err := h.service.PaymentMethods(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch payment methods")
	}
	return c.JSON(methods)
}

func (h *BillingHandler) AddPaymentMethod(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req CreatePaymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	method, err := h.service.AddPaymentMethod(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to add payment method")
	}
	return c.Status(fiber.StatusCreated).JSON(method)
}

func (h *BillingHandler) SetDefaultPaymentMethod(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	method, err := h.service.SetDefaultPaymentMethod(c.UserContext(), userID, id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to set default payment method")
	}
	return c.JSON(method)
}

func (h *BillingHandler) DeletePaymentMethod(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	if err := h.service.DeletePaymentMethod(c.UserContext(), userID, id); err != nil {
		return apperr.Respond(c, err, "Failed to delete payment method")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- Address ---

func (h *BillingHandler) Address(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	addr, err := h.service.Address(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch billing address")
	}
	return c.JSON(addr)
}

func (h *BillingHandler) PutAddress(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	var req BillingAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	addr, err := h.service.PutAddress(c.UserContext(), userID, req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to save billing address")
	}
	return c.JSON(addr)
}

// --- Invoices ---

func (h *BillingHandler) Invoices(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	limit, offset := httpx.Page(c)
	invoices, err := h.service.Invoices(c.UserContext(), userID, limit, offset)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch invoices")
	}
	return c.JSON(invoices)
}

func (h *BillingHandler) Invoice(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	invoice, err := h.service.Invoice(c.UserContext(), userID, id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch invoice")
	}
	return c.JSON(invoice)
}

func (h *BillingHandler) DownloadInvoice(c *fiber.Ctx) error {
	userID, err := session.GetUserID(c)
	if err != nil {
		return httpx.Unauthorized(c)
	}
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	url, err := h.service.InvoiceDownloadURL(c.UserContext(), userID, id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to prepare invoice download")
	}
	return c.JSON(DownloadResponse{DownloadURL: url})
}
