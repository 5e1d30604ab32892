package handlers

import (
	"crypto/subtle"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const webhookSecretHeader = "X-Webhook-Secret"

type WebhookHandler struct {
	subscriptionService *services.SubscriptionService
	secret              string
}

func NewWebhookHandler(subscriptionService *services.SubscriptionService, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{
		subscriptionService: subscriptionService,
		secret:              cfg.BillingWebhookSecret,
	}
}

// HandleBilling authenticates the processor by shared secret and applies the
// event.
func (h *WebhookHandler) HandleBilling(c *fiber.Ctx) error {
	if h.secret == "" {
		return dto.Fail(c, fiber.StatusNotFound, "Webhooks not configured")
	}

	provided := c.Get(webhookSecretHeader)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		return dto.Fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var webhook dto.BillingWebhook
	if err := c.BodyParser(&webhook); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, "Invalid webhook payload")
	}

	if err := h.subscriptionService.HandleWebhookEvent(c.UserContext(), &webhook); err != nil {
		slog.Warn("webhook processing failed", "event_id", webhook.ID, "event_type", webhook.Type, "error", err)
		return apperr.Respond(c, err, "Failed to process webhook event")
	}

	slog.Info("webhook processed", "event_id", webhook.ID, "event_type", webhook.Type)
	return c.JSON(fiber.Map{"received": true})
}
