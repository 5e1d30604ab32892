package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"gorm.io/gorm"
)

// Processor event types.
const (
	EventInvoicePaid           = "invoice.paid"
	EventSubscriptionPastDue   = "subscription.past_due"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionExpired   = "subscription.expired"
)

// SubscriptionService applies payment processor events to invoices and
// subscriptions.
type SubscriptionService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

func NewSubscriptionService(db *gorm.DB, publisher events.Publisher) *SubscriptionService {
	return &SubscriptionService{db: db, publisher: publisher, now: time.Now}
}

// HandleWebhookEvent ignores event types it does not know.
func (s *SubscriptionService) HandleWebhookEvent(ctx context.Context, event *dto.BillingWebhook) error {
	switch event.Type {
	case EventInvoicePaid:
		return s.handleInvoicePaid(ctx, event)
	case EventSubscriptionPastDue:
		return s.setStatus(ctx, event, models.SubscriptionPastDue)
	case EventSubscriptionCancelled:
		return s.setStatus(ctx, event, models.SubscriptionCancelled)
	case EventSubscriptionExpired:
		return s.setStatus(ctx, event, models.SubscriptionExpired)
	default:
		return nil
	}
}

// handleInvoicePaid is idempotent: a redelivered event for a PAID invoice
// changes nothing and publishes nothing.
func (s *SubscriptionService) handleInvoicePaid(ctx context.Context, event *dto.BillingWebhook) error {
	if event.Data.InvoiceNumber == "" {
		return apperr.Invalid("invoice_number", "is required")
	}

	paidAt := s.now().UTC()
	if event.Data.PaidAtMs > 0 {
		paidAt = msToTime(event.Data.PaidAtMs).UTC()
	}

	var invoice models.Invoice
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&invoice, "invoice_number = ?", event.Data.InvoiceNumber).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("invoice")
			}
			return err
		}

		amount := event.Data.AmountPaid
		if amount <= 0 {
			amount = invoice.Total
		}
		result := tx.Model(&models.Invoice{}).
			Where("id = ? AND status <> ?", invoice.ID, models.InvoicePaid).
			Updates(map[string]interface{}{
				"status":      models.InvoicePaid,
				"amount_paid": amount,
				"paid_at":     paidAt,
			})
		if result.Error != nil {
			return fmt.Errorf("mark invoice paid: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		changed = true
		invoice.Status = models.InvoicePaid
		invoice.AmountPaid = amount
		invoice.PaidAt = &paidAt

		if invoice.SubscriptionID == nil {
			return nil
		}
		// Settling the outstanding invoice clears a past-due subscription.
		return tx.Model(&models.Subscription{}).
			Where("id = ? AND status = ?", *invoice.SubscriptionID, models.SubscriptionPastDue).
			Update("status", models.SubscriptionActive).Error
	})
	if err != nil || !changed {
		return err
	}

	events.Emit(s.publisher, events.InvoicePaid, map[string]any{
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
		"user_id":        invoice.UserID,
		"amount_paid":    invoice.AmountPaid,
	})
	return nil
}

func (s *SubscriptionService) setStatus(ctx context.Context, event *dto.BillingWebhook, status string) error {
	if event.Data.SubscriptionID == "" {
		return apperr.Invalid("subscription_id", "is required")
	}

	changes := map[string]interface{}{"status": status}
	if status == models.SubscriptionCancelled {
		changes["cancelled_at"] = s.now().UTC()
	}
	if event.Data.PeriodEndMs > 0 {
		changes["current_period_end"] = msToTime(event.Data.PeriodEndMs).UTC()
	}

	result := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("processor_subscription_id = ?", event.Data.SubscriptionID).
		Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("subscription")
	}
	return nil
}

func msToTime(ms int64) time.Time {
	return time.Unix(ms/1000, (ms%1000)*int64(time.Millisecond))
}
