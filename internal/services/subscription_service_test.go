package services

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var invoiceColumns = []string{"id", "user_id", "subscription_id", "invoice_number", "status", "total", "amount_paid"}

func newSubscriptionService(t *testing.T) (*SubscriptionService, sqlmock.Sqlmock, *testutil.RecordingPublisher) {
	db, mock := testutil.MockDB(t)
	pub := &testutil.RecordingPublisher{}
	svc := NewSubscriptionService(db, pub)
	svc.now = func() time.Time { return time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC) }
	return svc, mock, pub
}

func TestHandleInvoicePaid(t *testing.T) {
	invoiceID := uuid.New()
	userID := uuid.New()
	subID := uuid.New()
	event := &dto.BillingWebhook{
		ID:   "evt_1",
		Type: EventInvoicePaid,
		Data: dto.BillingEventData{InvoiceNumber: "INV-01J", PaidAtMs: 1751328000000},
	}

	t.Run("marks paid, revives past due and publishes", func(t *testing.T) {
		svc, mock, pub := newSubscriptionService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE invoice_number = \$1`).
			WithArgs("INV-01J", 1).
			WillReturnRows(sqlmock.NewRows(invoiceColumns).
				AddRow(invoiceID.String(), userID.String(), subID.String(), "INV-01J", models.InvoiceOpen, 2900, 0))
		mock.ExpectExec(`UPDATE "invoices" SET .* WHERE \(?id = \$\d+ AND status <> \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "subscriptions" SET "status"=\$1,"updated_at"=\$2 WHERE \(?id = \$3 AND status = \$4`).
			WithArgs(models.SubscriptionActive, sqlmock.AnyArg(), subID.String(), models.SubscriptionPastDue).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, svc.HandleWebhookEvent(context.Background(), event))
		require.Equal(t, []string{events.InvoicePaid}, pub.Kinds)
		payload := pub.Payloads[0].(map[string]any)
		assert.Equal(t, int64(2900), payload["amount_paid"])
	})

	t.Run("redelivery is a no-op", func(t *testing.T) {
		svc, mock, pub := newSubscriptionService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "invoices"`).
			WillReturnRows(sqlmock.NewRows(invoiceColumns).
				AddRow(invoiceID.String(), userID.String(), nil, "INV-01J", models.InvoicePaid, 2900, 2900))
		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		require.NoError(t, svc.HandleWebhookEvent(context.Background(), event))
		assert.Empty(t, pub.Kinds)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		svc, mock, _ := newSubscriptionService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "invoices"`).WillReturnRows(sqlmock.NewRows(invoiceColumns))
		mock.ExpectRollback()

		err := svc.HandleWebhookEvent(context.Background(), event)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("invoice number required", func(t *testing.T) {
		svc, _, _ := newSubscriptionService(t)
		err := svc.HandleWebhookEvent(context.Background(), &dto.BillingWebhook{Type: EventInvoicePaid})
		assert.Equal(t, "invoice_number", apperr.Field(err))
	})
}

func TestHandleSubscriptionStatusEvents(t *testing.T) {
	anyArg := sqlmock.AnyArg()
	// Updates writes map columns in name order, then updated_at.
	for eventType, args := range map[string][]driver.Value{
		EventSubscriptionPastDue:   {anyArg, models.SubscriptionPastDue, anyArg, "sub_123"},
		EventSubscriptionCancelled: {anyArg, anyArg, models.SubscriptionCancelled, anyArg, "sub_123"},
		EventSubscriptionExpired:   {anyArg, models.SubscriptionExpired, anyArg, "sub_123"},
	} {
		t.Run(eventType, func(t *testing.T) {
			svc, mock, _ := newSubscriptionService(t)

			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "subscriptions" SET .* WHERE processor_subscription_id = \$\d+`).
				WithArgs(args...).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			err := svc.HandleWebhookEvent(context.Background(), &dto.BillingWebhook{
				Type: eventType,
				Data: dto.BillingEventData{SubscriptionID: "sub_123", PeriodEndMs: 1751328000000},
			})
			require.NoError(t, err)
		})
	}

	t.Run("unknown subscription", func(t *testing.T) {
		svc, mock, _ := newSubscriptionService(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "subscriptions"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := svc.HandleWebhookEvent(context.Background(), &dto.BillingWebhook{
			Type: EventSubscriptionExpired,
			Data: dto.BillingEventData{SubscriptionID: "sub_missing"},
		})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestUnknownWebhookEventIgnored(t *testing.T) {
	svc, _, pub := newSubscriptionService(t)
	require.NoError(t, svc.HandleWebhookEvent(context.Background(), &dto.BillingWebhook{Type: "customer.updated"}))
	assert.Empty(t, pub.Kinds)
}

func TestMsToTime(t *testing.T) {
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 500*int(time.Millisecond), time.UTC), msToTime(1751328000500).UTC())
}
