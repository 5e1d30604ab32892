package billing

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/storage"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	planColumns = []string{"id", "name", "plan_type", "price", "max_projects", "storage_gb", "support_level", "is_active"}
	subColumns  = []string{"id", "user_id", "plan_id", "status", "cancel_at_period_end"}
)

type fakeSigner struct {
	url string
	err error
	key string
}

func (f *fakeSigner) PresignGet(_ context.Context, key string) (string, error) {
	f.key = key
	return f.url, f.err
}

func fixedNow() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }

func newService(t *testing.T, signer storage.URLSigner) (*BillingService, sqlmock.Sqlmock) {
	db, mock := testutil.MockDB(t)
	svc := NewBillingService(db, signer)
	svc.now = fixedNow
	return svc, mock
}

func TestPlanFeatures(t *testing.T) {
	free := models.SubscriptionPlan{PlanType: models.PlanFree, MaxProjects: 1, StorageGB: 5, SupportLevel: "Basic"}
	assert.Equal(t, []string{"1 Active Project", "Basic Support", "5GB Storage", "Community Access"}, planFeatures(free))

	enterprise := models.SubscriptionPlan{
		PlanType: models.PlanEnterprise, MaxProjects: -1, StorageGB: 500, SupportLevel: "24/7 Dedicated",
		AdvancedAnalytics: true, APIAccess: true, DedicatedManager: true,
	}
	assert.Equal(t, []string{
		"Unlimited Projects", "24/7 Dedicated Support", "500GB Storage",
		"Advanced Analytics", "API Access", "Dedicated Account Manager",
	}, planFeatures(enterprise))

	pro := models.SubscriptionPlan{PlanType: models.PlanProfessional, MaxProjects: 10, StorageGB: 50, SupportLevel: "Priority"}
	assert.Contains(t, planFeatures(pro), "10 Active Projects")
}

func TestCurrentSubscription(t *testing.T) {
	userID := uuid.New()
	planID := uuid.New()

	t.Run("returns the live subscription", func(t *testing.T) {
		svc, mock := newService(t, nil)
		subID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "id" FROM "users" WHERE id = \$1 .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID.String()))
		mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE \(?user_id = \$1 AND status IN \(\$2,\$3,\$4\)`).
			WillReturnRows(sqlmock.NewRows(subColumns).
				AddRow(subID.String(), userID.String(), planID.String(), models.SubscriptionActive, false))
		mock.ExpectQuery(`SELECT \* FROM "subscription_plans" WHERE "subscription_plans"."id" = \$1`).
			WillReturnRows(sqlmock.NewRows(planColumns).
				AddRow(planID.String(), "Professional", models.PlanProfessional, 2900, 10, 50, "Priority", true))
		mock.ExpectCommit()

		sub, err := svc.CurrentSubscription(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, subID, sub.ID)
		assert.Equal(t, models.PlanProfessional, sub.Plan.PlanType)
	})

	t.Run("starts a free subscription when none is live", func(t *testing.T) {
		svc, mock := newService(t, nil)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "id" FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID.String()))
		mock.ExpectQuery(`SELECT \* FROM "subscriptions"`).
			WillReturnRows(sqlmock.NewRows(subColumns))
		mock.ExpectQuery(`SELECT \* FROM "subscription_plans" WHERE \(?plan_type = \$1 AND is_active = \$2`).
			WithArgs(models.PlanFree, true, 1).
			WillReturnRows(sqlmock.NewRows(planColumns).
				AddRow(planID.String(), "Free", models.PlanFree, 0, 1, 5, "Basic", true))
		mock.ExpectQuery(`INSERT INTO "subscriptions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
		mock.ExpectCommit()

		sub, err := svc.CurrentSubscription(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, planID, sub.PlanID)
		assert.Equal(t, models.SubscriptionActive, sub.Status)
		assert.Equal(t, fixedNow().AddDate(0, 0, 365), sub.CurrentPeriodEnd)
		assert.Equal(t, models.PlanFree, sub.Plan.PlanType)
	})

	t.Run("missing free plan", func(t *testing.T) {
		svc, mock := newService(t, nil)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "id" FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID.String()))
		mock.ExpectQuery(`SELECT \* FROM "subscriptions"`).
			WillReturnRows(sqlmock.NewRows(subColumns))
		mock.ExpectQuery(`SELECT \* FROM "subscription_plans"`).
			WillReturnRows(sqlmock.NewRows(planColumns))
		mock.ExpectRollback()

		_, err := svc.CurrentSubscription(context.Background(), userID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestUpgradeSubscription(t *testing.T) {
	userID := uuid.New()
	freeID := uuid.New()
	proID := uuid.New()
	subID := uuid.New()

	expectPlanAndSub := func(mock sqlmock.Sqlmock, currentPlan uuid.UUID) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "subscription_plans" WHERE \(?id = \$1 AND is_active = \$2`).
			WillReturnRows(sqlmock.NewRows(planColumns).
				AddRow(proID.String(), "Professional", models.PlanProfessional, 2900, 10, 50, "Priority", true))
		mock.ExpectQuery(`SELECT \* FROM "subscriptions"`).
			WillReturnRows(sqlmock.NewRows(subColumns).
				AddRow(subID.String(), userID.String(), currentPlan.String(), models.SubscriptionActive, true))
		mock.ExpectQuery(`SELECT \* FROM "subscription_plans" WHERE "subscription_plans"."id" = \$1`).
			WillReturnRows(sqlmock.NewRows(planColumns).
				AddRow(currentPlan.String(), "x", models.PlanFree, 0, 1, 5, "Basic", true))
	}

	t.Run("paid plan opens an invoice", func(t *testing.T) {
		svc, mock := newService(t, nil)

		expectPlanAndSub(mock, freeID)
		mock.ExpectExec(`UPDATE "subscriptions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "invoices"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
		mock.ExpectCommit()

		resp, err := svc.UpgradeSubscription(context.Background(), userID, UpgradeRequest{PlanID: proID})
		require.NoError(t, err)
		assert.Equal(t, proID, resp.Subscription.PlanID)
		assert.False(t, resp.Subscription.CancelAtPeriodEnd)
		require.NotNil(t, resp.Invoice)
		assert.Equal(t, models.InvoiceOpen, resp.Invoice.Status)
		assert.Equal(t, int64(2900), resp.Invoice.AmountDue())
		assert.Regexp(t, `^INV-[0-9A-Z]{26}$`, resp.Invoice.InvoiceNumber)
		assert.Equal(t, subID, *resp.Invoice.SubscriptionID)
	})

	t.Run("same plan rejected", func(t *testing.T) {
		svc, mock := newService(t, nil)

		expectPlanAndSub(mock, proID)
		mock.ExpectRollback()

		_, err := svc.UpgradeSubscription(context.Background(), userID, UpgradeRequest{PlanID: proID})
		assert.Equal(t, "plan_id", apperr.Field(err))
	})

	t.Run("plan required", func(t *testing.T) {
		svc, _ := newService(t, nil)
		_, err := svc.UpgradeSubscription(context.Background(), userID, UpgradeRequest{})
		assert.Equal(t, "plan_id", apperr.Field(err))
	})
}

func TestValidatePaymentMethod(t *testing.T) {
	valid := CreatePaymentMethodRequest{PaymentToken: "tok_1", CardBrand: "visa", LastFour: "4242", ExpMonth: 6, ExpYear: 2025}
	require.NoError(t, validatePaymentMethod(valid, fixedNow()))

	for field, mutate := range map[string]func(*CreatePaymentMethodRequest){
		"payment_token": func(r *CreatePaymentMethodRequest) { r.PaymentToken = " " },
		"card_brand":    func(r *CreatePaymentMethodRequest) { r.CardBrand = "DINERS" },
		"last_four":     func(r *CreatePaymentMethodRequest) { r.LastFour = "42a2" },
		"exp_month":     func(r *CreatePaymentMethodRequest) { r.ExpMonth = 13 },
		"exp_year":      func(r *CreatePaymentMethodRequest) { r.ExpMonth, r.ExpYear = 5, 2025 },
	} {
		t.Run(field, func(t *testing.T) {
			req := valid
			mutate(&req)
			assert.Equal(t, field, apperr.Field(validatePaymentMethod(req, fixedNow())))
		})
	}

	short := valid
	short.LastFour = "424"
	assert.Equal(t, "last_four", apperr.Field(validatePaymentMethod(short, fixedNow())))
}

func TestAddPaymentMethod(t *testing.T) {
	userID := uuid.New()
	req := CreatePaymentMethodRequest{PaymentToken: "tok_1", CardBrand: "mastercard", LastFour: "4444", ExpMonth: 1, ExpYear: 2030}

	t.Run("first card becomes default", func(t *testing.T) {
		svc, mock := newService(t, nil)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payment_methods" WHERE user_id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO "payment_methods"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
		mock.ExpectCommit()

		method, err := svc.AddPaymentMethod(context.Background(), userID, req)
		require.NoError(t, err)
		assert.True(t, method.IsDefault)
		assert.Equal(t, "MASTERCARD", method.CardBrand)
	})

	t.Run("default card clears the previous default atomically", func(t *testing.T) {
		svc, mock := newService(t, nil)
		withDefault := req
		withDefault.IsDefault = true

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payment_methods"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec(`UPDATE "payment_methods" SET "is_default"=\$1,"updated_at"=\$2 WHERE \(?user_id = \$3 AND is_default = \$4`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "payment_methods"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
		mock.ExpectCommit()

		method, err := svc.AddPaymentMethod(context.Background(), userID, withDefault)
		require.NoError(t, err)
		assert.True(t, method.IsDefault)
	})

	t.Run("failed insert rolls back the default switch", func(t *testing.T) {
		svc, mock := newService(t, nil)
		withDefault := req
		withDefault.IsDefault = true

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payment_methods"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectExec(`UPDATE "payment_methods" SET "is_default"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "payment_methods"`).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		_, err := svc.AddPaymentMethod(context.Background(), userID, withDefault)
		assert.Error(t, err)
	})
}

func TestDeletePaymentMethodNotOwned(t *testing.T) {
	svc, mock := newService(t, nil)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "payment_methods" WHERE \(?id = \$1 AND user_id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := svc.DeletePaymentMethod(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPutAddress(t *testing.T) {
	t.Run("city required", func(t *testing.T) {
		svc, _ := newService(t, nil)
		_, err := svc.PutAddress(context.Background(), uuid.New(), BillingAddressRequest{AddressLine1: "12 Samora Machel Ave"})
		assert.Equal(t, "city", apperr.Field(err))
	})

	t.Run("upserts on user", func(t *testing.T) {
		svc, mock := newService(t, nil)
		existing := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "billing_addresses" .* ON CONFLICT \("user_id"\) DO UPDATE SET`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existing.String()))
		mock.ExpectCommit()

		addr, err := svc.PutAddress(context.Background(), uuid.New(), BillingAddressRequest{
			AddressLine1: " 12 Samora Machel Ave ", City: "Harare",
		})
		require.NoError(t, err)
		assert.Equal(t, existing, addr.ID)
		assert.Equal(t, "12 Samora Machel Ave", addr.AddressLine1)
		assert.Equal(t, "Zimbabwe", addr.Country)
	})
}

func TestInvoiceDownloadURL(t *testing.T) {
	userID := uuid.New()
	invoiceID := uuid.New()
	invoiceColumns := []string{"id", "user_id", "invoice_number", "status", "total", "pdf_object_key"}

	invoiceRow := func(key string) *sqlmock.Rows {
		return sqlmock.NewRows(invoiceColumns).
			AddRow(invoiceID.String(), userID.String(), "INV-1", models.InvoicePaid, 2900, key)
	}

	t.Run("presigns the stored PDF", func(t *testing.T) {
		signer := &fakeSigner{url: "https://bucket.example/inv.pdf?sig=1"}
		svc, mock := newService(t, signer)

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE user_id = \$1 AND id = \$2`).
			WillReturnRows(invoiceRow("invoices/INV-1.pdf"))

		url, err := svc.InvoiceDownloadURL(context.Background(), userID, invoiceID)
		require.NoError(t, err)
		assert.Equal(t, signer.url, url)
		assert.Equal(t, "invoices/INV-1.pdf", signer.key)
	})

	t.Run("no PDF stored", func(t *testing.T) {
		svc, mock := newService(t, &fakeSigner{})
		mock.ExpectQuery(`SELECT \* FROM "invoices"`).WillReturnRows(invoiceRow(""))

		_, err := svc.InvoiceDownloadURL(context.Background(), userID, invoiceID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("storage not configured", func(t *testing.T) {
		svc, mock := newService(t, &fakeSigner{err: storage.ErrNotConfigured})
		mock.ExpectQuery(`SELECT \* FROM "invoices"`).WillReturnRows(invoiceRow("invoices/INV-1.pdf"))

		_, err := svc.InvoiceDownloadURL(context.Background(), userID, invoiceID)
		assert.Equal(t, 404, apperr.Status(err))
	})

	t.Run("other user's invoice", func(t *testing.T) {
		svc, mock := newService(t, &fakeSigner{})
		mock.ExpectQuery(`SELECT \* FROM "invoices"`).WillReturnRows(sqlmock.NewRows(invoiceColumns))

		_, err := svc.InvoiceDownloadURL(context.Background(), userID, invoiceID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
