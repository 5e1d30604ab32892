package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/ids"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	freePeriodDays = 365
	invoiceDueDays = 14
	defaultCountry = "Zimbabwe"
)

// Subscriptions in these states count as the user's current one.
var liveStatuses = []string{models.SubscriptionActive, models.SubscriptionTrialing, models.SubscriptionPastDue}

var (
	ErrSamePlan   = apperr.Invalid("plan_id", "is already the current plan")
	ErrPDFMissing = apperr.NotFound("invoice PDF")
)

type BillingService struct {
	db     *gorm.DB
	signer storage.URLSigner
	now    func() time.Time
}

func NewBillingService(db *gorm.DB, signer storage.URLSigner) *BillingService {
	return &BillingService{db: db, signer: signer, now: time.Now}
}

// --- Plans ---

func (s *BillingService) Plans(ctx context.Context) ([]PlanResponse, error) {
	var plans []models.SubscriptionPlan
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("price ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	out := make([]PlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, PlanResponse{SubscriptionPlan: p, Features: planFeatures(p)})
	}
	return out, nil
}

// --- Subscription ---

func liveSubscription(tx *gorm.DB, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := tx.Preload("Plan").
		Where("user_id = ? AND status IN ?", userID, liveStatuses).
		Order("created_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("subscription")
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CurrentSubscription returns the user's live subscription, starting a free
// one when there is none. The user row is locked so concurrent first visits
// create a single subscription.
func (s *BillingService) CurrentSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub *models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&models.User{}, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		existing, err := liveSubscription(tx, userID)
		if err == nil {
			sub = existing
			return nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		var plan models.SubscriptionPlan
		if err := tx.Where("plan_type = ? AND is_active = ?", models.PlanFree, true).First(&plan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("free plan")
			}
			return err
		}

		now := s.now().UTC()
		created := models.Subscription{
			ID:                 uuid.New(),
			UserID:             userID,
			PlanID:             plan.ID,
			Status:             models.SubscriptionActive,
			CurrentPeriodStart: now,
			CurrentPeriodEnd:   now.AddDate(0, 0, freePeriodDays),
		}
		if err := tx.Omit("Plan").Create(&created).Error; err != nil {
			return fmt.Errorf("create free subscription: %w", err)
		}
		created.Plan = plan
		sub = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// CancelSubscription keeps the subscription running until the period ends.
func (s *BillingService) CancelSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	db := s.db.WithContext(ctx)
	sub, err := liveSubscription(db, userID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := db.Model(&models.Subscription{}).Where("id = ?", sub.ID).Updates(map[string]interface{}{
		"cancel_at_period_end": true,
		"cancelled_at":         now,
	}).Error; err != nil {
		return nil, err
	}
	sub.CancelAtPeriodEnd = true
	sub.CancelledAt = &now
	return sub, nil
}

func (s *BillingService) ReactivateSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	db := s.db.WithContext(ctx)
	sub, err := liveSubscription(db, userID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(&models.Subscription{}).Where("id = ?", sub.ID).Updates(map[string]interface{}{
		"cancel_at_period_end": false,
		"cancelled_at":         nil,
	}).Error; err != nil {
		return nil, err
	}
	sub.CancelAtPeriodEnd = false
	sub.CancelledAt = nil
	return sub, nil
}

// UpgradeSubscription moves the live subscription to another plan and starts
// a new monthly period. Paid plans get an OPEN invoice in the same transaction.
func (s *BillingService) UpgradeSubscription(ctx context.Context, userID uuid.UUID, req UpgradeRequest) (*UpgradeResponse, error) {
	if req.PlanID == uuid.Nil {
		return nil, apperr.Invalid("plan_id", "is required")
	}

	var resp UpgradeResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan models.SubscriptionPlan
		if err := tx.Where("id = ? AND is_active = ?", req.PlanID, true).First(&plan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("plan")
			}
			return err
		}

		sub, err := liveSubscription(tx, userID)
		if err != nil {
			return err
		}
		if sub.PlanID == plan.ID {
			return ErrSamePlan
		}

		now := s.now().UTC()
		periodEnd := now.AddDate(0, 1, 0)
		if err := tx.Model(&models.Subscription{}).Where("id = ?", sub.ID).Updates(map[string]interface{}{
			"plan_id":              plan.ID,
			"current_period_start": now,
			"current_period_end":   periodEnd,
			"cancel_at_period_end": false,
			"cancelled_at":         nil,
		}).Error; err != nil {
			return fmt.Errorf("switch plan: %w", err)
		}
		sub.PlanID = plan.ID
		sub.Plan = plan
		sub.CurrentPeriodStart = now
		sub.CurrentPeriodEnd = periodEnd
		sub.CancelAtPeriodEnd = false
		sub.CancelledAt = nil
		resp.Subscription = sub

		if plan.Price <= 0 {
			return nil
		}
		due := now.AddDate(0, 0, invoiceDueDays)
		invoice := models.Invoice{
			ID:             uuid.New(),
			UserID:         userID,
			SubscriptionID: &sub.ID,
			InvoiceNumber:  ids.InvoiceNumber(),
			Status:         models.InvoiceOpen,
			Subtotal:       plan.Price,
			Total:          plan.Price,
			InvoiceDate:    now,
			DueDate:        &due,
		}
		if err := tx.Omit("Subscription").Create(&invoice).Error; err != nil {
			return fmt.Errorf("open invoice: %w", err)
		}
		resp.Invoice = &invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Payment methods ---

func validatePaymentMethod(req CreatePaymentMethodRequest, now time.Time) error {
	if strings.TrimSpace(req.PaymentToken) == "" {
		return apperr.Invalid("payment_token", "is required")
	}
	if !models.Contains(models.CardBrands, strings.ToUpper(strings.TrimSpace(req.CardBrand))) {
		return apperr.Invalid("card_brand", "must be one of %s", strings.Join(models.CardBrands, ", "))
	}
	if len(req.LastFour) != 4 || strings.Trim(req.LastFour, "0123456789") != "" {
		return apperr.Invalid("last_four", "must be exactly 4 digits")
	}
	if req.ExpMonth < 1 || req.ExpMonth > 12 {
		return apperr.Invalid("exp_month", "must be between 1 and 12")
	}
	if req.ExpYear*12+req.ExpMonth < now.Year()*12+int(now.Month()) {
		return apperr.Invalid("exp_year", "card has expired")
	}
	return nil
}

func (s *BillingService) PaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&methods).Error
	return methods, err
}

// AddPaymentMethod stores a tokenized card. The first card, or one flagged
// default, takes over the default in the same transaction.
func (s *BillingService) AddPaymentMethod(ctx context.Context, userID uuid.UUID, req CreatePaymentMethodRequest) (*models.PaymentMethod, error) {
	if err := validatePaymentMethod(req, s.now()); err != nil {
		return nil, err
	}

	method := models.PaymentMethod{
		ID:           uuid.New(),
		UserID:       userID,
		CardBrand:    strings.ToUpper(strings.TrimSpace(req.CardBrand)),
		LastFour:     req.LastFour,
		ExpMonth:     req.ExpMonth,
		ExpYear:      req.ExpYear,
		PaymentToken: strings.TrimSpace(req.PaymentToken),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PaymentMethod{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		method.IsDefault = req.IsDefault || count == 0
		if method.IsDefault && count > 0 {
			if err := tx.Model(&models.PaymentMethod{}).
				Where("user_id = ? AND is_default = ?", userID, true).
				Update("is_default", false).Error; err != nil {
				return fmt.Errorf("clear default: %w", err)
			}
		}
		return tx.Create(&method).Error
	})
	if err != nil {
		return nil, err
	}
	return &method, nil
}

func (s *BillingService) SetDefaultPaymentMethod(ctx context.Context, userID, id uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&method, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("payment method")
			}
			return err
		}
		if err := tx.Model(&models.PaymentMethod{}).
			Where("user_id = ? AND id <> ? AND is_default = ?", userID, id, true).
			Update("is_default", false).Error; err != nil {
			return fmt.Errorf("clear default: %w", err)
		}
		return tx.Model(&models.PaymentMethod{}).Where("id = ?", id).Update("is_default", true).Error
	})
	if err != nil {
		return nil, err
	}
	method.IsDefault = true
	return &method, nil
}

func (s *BillingService) DeletePaymentMethod(ctx context.Context, userID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.PaymentMethod{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("payment method")
	}
	return nil
}

// --- Billing address ---

func (s *BillingService) Address(ctx context.Context, userID uuid.UUID) (*models.BillingAddress, error) {
	var addr models.BillingAddress
	err := s.db.WithContext(ctx).First(&addr, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("billing address")
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// PutAddress creates or replaces the user's single billing address.
func (s *BillingService) PutAddress(ctx context.Context, userID uuid.UUID, req BillingAddressRequest) (*models.BillingAddress, error) {
	addr := models.BillingAddress{
		ID:           uuid.New(),
		UserID:       userID,
		AddressLine1: strings.TrimSpace(req.AddressLine1),
		AddressLine2: strings.TrimSpace(req.AddressLine2),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		PostalCode:   strings.TrimSpace(req.PostalCode),
		Country:      strings.TrimSpace(req.Country),
	}
	if addr.AddressLine1 == "" {
		return nil, apperr.Invalid("address_line1", "is required")
	}
	if addr.City == "" {
		return nil, apperr.Invalid("city", "is required")
	}
	if addr.Country == "" {
		addr.Country = defaultCountry
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"address_line1", "address_line2", "city", "state", "postal_code", "country", "updated_at",
		}),
	}).Create(&addr).Error
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// --- Invoices ---

func (s *BillingService) Invoices(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("invoice_date DESC").
		Limit(limit).Offset(offset).
		Find(&invoices).Error
	return invoices, err
}

func (s *BillingService) Invoice(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("invoice")
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// InvoiceDownloadURL presigns the invoice PDF. Invoices without a stored PDF,
// or a server without object storage, answer not found.
func (s *BillingService) InvoiceDownloadURL(ctx context.Context, userID, id uuid.UUID) (string, error) {
	invoice, err := s.Invoice(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if invoice.PDFObjectKey == "" || s.signer == nil {
		return "", ErrPDFMissing
	}
	url, err := s.signer.PresignGet(ctx, invoice.PDFObjectKey)
	if errors.Is(err, storage.ErrNotConfigured) {
		return "", ErrPDFMissing
	}
	if err != nil {
		return "", err
	}
	return url, nil
}
