package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const PaymentCompleted = "COMPLETED"

type PaymentService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

func NewPaymentService(db *gorm.DB, publisher events.Publisher) *PaymentService {
	return &PaymentService{db: db, publisher: publisher, now: time.Now}
}

// PayMilestone settles one milestone of a project the payer owns. The status
// flip and the payment row commit together; the flip is conditional, so of
// two concurrent payments exactly one succeeds and the other gets a conflict.
func (s *PaymentService) PayMilestone(ctx context.Context, payerID uuid.UUID, req CreatePaymentRequest) (*models.Payment, error) {
	if req.MilestoneID == uuid.Nil {
		return nil, apperr.Invalid("milestone_id", "is required")
	}

	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var milestone models.Milestone
		if err := tx.Where("project_id IN (?)", session.OwnedProjectIDs(tx, payerID)).
			First(&milestone, "id = ?", req.MilestoneID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("milestone")
			}
			return err
		}
		if req.ProjectID != uuid.Nil && req.ProjectID != milestone.ProjectID {
			return apperr.Invalid("project_id", "does not match the milestone's project")
		}
		if milestone.Status == models.MilestonePaid {
			return ErrMilestonePaid
		}

		result := tx.Model(&models.Milestone{}).
			Where("id = ? AND status <> ?", milestone.ID, models.MilestonePaid).
			Update("status", models.MilestonePaid)
		if result.Error != nil {
			return fmt.Errorf("mark milestone paid: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrMilestonePaid
		}

		payment = models.Payment{
			ID:          uuid.New(),
			ProjectID:   milestone.ProjectID,
			MilestoneID: milestone.ID,
			PayerID:     payerID,
			Amount:      milestone.Amount,
			Method:      strings.TrimSpace(req.Method),
			Reference:   strings.TrimSpace(req.Reference),
			Status:      PaymentCompleted,
			PaidAt:      s.now().UTC(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrMilestonePaid
			}
			return fmt.Errorf("record payment: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.MilestonePayments.WithLabelValues(paymentResult(err)).Inc()
		return nil, err
	}
	metrics.MilestonePayments.WithLabelValues("paid").Inc()

	events.Emit(s.publisher, events.MilestonePaid, map[string]any{
		"payment_id":   payment.ID,
		"project_id":   payment.ProjectID,
		"milestone_id": payment.MilestoneID,
		"amount":       payment.Amount,
	})
	return &payment, nil
}

func paymentResult(err error) string {
	var ve *apperr.ValidationError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrConflict):
		return "already_paid"
	case errors.As(err, &ve):
		return "invalid"
	default:
		return "error"
	}
}

func (s *PaymentService) ListPayments(ctx context.Context, payerID uuid.UUID, projectID *uuid.UUID) ([]models.Payment, error) {
	query := s.db.WithContext(ctx).Where("project_id IN (?)", session.OwnedProjectIDs(s.db, payerID))
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	var payments []models.Payment
	err := query.Order("paid_at DESC").Find(&payments).Error
	return payments, err
}
