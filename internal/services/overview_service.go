package services

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"gorm.io/gorm"
)

// OverviewService aggregates platform-wide counters for administrators.
type OverviewService struct {
	db *gorm.DB
}

func NewOverviewService(db *gorm.DB) *OverviewService {
	return &OverviewService{db: db}
}

type roleCount struct {
	Role  string
	Count int64
}

type invoiceTotals struct {
	Count  int64
	Amount int64
}

func (s *OverviewService) Overview(ctx context.Context) (*dto.AdminOverview, error) {
	db := s.db.WithContext(ctx)
	out := &dto.AdminOverview{UsersByRole: map[string]int64{}}

	var roles []roleCount
	if err := db.Model(&models.Profile{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&roles).Error; err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}
	for _, r := range roles {
		out.UsersByRole[r.Role] = r.Count
	}

	if err := db.Model(&models.User{}).Count(&out.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := db.Model(&models.Project{}).Count(&out.Projects).Error; err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	if err := db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&out.TotalEscrowPaid).Error; err != nil {
		return nil, fmt.Errorf("sum payments: %w", err)
	}

	var open invoiceTotals
	if err := db.Model(&models.Invoice{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total - amount_paid), 0) AS amount").
		Where("status = ?", models.InvoiceOpen).
		Scan(&open).Error; err != nil {
		return nil, fmt.Errorf("sum open invoices: %w", err)
	}
	out.OpenInvoices = open.Count
	out.OpenInvoiceAmount = open.Amount
	return out, nil
}
