package contractor

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WIPAA is a work-in-progress account analysis record: one reporting period
// of one project as seen by the contractor.
type WIPAA struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID        uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	ContractorID     uuid.UUID `gorm:"type:uuid;not null;index" json:"contractor_id"`
	Period           time.Time `gorm:"type:date;not null" json:"period"`
	CostsIncurred    int64     `gorm:"not null;default:0" json:"costs_incurred"`
	BilledRevenue    int64     `gorm:"not null;default:0" json:"billed_revenue"`
	EarnedRevenue    int64     `gorm:"not null;default:0" json:"earned_revenue"`
	OverUnderBilling int64     `gorm:"-" json:"over_under_billing"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (WIPAA) TableName() string { return "wipaa_records" }

// Positive means billed ahead of work earned.
func (w *WIPAA) computeBilling() {
	w.OverUnderBilling = w.BilledRevenue - w.EarnedRevenue
}

func (w *WIPAA) AfterFind(*gorm.DB) error {
	w.computeBilling()
	return nil
}

// --- DTOs ---

type CreateProfileRequest struct {
	CompanyName   string `json:"company_name"`
	LicenseNumber string `json:"license_number"`
}

type UpdateProfileRequest struct {
	CompanyName   *string `json:"company_name"`
	LicenseNumber *string `json:"license_number"`
}

type CreateBidRequest struct {
	ProjectID   uuid.UUID `json:"project_id"`
	DirectCosts int64     `json:"direct_costs"`
	Overhead    int64     `json:"overhead"`
	NetMargin   int64     `json:"net_margin"`
	Status      string    `json:"status"`
}

type UpdateBidRequest struct {
	DirectCosts *int64  `json:"direct_costs"`
	Overhead    *int64  `json:"overhead"`
	NetMargin   *int64  `json:"net_margin"`
	Status      *string `json:"status"`
}

type CreateWIPAARequest struct {
	ProjectID     uuid.UUID `json:"project_id"`
	Period        string    `json:"period"`
	CostsIncurred int64     `json:"costs_incurred"`
	BilledRevenue int64     `json:"billed_revenue"`
	EarnedRevenue int64     `json:"earned_revenue"`
}

type UpdateWIPAARequest struct {
	Period        *string `json:"period"`
	CostsIncurred *int64  `json:"costs_incurred"`
	BilledRevenue *int64  `json:"billed_revenue"`
	EarnedRevenue *int64  `json:"earned_revenue"`
}

type OpenProjectsResponse struct {
	Projects []models.Project `json:"projects"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}
