package builder

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/google/uuid"
)

const (
	ChangeOrderProposed = "PROPOSED"
	ChangeOrderApproved = "APPROVED"
	ChangeOrderRejected = "REJECTED"
)

var ChangeOrderStatuses = []string{ChangeOrderProposed, ChangeOrderApproved, ChangeOrderRejected}

// ChangeOrder is a proposed change to a project's scope and cost. Amount may
// be negative for reductions.
type ChangeOrder struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Amount      int64     `gorm:"not null;default:0" json:"amount"`
	Status      string    `gorm:"size:20;not null;default:'PROPOSED'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SiteUpdate is a progress report from a project site. The photo stays in
// object storage and is handed out as a short-lived link.
type SiteUpdate struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID      uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Description    string    `gorm:"type:text;not null" json:"description"`
	ImageObjectKey string    `gorm:"size:500" json:"-"`
	HasImage       bool      `gorm:"-" json:"has_image"`
	GeoLocation    string    `gorm:"size:255" json:"geo_location"`
	Verified       bool      `gorm:"not null;default:false" json:"verified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// --- Escrow ---

type NextPayment struct {
	MilestoneID uuid.UUID `json:"milestone_id"`
	Name        string    `json:"milestone_name"`
	Amount      int64     `json:"amount"`
	DueDate     string    `json:"due_date"`
	Status      string    `json:"status"`
}

type EscrowProject struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Status   string    `json:"status"`
	Budget   int64     `json:"budget"`
}

// EscrowSummary is derived per request and never stored. RemainingBalance may
// be negative when paid milestones exceed the budget.
type EscrowSummary struct {
	Project          EscrowProject `json:"project"`
	Budget           int64         `json:"budget"`
	TotalPaid        int64         `json:"total_paid"`
	RemainingBalance int64         `json:"remaining_balance"`
	NextPayment      *NextPayment  `json:"next_payment"`
}

type EscrowSummaryResponse struct {
	Projects []EscrowSummary `json:"projects"`
}

// --- Connections ---

type ContractorConnection struct {
	ContractorID           uuid.UUID `json:"contractor_id"`
	CompanyName            string    `json:"company_name"`
	LicenseNumber          string    `json:"license_number"`
	BidsCount              int64     `json:"bids_count"`
	AverageRating          float64   `json:"average_rating"`
	RatingsCount           int64     `json:"ratings_count"`
	CompletedProjectsCount int64     `json:"completed_projects_count"`
}

type SupplierConnection struct {
	SupplierID  uuid.UUID `json:"supplier_id"`
	CompanyName string    `json:"company_name"`
	OnTimeRate  int       `json:"on_time_rate"`
	DefectRate  int       `json:"defect_rate"`
	OrdersCount int64     `json:"orders_count"`
	TotalSpent  int64     `json:"total_spent"`
}

type ConnectionsResponse struct {
	Contractors []ContractorConnection `json:"contractors"`
	Suppliers   []SupplierConnection   `json:"suppliers"`
}

// --- DTOs ---

type CreateProjectRequest struct {
	Title          string   `json:"title"`
	Location       string   `json:"location"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Budget         int64    `json:"budget"`
	Status         string   `json:"status"`
	EngagementTier string   `json:"engagement_tier"`
	SI56Verified   bool     `json:"si56_verified"`
}

type UpdateProjectRequest struct {
	Title          *string  `json:"title"`
	Location       *string  `json:"location"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Budget         *int64   `json:"budget"`
	Status         *string  `json:"status"`
	EngagementTier *string  `json:"engagement_tier"`
	SI56Verified   *bool    `json:"si56_verified"`
}

type CreateMilestoneRequest struct {
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	Amount    int64     `json:"amount"`
	DueDate   string    `json:"due_date"`
	Status    string    `json:"status"`
}

// UpdateMilestoneRequest has no Amount: a milestone's amount is fixed once
// created.
type UpdateMilestoneRequest struct {
	Name    *string `json:"name"`
	DueDate *string `json:"due_date"`
	Status  *string `json:"status"`
}

type CreatePaymentRequest struct {
	ProjectID   uuid.UUID `json:"project_id"`
	MilestoneID uuid.UUID `json:"milestone_id"`
	Method      string    `json:"method"`
	Reference   string    `json:"reference"`
}

type CreateChangeOrderRequest struct {
	ProjectID   uuid.UUID `json:"project_id"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
}

type UpdateChangeOrderRequest struct {
	Description *string `json:"description"`
	Amount      *int64  `json:"amount"`
	Status      *string `json:"status"`
}

type CreateSiteUpdateRequest struct {
	ProjectID      uuid.UUID `json:"project_id"`
	Description    string    `json:"description"`
	ImageObjectKey string    `json:"image_object_key"`
	GeoLocation    string    `json:"geo_location"`
	Verified       bool      `json:"verified"`
}

type UpdateSiteUpdateRequest struct {
	Description    *string `json:"description"`
	ImageObjectKey *string `json:"image_object_key"`
	GeoLocation    *string `json:"geo_location"`
	Verified       *bool   `json:"verified"`
}

type ImageResponse struct {
	ImageURL string `json:"image_url"`
}

type CreateOrderRequest struct {
	ProjectID  uuid.UUID `json:"project_id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	TotalCost  int64     `json:"total_cost"`
	TCOScore   int       `json:"tco_score"`
}

type UpdateBidStatusRequest struct {
	Status string `json:"status"`
}

type CreateRatingRequest struct {
	ContractorID uuid.UUID `json:"contractor_id"`
	ProjectID    uuid.UUID `json:"project_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
}

type ProjectListResponse struct {
	Projects []models.Project `json:"projects"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}
