package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BidDraft     = "DRAFT"
	BidSubmitted = "SUBMITTED"
	BidAccepted  = "ACCEPTED"
	BidRejected  = "REJECTED"
)

var BidStatuses = []string{BidDraft, BidSubmitted, BidAccepted, BidRejected}

const (
	OrderPending   = "PENDING"
	OrderConfirmed = "CONFIRMED"
	OrderShipped   = "SHIPPED"
	OrderDelivered = "DELIVERED"
	OrderCancelled = "CANCELLED"
)

var OrderStatuses = []string{OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled}

type ContractorProfile struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CompanyName   string    `gorm:"size:255;not null" json:"company_name"`
	LicenseNumber string    `gorm:"size:100" json:"license_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	User          *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Bid.TotalAmount is always DirectCosts + Overhead + NetMargin.
type Bid struct {
	ID           uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"project_id"`
	ContractorID uuid.UUID          `gorm:"type:uuid;not null;index" json:"contractor_id"`
	DirectCosts  int64              `gorm:"not null;default:0" json:"direct_costs"`
	Overhead     int64              `gorm:"not null;default:0" json:"overhead"`
	NetMargin    int64              `gorm:"not null;default:0" json:"net_margin"`
	TotalAmount  int64              `gorm:"not null;default:0" json:"total_amount"`
	Status       string             `gorm:"size:20;not null;default:'DRAFT';index" json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Contractor   *ContractorProfile `gorm:"foreignKey:ContractorID" json:"contractor,omitempty"`
}

func (b *Bid) RecomputeTotal() {
	b.TotalAmount = b.DirectCosts + b.Overhead + b.NetMargin
}

type ContractorRating struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContractorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_unique" json:"contractor_id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_unique" json:"project_id"`
	BuilderID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_unique" json:"builder_id"`
	Rating       int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment      string    `gorm:"type:text" json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// OnTimeRate and DefectRate are basis points (10000 = 100%).
type SupplierProfile struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CompanyName string    `gorm:"size:255;not null" json:"company_name"`
	OnTimeRate  int       `gorm:"default:0" json:"on_time_rate"`
	DefectRate  int       `gorm:"default:0" json:"defect_rate"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

type MaterialOrder struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"project_id"`
	SupplierID uuid.UUID        `gorm:"type:uuid;not null;index" json:"supplier_id"`
	TotalCost  int64            `gorm:"not null;default:0" json:"total_cost"`
	TCOScore   int              `gorm:"column:tco_score;default:0" json:"tco_score"`
	Status     string           `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Supplier   *SupplierProfile `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
}

func Contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
