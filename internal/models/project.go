package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProjectPlanning   = "PLANNING"
	ProjectInProgress = "IN_PROGRESS"
	ProjectCompleted  = "COMPLETED"
	ProjectOnHold     = "ON_HOLD"
)

var ProjectStatuses = []string{ProjectPlanning, ProjectInProgress, ProjectCompleted, ProjectOnHold}

// OpenProjectStatuses are the project states that take and accept bids.
var OpenProjectStatuses = []string{ProjectPlanning, ProjectInProgress}

const (
	TierDIY  = "DIY"
	TierDIT  = "DIT"
	TierDIFY = "DIFY"
)

var EngagementTiers = []string{TierDIY, TierDIT, TierDIFY}

const (
	MilestonePending  = "PENDING"
	MilestoneVerified = "VERIFIED"
	MilestonePaid     = "PAID"
)

// Amounts are minor currency units (cents).
type Project struct {
	ID             uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title          string      `gorm:"size:255;not null" json:"title"`
	Location       string      `gorm:"size:255" json:"location"`
	Latitude       *float64    `json:"latitude"`
	Longitude      *float64    `json:"longitude"`
	Budget         int64       `gorm:"not null;default:0;check:budget >= 0" json:"budget"`
	Status         string      `gorm:"size:20;not null;default:'PLANNING';index" json:"status"`
	SI56Verified   bool        `gorm:"column:si56_verified;default:false" json:"si56_verified"`
	EngagementTier string      `gorm:"size:10;not null;default:'DIY'" json:"engagement_tier"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Milestones     []Milestone `gorm:"foreignKey:ProjectID" json:"milestones,omitempty"`
}

type Milestone struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Amount    int64     `gorm:"not null;check:amount > 0" json:"amount"`
	Status    string    `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	DueDate   time.Time `gorm:"type:date;not null" json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payment records the settlement of exactly one milestone.
type Payment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	MilestoneID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"milestone_id"`
	PayerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"payer_id"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Method      string    `gorm:"size:50" json:"method"`
	Reference   string    `gorm:"size:255" json:"reference"`
	Status      string    `gorm:"size:20;not null;default:'COMPLETED'" json:"status"`
	PaidAt      time.Time `json:"paid_at"`
	CreatedAt   time.Time `json:"created_at"`
}
