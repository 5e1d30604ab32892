package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanFree         = "FREE"
	PlanProfessional = "PROFESSIONAL"
	PlanEnterprise   = "ENTERPRISE"
)

const (
	SubscriptionActive    = "ACTIVE"
	SubscriptionCancelled = "CANCELLED"
	SubscriptionPastDue   = "PAST_DUE"
	SubscriptionTrialing  = "TRIALING"
	SubscriptionExpired   = "EXPIRED"
)

const (
	InvoiceDraft         = "DRAFT"
	InvoiceOpen          = "OPEN"
	InvoicePaid          = "PAID"
	InvoiceVoid          = "VOID"
	InvoiceUncollectible = "UNCOLLECTIBLE"
)

var CardBrands = []string{"VISA", "MASTERCARD", "AMEX", "DISCOVER", "OTHER"}

// SubscriptionPlan is seeded and read-only at runtime. MaxProjects -1 means
// unlimited.
type SubscriptionPlan struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name              string    `gorm:"size:100;not null" json:"name"`
	PlanType          string    `gorm:"size:20;not null;uniqueIndex" json:"plan_type"`
	Price             int64     `gorm:"not null;default:0" json:"price"`
	BillingPeriod     string    `gorm:"size:20;default:'monthly'" json:"billing_period"`
	MaxProjects       int       `gorm:"default:1" json:"max_projects"`
	StorageGB         int       `gorm:"column:storage_gb;default:5" json:"storage_gb"`
	SupportLevel      string    `gorm:"size:50;default:'Basic'" json:"support_level"`
	AdvancedAnalytics bool      `gorm:"default:false" json:"advanced_analytics"`
	CustomBranding    bool      `gorm:"default:false" json:"custom_branding"`
	APIAccess         bool      `gorm:"column:api_access;default:false" json:"api_access"`
	DedicatedManager  bool      `gorm:"default:false" json:"dedicated_manager"`
	IsActive          bool      `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Subscription struct {
	ID                      uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID                  uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	PlanID                  uuid.UUID        `gorm:"type:uuid;not null" json:"plan_id"`
	Status                  string           `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"`
	CurrentPeriodStart      time.Time        `json:"current_period_start"`
	CurrentPeriodEnd        time.Time        `json:"current_period_end"`
	CancelAtPeriodEnd       bool             `gorm:"default:false" json:"cancel_at_period_end"`
	CancelledAt             *time.Time       `json:"cancelled_at"`
	ProcessorSubscriptionID string           `gorm:"size:255;index" json:"-"`
	ProcessorCustomerID     string           `gorm:"size:255" json:"-"`
	CreatedAt               time.Time        `json:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at"`
	Plan                    SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan"`
}

// PaymentMethod stores a processor token, never a card number.
type PaymentMethod struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CardBrand    string    `gorm:"size:20;not null" json:"card_brand"`
	LastFour     string    `gorm:"size:4;not null" json:"last_four"`
	ExpMonth     int       `gorm:"not null" json:"exp_month"`
	ExpYear      int       `gorm:"not null" json:"exp_year"`
	IsDefault    bool      `gorm:"default:false" json:"is_default"`
	PaymentToken string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type BillingAddress struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	AddressLine1 string    `gorm:"size:255" json:"address_line1"`
	AddressLine2 string    `gorm:"size:255" json:"address_line2"`
	City         string    `gorm:"size:100" json:"city"`
	State        string    `gorm:"size:100" json:"state"`
	PostalCode   string    `gorm:"size:20" json:"postal_code"`
	Country      string    `gorm:"size:100;default:'Zimbabwe'" json:"country"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Invoice struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	SubscriptionID *uuid.UUID    `gorm:"type:uuid;index" json:"subscription_id"`
	InvoiceNumber  string        `gorm:"size:50;not null;uniqueIndex" json:"invoice_number"`
	Status         string        `gorm:"size:20;not null;default:'DRAFT';index" json:"status"`
	Subtotal       int64         `gorm:"not null;default:0" json:"subtotal"`
	Tax            int64         `gorm:"not null;default:0" json:"tax"`
	Total          int64         `gorm:"not null;default:0" json:"total"`
	AmountPaid     int64         `gorm:"not null;default:0" json:"amount_paid"`
	InvoiceDate    time.Time     `json:"invoice_date"`
	DueDate        *time.Time    `json:"due_date"`
	PaidAt         *time.Time    `json:"paid_at"`
	PDFObjectKey   string        `gorm:"column:pdf_object_key;size:500" json:"-"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Subscription   *Subscription `gorm:"foreignKey:SubscriptionID" json:"-"`
}

func (i *Invoice) AmountDue() int64 {
	return i.Total - i.AmountPaid
}
