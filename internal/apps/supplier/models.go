package supplier

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalogue entry. UnitPrice is in cents.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SupplierID  uuid.UUID `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	UnitPrice   int64     `gorm:"not null;check:unit_price >= 0" json:"unit_price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- DTOs ---

type CreateProfileRequest struct {
	CompanyName string `json:"company_name"`
	OnTimeRate  int    `json:"on_time_rate"`
	DefectRate  int    `json:"defect_rate"`
}

type UpdateProfileRequest struct {
	CompanyName *string `json:"company_name"`
	OnTimeRate  *int    `json:"on_time_rate"`
	DefectRate  *int    `json:"defect_rate"`
}

type CreateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UnitPrice   int64  `json:"unit_price"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	UnitPrice   *int64  `json:"unit_price"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}
