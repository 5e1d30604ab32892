package models

import (
	"time"

	"github.com/google/uuid"
)

// Marketplace roles. Stored upper-case on Profile.Role.
const (
	RoleBuilder    = "BUILDER"
	RoleContractor = "CONTRACTOR"
	RoleSupplier   = "SUPPLIER"
	RoleAdmin      = "ADMIN"
)

var Roles = []string{RoleBuilder, RoleContractor, RoleSupplier, RoleAdmin}

func IsValidRole(role string) bool {
	return Contains(Roles, role)
}

// User mirrors an identity at the external provider. Subject is the provider's
// opaque user id and the only key used to find the local record.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Subject   string    `gorm:"size:255;not null;uniqueIndex" json:"-"`
	Email     string    `gorm:"size:255;index" json:"email"`
	FirstName string    `gorm:"size:150" json:"first_name"`
	LastName  string    `gorm:"size:150" json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Profile   *Profile  `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Role        string    `gorm:"size:20;not null;default:'BUILDER';index" json:"role"`
	PhoneNumber string    `gorm:"size:20" json:"phone_number"`
	Address     string    `gorm:"type:text" json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasRole reports whether the user's profile carries one of roles.
func (u *User) HasRole(roles ...string) bool {
	if u == nil || u.Profile == nil {
		return false
	}
	for _, r := range roles {
		if u.Profile.Role == r {
			return true
		}
	}
	return false
}
