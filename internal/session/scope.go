package session

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForOwner returns a GORM scope that filters projects by owner_id.
func ForOwner(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", userID)
	}
}

// OwnedProjectIDs is a subquery selecting the ids of projects owned by userID.
func OwnedProjectIDs(db *gorm.DB, userID uuid.UUID) *gorm.DB {
	return db.Table("projects").Select("id").Where("owner_id = ?", userID)
}

// Paginate clamps limit to (0, 100] and offset to >= 0.
func Paginate(limit, offset int) func(db *gorm.DB) *gorm.DB {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit).Offset(offset)
	}
}
