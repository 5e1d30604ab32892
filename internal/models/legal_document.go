package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocumentTerms   = "TERMS"
	DocumentPrivacy = "PRIVACY"
)

type LegalDocument struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentType string    `gorm:"size:20;not null;uniqueIndex" json:"document_type"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
