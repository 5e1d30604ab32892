package helpcenter

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Slug        string    `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:50" json:"icon"`
	SortOrder   int       `gorm:"not null;default:0" json:"order"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Articles    []Article `gorm:"foreignKey:CategoryID" json:"articles,omitempty"`
}

func (Category) TableName() string { return "help_center_categories" }

type Article struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Slug       string    `gorm:"size:150;not null;uniqueIndex" json:"slug"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Excerpt    string    `gorm:"type:text" json:"excerpt"`
	SortOrder  int       `gorm:"not null;default:0" json:"order"`
	IsFeatured bool      `gorm:"not null;default:false;index" json:"is_featured"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	ViewsCount int       `gorm:"not null;default:0" json:"views_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Article) TableName() string { return "help_center_articles" }

// FAQ.CategoryID is optional; FAQs without a category are listed last.
type FAQ struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Question   string     `gorm:"size:500;not null" json:"question"`
	Answer     string     `gorm:"type:text;not null" json:"answer"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	SortOrder  int        `gorm:"not null;default:0" json:"order"`
	IsActive   bool       `gorm:"not null;default:true" json:"is_active"`
	ViewsCount int        `gorm:"not null;default:0" json:"views_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (FAQ) TableName() string { return "faqs" }

// --- DTOs ---

type CategoriesResponse struct {
	Categories []Category `json:"categories"`
}

type ArticlesResponse struct {
	Articles []Article `json:"articles"`
}

type FAQsResponse struct {
	FAQs []FAQ `json:"faqs"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Order       int    `json:"order"`
}

type CreateArticleRequest struct {
	CategorySlug string `json:"category"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	Content      string `json:"content"`
	Excerpt      string `json:"excerpt"`
	Order        int    `json:"order"`
	IsFeatured   bool   `json:"is_featured"`
}

type CreateFAQRequest struct {
	CategorySlug string `json:"category"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	Order        int    `json:"order"`
}
