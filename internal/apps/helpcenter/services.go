package helpcenter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type HelpCenterService struct {
	db *gorm.DB
}

func NewHelpCenterService(db *gorm.DB) *HelpCenterService {
	return &HelpCenterService{db: db}
}

func activeArticles(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("sort_order ASC, title ASC")
}

// Categories returns active categories, each with its active articles.
func (s *HelpCenterService) Categories(ctx context.Context) ([]Category, error) {
	categories := []Category{}
	err := s.db.WithContext(ctx).
		Preload("Articles", activeArticles).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

func (s *HelpCenterService) Articles(ctx context.Context, categorySlug string, featuredOnly bool) ([]Article, error) {
	query := s.db.WithContext(ctx).Model(&Article{}).
		Preload("Category").
		Joins("JOIN help_center_categories c ON c.id = help_center_articles.category_id").
		Where("help_center_articles.is_active = ?", true)
	if categorySlug != "" {
		query = query.Where("c.slug = ?", categorySlug)
	}
	if featuredOnly {
		query = query.Where("help_center_articles.is_featured = ?", true)
	}

	articles := []Article{}
	err := query.
		Order("c.sort_order ASC, c.name ASC, help_center_articles.sort_order ASC, help_center_articles.title ASC").
		Find(&articles).Error
	return articles, err
}

// ArticleBySlug returns an active article and counts the view. The increment
// is a single UPDATE so concurrent readers never lose a view.
func (s *HelpCenterService) ArticleBySlug(ctx context.Context, slug string) (*Article, error) {
	db := s.db.WithContext(ctx)
	result := db.Model(&Article{}).
		Where("slug = ? AND is_active = ?", slug, true).
		UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	if result.Error != nil {
		return nil, fmt.Errorf("count article view: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("article")
	}

	var article Article
	if err := db.Preload("Category").Where("slug = ?", slug).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("article")
		}
		return nil, err
	}
	return &article, nil
}

func (s *HelpCenterService) FAQs(ctx context.Context, categorySlug string) ([]FAQ, error) {
	query := s.db.WithContext(ctx).Model(&FAQ{}).
		Preload("Category").
		Joins("LEFT JOIN help_center_categories c ON c.id = faqs.category_id").
		Where("faqs.is_active = ?", true)
	if categorySlug != "" {
		query = query.Where("c.slug = ?", categorySlug)
	}

	faqs := []FAQ{}
	err := query.
		Order("c.sort_order ASC NULLS LAST, c.name ASC, faqs.sort_order ASC, faqs.question ASC").
		Find(&faqs).Error
	return faqs, err
}

func (s *HelpCenterService) FAQByID(ctx context.Context, id uuid.UUID) (*FAQ, error) {
	db := s.db.WithContext(ctx)
	result := db.Model(&FAQ{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	if result.Error != nil {
		return nil, fmt.Errorf("count faq view: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("FAQ")
	}

	var faq FAQ
	if err := db.Preload("Category").First(&faq, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("FAQ")
		}
		return nil, err
	}
	return &faq, nil
}

// --- Admin ---

func validSlug(field, slug string) error {
	if !slugPattern.MatchString(slug) {
		return apperr.Invalid(field, "must be lower-case words separated by hyphens")
	}
	return nil
}

func (s *HelpCenterService) categoryBySlug(ctx context.Context, slug string) (*Category, error) {
	var category Category
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("category")
	}
	return &category, err
}

func (s *HelpCenterService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	if err := validSlug("slug", req.Slug); err != nil {
		return nil, err
	}
	category := Category{
		ID:          uuid.New(),
		Name:        name,
		Slug:        req.Slug,
		Description: strings.TrimSpace(req.Description),
		Icon:        strings.TrimSpace(req.Icon),
		SortOrder:   req.Order,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("slug already in use")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

func (s *HelpCenterService) CreateArticle(ctx context.Context, req CreateArticleRequest) (*Article, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Invalid("title", "is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperr.Invalid("content", "is required")
	}
	if err := validSlug("slug", req.Slug); err != nil {
		return nil, err
	}
	category, err := s.categoryBySlug(ctx, req.CategorySlug)
	if err != nil {
		return nil, err
	}

	article := Article{
		ID:         uuid.New(),
		CategoryID: category.ID,
		Title:      title,
		Slug:       req.Slug,
		Content:    req.Content,
		Excerpt:    strings.TrimSpace(req.Excerpt),
		SortOrder:  req.Order,
		IsFeatured: req.IsFeatured,
		IsActive:   true,
	}
	if err := s.db.WithContext(ctx).Create(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("slug already in use")
		}
		return nil, fmt.Errorf("create article: %w", err)
	}
	article.Category = category
	return &article, nil
}

func (s *HelpCenterService) CreateFAQ(ctx context.Context, req CreateFAQRequest) (*FAQ, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, apperr.Invalid("question", "is required")
	}
	if strings.TrimSpace(req.Answer) == "" {
		return nil, apperr.Invalid("answer", "is required")
	}

	faq := FAQ{
		ID:        uuid.New(),
		Question:  question,
		Answer:    req.Answer,
		SortOrder: req.Order,
		IsActive:  true,
	}
	if req.CategorySlug != "" {
		category, err := s.categoryBySlug(ctx, req.CategorySlug)
		if err != nil {
			return nil, err
		}
		faq.CategoryID = &category.ID
		faq.Category = category
	}
	if err := s.db.WithContext(ctx).Create(&faq).Error; err != nil {
		return nil, fmt.Errorf("create faq: %w", err)
	}
	return &faq, nil
}
