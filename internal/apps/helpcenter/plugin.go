package helpcenter

import (
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HelpCenterPlugin struct{}

func New() *HelpCenterPlugin {
	return &HelpCenterPlugin{}
}

func (p *HelpCenterPlugin) ID() string { return "help-center" }

// Open to every signed-in role.
func (p *HelpCenterPlugin) Roles() []string { return nil }

func (p *HelpCenterPlugin) Models() []interface{} {
	return []interface{}{
		&Category{},
		&Article{},
		&FAQ{},
	}
}

func (p *HelpCenterPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewHelpCenterHandler(NewHelpCenterService(db))

	router.Get("/categories", handler.Categories)
	router.Get("/articles", handler.Articles)
	router.Get("/articles/:slug", handler.Article)
	router.Get("/faqs", handler.FAQs)
	router.Get("/faqs/:id", handler.FAQ)
}

func (p *HelpCenterPlugin) RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewHelpCenterHandler(NewHelpCenterService(db))

	router.Post("/help-center/categories", handler.CreateCategory)
	router.Post("/help-center/articles", handler.CreateArticle)
	router.Post("/help-center/faqs", handler.CreateFAQ)
}
