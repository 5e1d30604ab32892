package helpcenter

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/httpx"
	"github.com/gofiber/fiber/v2"
)

type HelpCenterHandler struct {
	service *HelpCenterService
}

func NewHelpCenterHandler(service *HelpCenterService) *HelpCenterHandler {
	return &HelpCenterHandler{service: service}
}

func (h *HelpCenterHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch categories")
	}
	return c.JSON(CategoriesResponse{Categories: categories})
}

func (h *HelpCenterHandler) Articles(c *fiber.Ctx) error {
	featured := strings.EqualFold(c.Query("featured"), "true")
	articles, err := h.service.Articles(c.UserContext(), c.Query("category"), featured)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch articles")
	}
	return c.JSON(ArticlesResponse{Articles: articles})
}

func (h *HelpCenterHandler) Article(c *fiber.Ctx) error {
	article, err := h.service.ArticleBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch article")
	}
	return c.JSON(article)
}

func (h *HelpCenterHandler) FAQs(c *fiber.Ctx) error {
	faqs, err := h.service.FAQs(c.UserContext(), c.Query("category"))
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch FAQs")
	}
	return c.JSON(FAQsResponse{FAQs: faqs})
}

func (h *HelpCenterHandler) FAQ(c *fiber.Ctx) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return apperr.Respond(c, err, "")
	}
	faq, err := h.service.FAQByID(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err, "Failed to fetch FAQ")
	}
	return c.JSON(faq)
}

// --- Admin ---

func (h *HelpCenterHandler) CreateCategory(c *fiber.Ctx) error {
	var req CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	category, err := h.service.CreateCategory(c.UserContext(), req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create category")
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *HelpCenterHandler) CreateArticle(c *fiber.Ctx) error {
	var req CreateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	article, err := h.service.CreateArticle(c.UserContext(), req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create article")
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

func (h *HelpCenterHandler) CreateFAQ(c *fiber.Ctx) error {
	var req CreateFAQRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.InvalidBody(c)
	}
	faq, err := h.service.CreateFAQ(c.UserContext(), req)
	if err != nil {
		return apperr.Respond(c, err, "Failed to create FAQ")
	}
	return c.Status(fiber.StatusCreated).JSON(faq)
}
