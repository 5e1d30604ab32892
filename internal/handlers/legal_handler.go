package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var documentTypes = map[string]string{
	"terms":   models.DocumentTerms,
	"privacy": models.DocumentPrivacy,
}

type LegalHandler struct {
	db *gorm.DB
}

func NewLegalHandler(db *gorm.DB) *LegalHandler {
	return &LegalHandler{db: db}
}

// Document serves the active terms or privacy document.
func (h *LegalHandler) Document(c *fiber.Ctx) error {
	docType, ok := documentTypes[strings.ToLower(c.Params("type"))]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:      true,
			Message:    "document type must be terms or privacy",
			StatusCode: fiber.StatusBadRequest,
			Field:      "type",
		})
	}

	var doc models.LegalDocument
	err := h.db.WithContext(c.UserContext()).
		Where("document_type = ? AND is_active = ?", docType, true).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.Fail(c, fiber.StatusNotFound, "Document not found")
	}
	if err != nil {
		slog.Error("legal document lookup failed", "type", docType, "error", err)
		return dto.Fail(c, fiber.StatusInternalServerError, "Failed to fetch document")
	}
	return c.JSON(doc)
}
