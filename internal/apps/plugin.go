package apps

import (
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Plugin defines the interface every role dashboard implements.
type Plugin interface {
	// ID returns the dashboard identifier; routes are mounted under /api/<ID>.
	ID() string

	// Roles lists the profile roles admitted to the dashboard. ADMIN is always
	// admitted. An empty list admits every authenticated user.
	Roles() []string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts dashboard routes on the given Fiber group.
	// The group already has identity and role middleware applied.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// AdminPlugin extends Plugin with admin-specific route registration.
type AdminPlugin interface {
	Plugin

	// RegisterAdminRoutes mounts admin-only routes on the given Fiber group.
	// The group has both identity and admin middleware applied.
	RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}
