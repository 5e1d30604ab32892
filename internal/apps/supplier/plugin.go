package supplier

import (
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SupplierPlugin struct {
	publisher events.Publisher
}

func New(publisher events.Publisher) *SupplierPlugin {
	return &SupplierPlugin{publisher: publisher}
}

func (p *SupplierPlugin) ID() string { return "supplier" }

func (p *SupplierPlugin) Roles() []string { return []string{models.RoleSupplier} }

func (p *SupplierPlugin) Models() []interface{} {
	return []interface{}{
		&Product{},
	}
}

func (p *SupplierPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewSupplierHandler(NewSupplierService(db, p.publisher))

	router.Get("/profile", handler.GetProfile)
	router.Post("/profile", handler.CreateProfile)
	router.Patch("/profile", handler.UpdateProfile)

	router.Get("/products", handler.ListProducts)
	router.Post("/products", handler.CreateProduct)
	router.Get("/products/:id", handler.GetProduct)
	router.Patch("/products/:id", handler.UpdateProduct)
	router.Delete("/products/:id", handler.DeleteProduct)

	router.Get("/orders", handler.ListOrders)
	router.Get("/orders/:id", handler.GetOrder)
	router.Patch("/orders/:id", handler.UpdateOrderStatus)
}
