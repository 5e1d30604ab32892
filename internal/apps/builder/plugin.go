package builder

import (
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BuilderPlugin struct {
	publisher events.Publisher
	filter    *services.ContentFilter
	signer    storage.URLSigner
}

func New(publisher events.Publisher, filter *services.ContentFilter, signer storage.URLSigner) *BuilderPlugin {
	return &BuilderPlugin{publisher: publisher, filter: filter, signer: signer}
}

func (p *BuilderPlugin) ID() string { return "builder" }

func (p *BuilderPlugin) Roles() []string { return []string{models.RoleBuilder} }

func (p *BuilderPlugin) Models() []interface{} {
	return []interface{}{
		&ChangeOrder{},
		&SiteUpdate{},
	}
}

func (p *BuilderPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewHandler(
		NewProjectService(db, p.publisher, p.filter),
		NewPaymentService(db, p.publisher),
		NewEscrowService(db),
		NewConnectionService(db),
		NewSiteUpdateService(db, p.signer),
	)

	router.Get("/escrow-summary", handler.EscrowSummary)
	router.Post("/payments", handler.CreatePayment)
	router.Get("/payments", handler.ListPayments)

	router.Post("/projects", handler.CreateProject)
	router.Get("/projects", handler.ListProjects)
	router.Get("/projects/:id", handler.GetProject)
	router.Patch("/projects/:id", handler.UpdateProject)
	router.Delete("/projects/:id", handler.DeleteProject)
	router.Get("/projects/:id/connections", handler.ProjectConnections)
	router.Get("/projects/:id/bids", handler.ProjectBids)
	router.Patch("/bids/:id", handler.ReviewBid)

	router.Post("/milestones", handler.CreateMilestone)
	router.Get("/milestones", handler.ListMilestones)
	router.Get("/milestones/:id", handler.GetMilestone)
	router.Patch("/milestones/:id", handler.UpdateMilestone)
	router.Delete("/milestones/:id", handler.DeleteMilestone)

	router.Post("/change-orders", handler.CreateChangeOrder)
	router.Get("/change-orders", handler.ListChangeOrders)
	router.Patch("/change-orders/:id", handler.UpdateChangeOrder)
	router.Delete("/change-orders/:id", handler.DeleteChangeOrder)

	router.Post("/site-updates", handler.CreateSiteUpdate)
	router.Get("/site-updates", handler.ListSiteUpdates)
	router.Get("/site-updates/:id", handler.GetSiteUpdate)
	router.Patch("/site-updates/:id", handler.UpdateSiteUpdate)
	router.Delete("/site-updates/:id", handler.DeleteSiteUpdate)
	router.Get("/site-updates/:id/image", handler.SiteUpdateImage)

	router.Post("/orders", handler.PlaceOrder)
	router.Get("/orders", handler.ListOrders)
	router.Post("/orders/:id/cancel", handler.CancelOrder)

	router.Get("/connections", handler.Connections)
	router.Get("/contractors", handler.ContractorDirectory)
	router.Post("/ratings", handler.RateContractor)
	router.Get("/ratings", handler.ListRatings)
}
