package contractor

import (
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ContractorPlugin struct {
	publisher events.Publisher
}

func New(publisher events.Publisher) *ContractorPlugin {
	return &ContractorPlugin{publisher: publisher}
}

func (p *ContractorPlugin) ID() string { return "contractor" }

func (p *ContractorPlugin) Roles() []string { return []string{models.RoleContractor} }

func (p *ContractorPlugin) Models() []interface{} {
	return []interface{}{
		&WIPAA{},
	}
}

func (p *ContractorPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewContractorHandler(NewContractorService(db, p.publisher))

	router.Get("/profile", handler.GetProfile)
	router.Post("/profile", handler.CreateProfile)
	router.Patch("/profile", handler.UpdateProfile)

	router.Get("/projects", handler.OpenProjects)

	router.Get("/bids", handler.ListBids)
	router.Post("/bids", handler.CreateBid)
	router.Get("/bids/:id", handler.GetBid)
	router.Patch("/bids/:id", handler.UpdateBid)
	router.Delete("/bids/:id", handler.DeleteBid)

	router.Get("/wipaa", handler.ListWIPAA)
	router.Post("/wipaa", handler.CreateWIPAA)
	router.Get("/wipaa/:id", handler.GetWIPAA)
	router.Patch("/wipaa/:id", handler.UpdateWIPAA)
	router.Delete("/wipaa/:id", handler.DeleteWIPAA)
}
