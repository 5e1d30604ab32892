package billing

import (
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BillingPlugin serves subscriptions, cards and invoices to every role. Its
// tables are shared models because the processor webhook writes them too.
type BillingPlugin struct {
	signer storage.URLSigner
}

func New(signer storage.URLSigner) *BillingPlugin {
	return &BillingPlugin{signer: signer}
}

func (p *BillingPlugin) ID() string { return "billing" }

func (p *BillingPlugin) Roles() []string { return nil }

func (p *BillingPlugin) Models() []interface{} { return nil }

func (p *BillingPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewBillingHandler(NewBillingService(db, p.signer))

	router.Get("/plans", handler.Plans)

	router.Get("/subscription", handler.CurrentSubscription)
	router.Post("/subscription/cancel", handler.CancelSubscription)
	router.Post("/subscription/reactivate", handler.ReactivateSubscription)
	router.Post("/subscription/upgrade", handler.UpgradeSubscription)

	router.Get("/payment-methods", handler.PaymentMethods)
	router.Post("/payment-methods", handler.AddPaymentMethod)
	router.Post("/payment-methods/:id/default", handler.SetDefaultPaymentMethod)
	router.Delete("/payment-methods/:id", handler.DeletePaymentMethod)

	router.Get("/address", handler.Address)
	router.Put("/address", handler.PutAddress)

	router.Get("/invoices", handler.Invoices)
	router.Get("/invoices/:id", handler.Invoice)
	router.Get("/invoices/:id/download", handler.DownloadInvoice)
}
