package database

import (
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPlans are the three subscription tiers. Prices in cents.
var DefaultPlans = []models.SubscriptionPlan{
	{
		Name: "Free", PlanType: models.PlanFree, Price: 0, BillingPeriod: "monthly",
		MaxProjects: 1, StorageGB: 5, SupportLevel: "Basic", IsActive: true,
	},
	{
		Name: "Professional", PlanType: models.PlanProfessional, Price: 2900, BillingPeriod: "monthly",
		MaxProjects: 10, StorageGB: 50, SupportLevel: "Priority",
		AdvancedAnalytics: true, CustomBranding: true, IsActive: true,
	},
	{
		Name: "Enterprise", PlanType: models.PlanEnterprise, Price: 9900, BillingPeriod: "monthly",
		MaxProjects: -1, StorageGB: 500, SupportLevel: "24/7 Dedicated",
		AdvancedAnalytics: true, CustomBranding: true, APIAccess: true, DedicatedManager: true, IsActive: true,
	},
}

var DefaultLegalDocuments = []models.LegalDocument{
	{
		DocumentType: models.DocumentTerms,
		Title:        "Terms of Service",
		IsActive:     true,
		Content: `By using DzeNhare SQB you agree to these terms.

Accounts: you are responsible for the accuracy of your profile and for activity under your account.
Projects and payments: milestone payments are released from escrow only by the project owner. Released payments are final.
Contractors and suppliers: bids, quotes and orders are agreements between the parties; DzeNhare SQB is not a party to them.
Subscriptions: paid plans renew each period until cancelled. Cancellation takes effect at the end of the current period.
Termination: we may suspend accounts that violate these terms.`,
	},
	{
		DocumentType: models.DocumentPrivacy,
		Title:        "Privacy Policy",
		IsActive:     true,
		Content: `DzeNhare SQB collects the information needed to run the marketplace: your name, email, phone number, role and the projects, bids and orders you create.

Authentication is handled by our identity provider; we never see or store your password.
Payment cards are stored by our payment processor; we keep only the card brand, last four digits and expiry.
We do not sell personal information. Data is shared with other users only as needed to fulfil projects you take part in.
Contact support to request a copy or deletion of your data.`,
	},
}

// SeedDefaults inserts plans and legal documents that do not exist yet.
// Existing rows are left untouched, so it is safe to run on every start.
func SeedDefaults(db *gorm.DB) error {
	for _, plan := range DefaultPlans {
		p := plan
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "plan_type"}},
			DoNothing: true,
		}).Create(&p).Error; err != nil {
			return fmt.Errorf("seed plan %s: %w", plan.PlanType, err)
		}
	}
	for _, doc := range DefaultLegalDocuments {
		d := doc
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_type"}},
			DoNothing: true,
		}).Create(&d).Error; err != nil {
			return fmt.Errorf("seed legal document %s: %w", doc.DocumentType, err)
		}
	}
	slog.Info("default plans and legal documents seeded")
	return nil
}
