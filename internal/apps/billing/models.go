package billing

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/models"
	"github.com/google/uuid"
)

// PlanResponse is a plan with its marketing feature list.
type PlanResponse struct {
	models.SubscriptionPlan
	Features []string `json:"features"`
}

func planFeatures(p models.SubscriptionPlan) []string {
	var features []string
	switch {
	case p.MaxProjects < 0:
		features = append(features, "Unlimited Projects")
	case p.MaxProjects == 1:
		features = append(features, "1 Active Project")
	default:
		features = append(features, fmt.Sprintf("%d Active Projects", p.MaxProjects))
	}
	features = append(features,
		p.SupportLevel+" Support",
		fmt.Sprintf("%dGB Storage", p.StorageGB),
	)
	if p.AdvancedAnalytics {
		features = append(features, "Advanced Analytics")
	}
	if p.CustomBranding {
		features = append(features, "Custom Branding")
	}
	if p.APIAccess {
		features = append(features, "API Access")
	}
	if p.DedicatedManager {
		features = append(features, "Dedicated Account Manager")
	}
	if p.PlanType == models.PlanFree {
		features = append(features, "Community Access")
	}
	return features
}

type UpgradeRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
}

// UpgradeResponse carries the invoice opened for a paid plan, if any.
type UpgradeResponse struct {
	Subscription *models.Subscription `json:"subscription"`
	Invoice      *models.Invoice      `json:"invoice,omitempty"`
}

// CreatePaymentMethodRequest takes a processor token; raw card numbers are
// never accepted.
type CreatePaymentMethodRequest struct {
	PaymentToken string `json:"payment_token"`
	CardBrand    string `json:"card_brand"`
	LastFour     string `json:"last_four"`
	ExpMonth     int    `json:"exp_month"`
	ExpYear      int    `json:"exp_year"`
	IsDefault    bool   `json:"is_default"`
}

type BillingAddressRequest struct {
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

type DownloadResponse struct {
	DownloadURL string `json:"download_url"`
}
