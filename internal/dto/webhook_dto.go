package dto

// BillingWebhook is the payment processor's event envelope.
type BillingWebhook struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	CreatedMs int64            `json:"created_ms"`
	Data      BillingEventData `json:"data"`
}

// BillingEventData carries the fields used by the handled event types.
// Amounts are minor units.
type BillingEventData struct {
	SubscriptionID string `json:"subscription_id"`
	CustomerID     string `json:"customer_id"`
	InvoiceNumber  string `json:"invoice_number"`
	AmountPaid     int64  `json:"amount_paid"`
	PaidAtMs       int64  `json:"paid_at_ms"`
	PeriodEndMs    int64  `json:"period_end_ms"`
}
