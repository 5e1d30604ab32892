package dto

// UpdateUserRequest writes only the fields that are present.
type UpdateUserRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
}

type AdminOverview struct {
	UsersByRole       map[string]int64 `json:"users_by_role"`
	TotalUsers        int64            `json:"total_users"`
	Projects          int64            `json:"projects"`
	TotalEscrowPaid   int64            `json:"total_escrow_paid"`
	OpenInvoices      int64            `json:"open_invoices"`
	OpenInvoiceAmount int64            `json:"open_invoice_amount"`
}
