package entity

import "time"

// Invoice is a read-only projection of a provider invoice used by the
// dashboard. Invoices are never persisted locally; the query layer reads
// them straight from the provider.
type Invoice struct {
	ID               string    `json:"id"`
	Number           string    `json:"number,omitempty"`
	CustomerID       string    `json:"customer_id"`
	SubscriptionID   string    `json:"subscription_id,omitempty"`
	Status           string    `json:"status"`
	AmountDue        int64     `json:"amount_due"`
	AmountPaid       int64     `json:"amount_paid"`
	Currency         string    `json:"currency"`
	AmountDisplay    string    `json:"amount_display"`
	HostedInvoiceURL string    `json:"hosted_invoice_url,omitempty"`
	InvoicePDF       string    `json:"invoice_pdf,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// InvoicePage is one provider page of invoices plus the forward-pagination
// marker. Going back requires client-held cursor history since the provider
// has no reverse cursors.
type InvoicePage struct {
	Data    []*Invoice `json:"data"`
	HasMore bool       `json:"has_more"`
}
