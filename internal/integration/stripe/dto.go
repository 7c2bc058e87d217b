package stripe

import "time"

// CreateCustomerRequest carries the fields mirrored onto a Stripe
// customer.
type CreateCustomerRequest struct {
	Email    string            `json:"email"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CheckoutSessionRequest starts a hosted checkout for one service
// subscription.
type CheckoutSessionRequest struct {
	CustomerID  string `json:"customer_id"`
	PriceAmount int64  `json:"price_amount"`
	Currency    string `json:"currency"`
	ServiceName string `json:"service_name"`
	Description string `json:"description"`
}

// CheckoutSessionResponse is the hosted checkout handle returned to
// the UI.
type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// InvoiceSummary is the subset of a Stripe invoice shown in the
// billing history view.
type InvoiceSummary struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	Status     string    `json:"status"`
	AmountDue  int64     `json:"amount_due"`
	AmountPaid int64     `json:"amount_paid"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"created_at"`
	HostedURL  string    `json:"hosted_url,omitempty"`
	PDFURL     string    `json:"pdf_url,omitempty"`
}

// PortalSessionResponse is the customer billing portal handle.
type PortalSessionResponse struct {
	URL string `json:"url"`
}
