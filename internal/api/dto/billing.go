package dto

import "github.com/brokerdesk/brokerdesk/internal/integration/stripe"

// CheckoutRequest starts a hosted checkout for one catalog service.
type CheckoutRequest struct {
	ServiceName string `json:"service_name" binding:"required"`
}

// CheckoutResponse is the hosted checkout redirect.
type CheckoutResponse = stripe.CheckoutSessionResponse

// InvoiceListResponse is the customer's billing history.
type InvoiceListResponse struct {
	Invoices []*stripe.InvoiceSummary `json:"invoices"`
}

// BillingPortalResponse is the Stripe billing portal redirect.
type BillingPortalResponse = stripe.PortalSessionResponse
