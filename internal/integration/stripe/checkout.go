package stripe

import (
	"context"

	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	stripesdk "github.com/stripe/stripe-go/v82"
)

// CreateCheckoutSession starts a hosted checkout for a service
// subscription and returns the redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	if !c.enabled {
		return nil, ierr.NewError("billing is not configured").
			WithHint("Billing is not configured").
			Mark(ierr.ErrInvalidOperation)
	}

	params := &stripesdk.CheckoutSessionParams{
		Params:     stripesdk.Params{Context: ctx},
		Customer:   stripesdk.String(req.CustomerID),
		Mode:       stripesdk.String(string(stripesdk.CheckoutSessionModePayment)),
		SuccessURL: stripesdk.String(c.cfg.SuccessURL),
		CancelURL:  stripesdk.String(c.cfg.CancelURL),
		LineItems: []*stripesdk.CheckoutSessionLineItemParams{
			{
				PriceData: &stripesdk.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripesdk.String(req.Currency),
					UnitAmount: stripesdk.Int64(req.PriceAmount),
					ProductData: &stripesdk.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripesdk.String(req.ServiceName),
						Description: stripesdk.String(req.Description),
					},
				},
				Quantity: stripesdk.Int64(1),
			},
		},
	}
	params.AddMetadata("service_name", req.ServiceName)

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to start checkout").
			WithReportableDetails(map[string]interface{}{
				"customer_id":  req.CustomerID,
				"service_name": req.ServiceName,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	c.logger.Infow("created checkout session",
		"session_id", session.ID,
		"customer_id", req.CustomerID,
		"service_name", req.ServiceName,
	)

	return &CheckoutSessionResponse{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

// CreatePortalSession opens the Stripe billing portal for a customer.
func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSessionResponse, error) {
	if !c.enabled {
		return nil, ierr.NewError("billing is not configured").
			WithHint("Billing is not configured").
			Mark(ierr.ErrInvalidOperation)
	}

	params := &stripesdk.BillingPortalSessionParams{
		Params:    stripesdk.Params{Context: ctx},
		Customer:  stripesdk.String(customerID),
		ReturnURL: stripesdk.String(returnURL),
	}

	session, err := c.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to open billing portal").
			WithReportableDetails(map[string]interface{}{"customer_id": customerID}).
			Mark(ierr.ErrHTTPClient)
	}

	return &PortalSessionResponse{URL: session.URL}, nil
}
