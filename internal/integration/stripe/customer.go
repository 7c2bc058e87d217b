package stripe

import (
	"context"

	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	stripesdk "github.com/stripe/stripe-go/v82"
)

// CreateCustomer registers a Stripe customer and returns its id.
func (c *Client) CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (string, error) {
	if !c.enabled {
		return "", ierr.NewError("billing is not configured").
			WithHint("Billing is not configured").
			Mark(ierr.ErrInvalidOperation)
	}

	params := &stripesdk.CustomerParams{
		Params: stripesdk.Params{Context: ctx},
		Email:  stripesdk.String(req.Email),
		Name:   stripesdk.String(req.Name),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	customer, err := c.api.Customers.New(params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to create billing customer").
			WithReportableDetails(map[string]interface{}{"email": req.Email}).
			Mark(ierr.ErrHTTPClient)
	}

	c.logger.Infow("created stripe customer",
		"stripe_customer_id", customer.ID,
		"email", req.Email,
	)
	return customer.ID, nil
}
