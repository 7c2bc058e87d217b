package stripe

import (
	"context"
	"time"

	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	stripesdk "github.com/stripe/stripe-go/v82"
)

// ListInvoices returns the customer's invoice history, newest first.
func (c *Client) ListInvoices(ctx context.Context, customerID string, limit int) ([]*InvoiceSummary, error) {
	if !c.enabled {
		return nil, ierr.NewError("billing is not configured").
			WithHint("Billing is not configured").
			Mark(ierr.ErrInvalidOperation)
	}
	if limit <= 0 {
		limit = 20
	}

	params := &stripesdk.InvoiceListParams{
		Customer: stripesdk.String(customerID),
	}
	params.Context = ctx
	params.Limit = stripesdk.Int64(int64(limit))

	iter := c.api.Invoices.List(params)

	var invoices []*InvoiceSummary
	for iter.Next() {
		inv := iter.Invoice()
		invoices = append(invoices, &InvoiceSummary{
			ID:         inv.ID,
			Number:     inv.Number,
			Status:     string(inv.Status),
			AmountDue:  inv.AmountDue,
			AmountPaid: inv.AmountPaid,
			Currency:   string(inv.Currency),
			CreatedAt:  time.Unix(inv.Created, 0).UTC(),
			HostedURL:  inv.HostedInvoiceURL,
			PDFURL:     inv.InvoicePDF,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			WithReportableDetails(map[string]interface{}{"customer_id": customerID}).
			Mark(ierr.ErrHTTPClient)
	}

	return invoices, nil
}
