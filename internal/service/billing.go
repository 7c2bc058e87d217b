package service

import (
	"context"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/integration/stripe"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// BillingService proxies billing through Stripe. Stripe remains the
// system of record; only the customer id is stored locally.
type BillingService interface {
	// CreateCheckout ensures a Stripe customer exists for the caller
	// and starts a hosted checkout for one catalog service.
	CreateCheckout(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)

	// ListInvoices returns the caller's invoice history.
	ListInvoices(ctx context.Context, limit int) (*dto.InvoiceListResponse, error)

	// OpenBillingPortal returns a Stripe billing portal redirect.
	OpenBillingPortal(ctx context.Context, returnURL string) (*dto.BillingPortalResponse, error)
}

type billingService struct {
	ServiceParams
}

// NewBillingService creates a new billing service.
func NewBillingService(params ServiceParams) BillingService {
	return &billingService{ServiceParams: params}
}

func (s *billingService) CreateCheckout(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	def, err := s.CatalogRepo.GetByName(ctx, req.ServiceName)
	if err != nil {
		return nil, err
	}
	if def.PricingType != types.PricingTypeFixed {
		return nil, ierr.NewError("service is not checkout priced").
			WithHint("Percentage-priced services are billed from trading results, not checkout").
			Mark(ierr.ErrInvalidOperation)
	}

	customerID, err := s.ensureStripeCustomer(ctx)
	if err != nil {
		return nil, err
	}

	// Stripe amounts are integer cents.
	amount := def.PriceAmount.Mul(decimal.NewFromInt(100)).IntPart()

	return s.Stripe.CreateCheckoutSession(ctx, &stripe.CheckoutSessionRequest{
		CustomerID:  customerID,
		PriceAmount: amount,
		Currency:    "usd",
		ServiceName: def.DisplayName,
		Description: def.Description,
	})
}

func (s *billingService) ListInvoices(ctx context.Context, limit int) (*dto.InvoiceListResponse, error) {
	caller, err := s.UserRepo.Get(ctx, types.GetUserID(ctx))
	if err != nil {
		return nil, err
	}
	if caller.StripeCustomerID == nil {
		return &dto.InvoiceListResponse{Invoices: []*stripe.InvoiceSummary{}}, nil
	}

	invoices, err := s.Stripe.ListInvoices(ctx, *caller.StripeCustomerID, limit)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []*stripe.InvoiceSummary{}
	}
	return &dto.InvoiceListResponse{Invoices: invoices}, nil
}

func (s *billingService) OpenBillingPortal(ctx context.Context, returnURL string) (*dto.BillingPortalResponse, error) {
	customerID, err := s.ensureStripeCustomer(ctx)
	if err != nil {
		return nil, err
	}
	return s.Stripe.CreatePortalSession(ctx, customerID, returnURL)
}

// ensureStripeCustomer lazily creates the Stripe customer and stores
// its id on the user row.
func (s *billingService) ensureStripeCustomer(ctx context.Context) (string, error) {
	caller, err := s.UserRepo.Get(ctx, types.GetUserID(ctx))
	if err != nil {
		return "", err
	}
	if caller.StripeCustomerID != nil {
		return *caller.StripeCustomerID, nil
	}

	customerID, err := s.Stripe.CreateCustomer(ctx, &stripe.CreateCustomerRequest{
		Email: caller.Email,
		Name:  caller.FullName,
		Metadata: map[string]string{
			"user_id": caller.ID,
		},
	})
	if err != nil {
		return "", err
	}

	caller.StripeCustomerID = lo.ToPtr(customerID)
	caller.UpdatedAt = time.Now().UTC()
	caller.UpdatedBy = caller.ID
	if err := s.UserRepo.Update(ctx, caller); err != nil {
		return "", err
	}
	return customerID, nil
}
