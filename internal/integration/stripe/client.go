package stripe

import (
	"github.com/brokerdesk/brokerdesk/internal/config"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/hashicorp/go-retryablehttp"
	stripesdk "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// Client wraps the Stripe SDK. Billing is proxied straight through;
// Stripe stays the system of record for invoices and payment state.
type Client struct {
	api     *client.API
	cfg     config.StripeConfig
	logger  *logger.Logger
	enabled bool
}

// NewClient builds the Stripe client with a retrying HTTP transport.
func NewClient(cfg *config.Configuration, log *logger.Logger) *Client {
	if cfg.Stripe.SecretKey == "" {
		log.Warnw("stripe secret key not configured, billing operations disabled")
		return &Client{cfg: cfg.Stripe, logger: log, enabled: false}
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.Logger = log.GetRetryableHTTPLogger()

	backend := stripesdk.GetBackendWithConfig(stripesdk.APIBackend, &stripesdk.BackendConfig{
		HTTPClient: retryClient.StandardClient(),
	})

	api := &client.API{}
	api.Init(cfg.Stripe.SecretKey, &stripesdk.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	return &Client{
		api:     api,
		cfg:     cfg.Stripe,
		logger:  log,
		enabled: true,
	}
}

// IsEnabled reports whether billing calls can be made.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
