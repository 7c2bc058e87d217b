package email

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/config"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/resend/resend-go/v2"
)

// EmailClient wraps the Resend API client.
type EmailClient struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
}

// NewEmailClient creates a Resend-backed client. When email is disabled
// in config the client is a no-op and SendEmail is never reached.
func NewEmailClient(cfg *config.Configuration) *EmailClient {
	var client *resend.Client
	if cfg.Email.Enabled && cfg.Email.APIKey != "" {
		client = resend.NewClient(cfg.Email.APIKey)
	}

	return &EmailClient{
		client:      client,
		enabled:     cfg.Email.Enabled && client != nil,
		fromAddress: cfg.Email.FromAddress,
	}
}

// IsEnabled reports whether outbound email is configured.
func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

// GetFromAddress returns the configured sender address.
func (c *EmailClient) GetFromAddress() string {
	return c.fromAddress
}

// SendEmail dispatches a single email and returns the provider message id.
func (c *EmailClient) SendEmail(ctx context.Context, from, to, subject, html, text string) (string, error) {
	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	}

	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to send email").
			WithReportableDetails(map[string]interface{}{
				"to":      to,
				"subject": subject,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	return sent.Id, nil
}
