// Package service provides the business logic for the BrokerDesk API.
package service

import (
	"github.com/brokerdesk/brokerdesk/internal/auth"
	"github.com/brokerdesk/brokerdesk/internal/cache"
	"github.com/brokerdesk/brokerdesk/internal/config"
	"github.com/brokerdesk/brokerdesk/internal/domain/agreement"
	domainAuth "github.com/brokerdesk/brokerdesk/internal/domain/auth"
	"github.com/brokerdesk/brokerdesk/internal/domain/brokeraccount"
	"github.com/brokerdesk/brokerdesk/internal/domain/catalog"
	"github.com/brokerdesk/brokerdesk/internal/domain/notification"
	"github.com/brokerdesk/brokerdesk/internal/domain/ticket"
	"github.com/brokerdesk/brokerdesk/internal/domain/user"
	"github.com/brokerdesk/brokerdesk/internal/email"
	"github.com/brokerdesk/brokerdesk/internal/integration/stripe"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/postgres"
	"github.com/brokerdesk/brokerdesk/internal/security"
)

// ServiceParams bundles the dependencies shared by every service.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	// Repositories
	CatalogRepo       catalog.Repository
	AgreementRepo     agreement.Repository
	BrokerAccountRepo brokeraccount.Repository
	UserRepo          user.Repository
	TicketRepo        ticket.Repository
	NotificationRepo  notification.Repository
	AuthRepo          domainAuth.Repository

	// External services
	AuthProvider auth.Provider
	Encryption   security.EncryptionService
	Stripe       *stripe.Client
	Email        *email.Email
}
