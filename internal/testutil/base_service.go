package testutil

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/cache"
	"github.com/brokerdesk/brokerdesk/internal/config"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/postgres"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores groups every in-memory repository for service tests.
type Stores struct {
	Catalog       *InMemoryCatalogStore
	Agreement     *InMemoryAgreementStore
	BrokerAccount *InMemoryBrokerAccountStore
	User          *InMemoryUserStore
	Ticket        *InMemoryTicketStore
	Notification  *InMemoryNotificationStore
	Auth          *InMemoryAuthStore
}

// NewStores creates fresh in-memory stores
func NewStores() Stores {
	return Stores{
		Catalog:       NewInMemoryCatalogStore(),
		Agreement:     NewInMemoryAgreementStore(),
		BrokerAccount: NewInMemoryBrokerAccountStore(),
		User:          NewInMemoryUserStore(),
		Ticket:        NewInMemoryTicketStore(),
		Notification:  NewInMemoryNotificationStore(),
		Auth:          NewInMemoryAuthStore(),
	}
}

// ClearStores wipes every store.
func (s *Stores) ClearStores() {
	s.Catalog.Clear()
	s.Agreement.Clear()
	s.BrokerAccount.Clear()
	s.User.Clear()
	s.Ticket.Clear()
	s.Notification.Clear()
	s.Auth.Clear()
}

// BaseServiceTestSuite provides common setup for service tests: a
// context carrying an authenticated identity, in-memory stores, an
// in-memory cache and a mock database client.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	cfg    *config.Configuration
	logger *logger.Logger
	db     postgres.IClient
	cache  cache.Cache
	stores Stores
}

// SetupTest initializes fresh state before each test.
func (s *BaseServiceTestSuite) SetupTest() {
	s.cfg = config.GetDefaultConfig()
	s.logger = logger.GetLogger()
	s.db = NewMockPostgresClient()
	s.cache = cache.NewInMemoryCache()
	s.stores = NewStores()
	s.SetContextUser("user_test_admin", types.UserRoleAdmin)
}

// TearDownTest wipes stores after each test.
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.ClearStores()
}

// SetContextUser rebinds the test context to the given identity.
func (s *BaseServiceTestSuite) SetContextUser(userID string, role types.UserRole) {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxTenantID, types.DefaultTenantID)
	ctx = context.WithValue(ctx, types.CtxUserID, userID)
	ctx = context.WithValue(ctx, types.CtxUserRole, role)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST))
	ctx = context.WithValue(ctx, types.CtxClientIP, "192.0.2.10")
	ctx = context.WithValue(ctx, types.CtxUserAgent, "testsuite/1.0")
	s.ctx = ctx
}

// GetContext returns the current test context.
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration.
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.cfg
}

// GetLogger returns the test logger.
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetDB returns the mock database client.
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetCache returns the test cache.
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetStores returns the in-memory stores.
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}
