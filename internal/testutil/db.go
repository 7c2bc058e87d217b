package testutil

import (
	"context"
	"database/sql"

	"github.com/brokerdesk/brokerdesk/internal/postgres"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// MockPostgresClient satisfies postgres.IClient without a database.
// Transactions run the callback directly and advisory locks always
// succeed, so service-level transactional flows are testable in
// memory.
type MockPostgresClient struct{}

// NewMockPostgresClient creates a new mock database client
func NewMockPostgresClient() postgres.IClient {
	return &MockPostgresClient{}
}

func (c *MockPostgresClient) Querier(ctx context.Context) postgres.Querier {
	return nil
}

func (c *MockPostgresClient) TxFromContext(ctx context.Context) *sql.Tx {
	return nil
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (c *MockPostgresClient) LockKey(ctx context.Context, req types.LockRequest) error {
	return nil
}

func (c *MockPostgresClient) TryLockKey(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (c *MockPostgresClient) Close() error {
	return nil
}
