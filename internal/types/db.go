package types

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// LockScope represents the scope of a database advisory lock
type LockScope string

const (
	// LockScopeAgreement serializes lifecycle mutations on a single
	// service agreement and its linked broker account.
	LockScopeAgreement LockScope = "agreement"
	// LockScopeEnrollment serializes enrollment commits per user and
	// service so the instance limit cannot be raced past.
	LockScopeEnrollment LockScope = "enrollment"
)

// LockRequest describes an advisory lock acquisition.
type LockRequest struct {
	Key     string
	Timeout *time.Duration
}

// GetTimeout returns the requested timeout, defaulting to 30 seconds.
func (r LockRequest) GetTimeout() time.Duration {
	if r.Timeout == nil {
		return 30 * time.Second
	}
	return *r.Timeout
}

// GenerateLockKey generates a lock key from a scope and parameters.
// Automatically extracts tenant_id from context and includes it in the
// key. The key is a deterministic string that Postgres will hash
// internally.
func GenerateLockKey(ctx context.Context, scope LockScope, params map[string]interface{}) string {
	tenantID := GetTenantID(ctx)

	// User-provided params override context values if same key is provided
	mergedParams := make(map[string]interface{})
	if tenantID != "" {
		mergedParams["tenant_id"] = tenantID
	}
	for k, v := range params {
		mergedParams[k] = v
	}

	// Sort params for consistent ordering
	keys := make([]string, 0, len(mergedParams))
	for k := range mergedParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Build string in format: scope:key1=value1:key2=value2:...
	// (Postgres hashtext() will hash it internally)
	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, mergedParams[k]))
	}

	return b.String()
}

// TableName represents a database table name
type TableName string

const (
	TableNameServiceDefinitions TableName = "service_definitions"
	TableNameServiceAgreements  TableName = "service_agreements"
	TableNameBrokerAccounts     TableName = "broker_accounts"
	TableNameUsers              TableName = "users"
	TableNameTickets            TableName = "tickets"
	TableNameNotifications      TableName = "notifications"
)
