package types

import "context"

// ContextKey is the typed key for request-scoped values.
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxTenantID  ContextKey = "ctx_tenant_id"
	CtxUserID    ContextKey = "ctx_user_id"
	CtxUserRole  ContextKey = "ctx_user_role"
	CtxClientIP  ContextKey = "ctx_client_ip"
	CtxUserAgent ContextKey = "ctx_user_agent"
	CtxDBTx      ContextKey = "ctx_db_tx"
)

const (
	// DefaultTenantID is used when a deployment runs single-tenant.
	DefaultTenantID = "00000000-0000-0000-0000-000000000000"
	// DefaultCreatedBy marks rows written outside a user session.
	DefaultCreatedBy = "system"
)

func GetRequestID(ctx context.Context) string {
	return getString(ctx, CtxRequestID)
}

func GetTenantID(ctx context.Context) string {
	return getString(ctx, CtxTenantID)
}

func GetUserID(ctx context.Context) string {
	return getString(ctx, CtxUserID)
}

func GetUserRole(ctx context.Context) UserRole {
	if role, ok := ctx.Value(CtxUserRole).(UserRole); ok {
		return role
	}
	return ""
}

func GetClientIP(ctx context.Context) string {
	return getString(ctx, CtxClientIP)
}

func GetUserAgent(ctx context.Context) string {
	return getString(ctx, CtxUserAgent)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, CtxTenantID, tenantID)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

func WithUserRole(ctx context.Context, role UserRole) context.Context {
	return context.WithValue(ctx, CtxUserRole, role)
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, CtxClientIP, ip)
}

func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, CtxUserAgent, ua)
}

func getString(ctx context.Context, key ContextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
