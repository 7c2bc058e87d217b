package auth

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/config"
	domainAuth "github.com/brokerdesk/brokerdesk/internal/domain/auth"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// AuthRequest carries the credentials for sign up, login and step-up
// verification.
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

// AuthResponse is the provider's result for sign up and login.
type AuthResponse struct {
	// ProviderToken is the provider-side credential artifact: the
	// bcrypt hash for the local provider, the provider user id for
	// Supabase.
	ProviderToken string `json:"-"`
	AuthToken     string `json:"auth_token"`
	ID            string `json:"id"`
}

// Provider abstracts the identity backend.
type Provider interface {
	GetProvider() types.AuthProvider

	// SignUp registers a new identity and returns its session token.
	SignUp(ctx context.Context, req AuthRequest) (*AuthResponse, error)

	// Login verifies credentials and returns a session token.
	Login(ctx context.Context, req AuthRequest, userAuthInfo *domainAuth.Auth) (*AuthResponse, error)

	// ValidateToken parses and verifies a session token.
	ValidateToken(ctx context.Context, token string) (*domainAuth.Claims, error)

	// VerifyPassword re-checks a password for an already signed-in
	// user; the step-up challenge runs through this.
	VerifyPassword(ctx context.Context, req AuthRequest, userAuthInfo *domainAuth.Auth) error

	// SetUserRole records the role on the provider side so tokens can
	// carry it.
	SetUserRole(ctx context.Context, userID string, role types.UserRole) error

	// RequestPasswordRecovery starts the provider's recovery flow.
	RequestPasswordRecovery(ctx context.Context, email string) error
}

// NewProvider builds the configured provider.
func NewProvider(cfg *config.Configuration) Provider {
	switch cfg.Auth.Provider {
	case types.AuthProviderSupabase:
		return NewSupabaseAuth(cfg)
	default:
		return NewLocalAuth(cfg)
	}
}
