package auth

import (
	"context"
	"log"

	"github.com/brokerdesk/brokerdesk/internal/config"
	domainAuth "github.com/brokerdesk/brokerdesk/internal/domain/auth"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/golang-jwt/jwt/v4"
	"github.com/nedpals/supabase-go"
)

type supabaseAuth struct {
	AuthConfig config.AuthConfig
	client     *supabase.Client
	logger     *logger.Logger
}

// NewSupabaseAuth builds the Supabase-backed provider.
func NewSupabaseAuth(cfg *config.Configuration) Provider {
	client := supabase.CreateClient(cfg.Auth.Supabase.BaseURL, cfg.Auth.Supabase.ServiceKey)
	if client == nil {
		log.Fatalf("failed to create Supabase client")
	}

	lg, _ := logger.NewLogger(cfg)

	return &supabaseAuth{
		AuthConfig: cfg.Auth,
		client:     client,
		logger:     lg,
	}
}

func (s *supabaseAuth) GetProvider() types.AuthProvider {
	return types.AuthProviderSupabase
}

// SignUp validates the Supabase-issued token and echoes the identity;
// users register through the Supabase UI, not through this API.
func (s *supabaseAuth) SignUp(ctx context.Context, req AuthRequest) (*AuthResponse, error) {
	if req.Token == "" {
		return nil, ierr.NewError("token is required").
			Mark(ierr.ErrPermissionDenied)
	}

	claims, err := s.ValidateToken(ctx, req.Token)
	if err != nil {
		return nil, ierr.NewError("invalid token").
			Mark(ierr.ErrPermissionDenied)
	}

	if claims.Email != req.Email {
		return nil, ierr.NewError("email mismatch").
			Mark(ierr.ErrPermissionDenied)
	}

	return &AuthResponse{
		ProviderToken: claims.UserID,
		AuthToken:     req.Token,
		ID:            claims.UserID,
	}, nil
}

// Login signs in against Supabase and returns its access token.
func (s *supabaseAuth) Login(ctx context.Context, req AuthRequest, userAuthInfo *domainAuth.Auth) (*AuthResponse, error) {
	user, err := s.client.Auth.SignIn(ctx, supabase.UserCredentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to sign in").
			Mark(ierr.ErrPermissionDenied)
	}
	return &AuthResponse{
		ProviderToken: user.User.ID,
		AuthToken:     user.AccessToken,
		ID:            user.User.ID,
	}, nil
}

func (s *supabaseAuth) ValidateToken(ctx context.Context, token string) (*domainAuth.Claims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint("Unexpected signing method").
				WithReportableDetails(map[string]interface{}{
					"signing_method": token.Method.Alg(),
				}).
				Mark(ierr.ErrPermissionDenied)
		}
		return []byte(s.AuthConfig.Secret), nil
	})

	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Token parse error").
			Mark(ierr.ErrPermissionDenied)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrPermissionDenied)
	}

	userID, userOk := claims["sub"].(string)
	if !userOk {
		return nil, ierr.NewError("token missing user ID").
			WithHint("Token missing user ID").
			Mark(ierr.ErrPermissionDenied)
	}

	var tenantID string
	if appMetadata, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if tid, ok := appMetadata["tenant_id"].(string); ok {
			tenantID = tid
		}
	}

	email, ok := claims["email"].(string)
	if !ok {
		return nil, ierr.NewError("token missing email").
			WithHint("Token missing email").
			Mark(ierr.ErrPermissionDenied)
	}

	return &domainAuth.Claims{
		UserID:   userID,
		TenantID: tenantID,
		Email:    email,
	}, nil
}

// VerifyPassword re-authenticates by performing a fresh sign-in. Used
// by the step-up challenge; the returned session is discarded.
func (s *supabaseAuth) VerifyPassword(ctx context.Context, req AuthRequest, userAuthInfo *domainAuth.Auth) error {
	_, err := s.client.Auth.SignIn(ctx, supabase.UserCredentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Password verification failed").
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}

// SetUserRole writes the role into the user's app_metadata via the
// Supabase Admin API so future tokens carry it.
func (s *supabaseAuth) SetUserRole(ctx context.Context, userID string, role types.UserRole) error {
	params := supabase.AdminUserParams{
		AppMetadata: map[string]interface{}{
			"role": string(role),
		},
	}

	resp, err := s.client.Admin.UpdateUser(ctx, userID, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update user role").
			Mark(ierr.ErrSystem)
	}

	s.logger.Debugw("updated user role",
		"user_id", userID,
		"role", role,
		"response", resp,
	)

	return nil
}

// RequestPasswordRecovery triggers Supabase's recovery email. The UI
// must detect the distinct recovery session event before allowing the
// password reset itself.
func (s *supabaseAuth) RequestPasswordRecovery(ctx context.Context, email string) error {
	if err := s.client.Auth.ResetPasswordForEmail(ctx, email, s.AuthConfig.Supabase.RecoveryRedirectURL); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to send recovery email").
			Mark(ierr.ErrSystem)
	}
	return nil
}
