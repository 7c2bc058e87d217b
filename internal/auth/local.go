package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/config"
	domainAuth "github.com/brokerdesk/brokerdesk/internal/domain/auth"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

type localAuth struct {
	AuthConfig config.AuthConfig
}

// NewLocalAuth builds the self-hosted bcrypt+JWT provider.
func NewLocalAuth(cfg *config.Configuration) Provider {
	return &localAuth{AuthConfig: cfg.Auth}
}

func (l *localAuth) GetProvider() types.AuthProvider {
	return types.AuthProviderLocal
}

func (l *localAuth) SignUp(ctx context.Context, req AuthRequest) (*AuthResponse, error) {
	if req.Password == "" {
		return nil, ierr.NewError("password is required").
			WithHint("Password is required").
			Mark(ierr.ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to hash password").
			Mark(ierr.ErrSystem)
	}

	userID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USER)

	authToken, err := l.generateToken(userID, req.Email)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to generate token").
			Mark(ierr.ErrSystem)
	}

	return &AuthResponse{
		ProviderToken: string(hashedPassword),
		AuthToken:     authToken,
		ID:            userID,
	}, nil
}

func (l *localAuth) Login(ctx context.Context, req AuthRequest, userAuthInfo *domainAuth.Auth) (*AuthResponse, error) {
	if userAuthInfo == nil {
		return nil, ierr.NewError("no credentials on record").
			WithHint("Invalid email or password").
			Mark(ierr.ErrPermissionDenied)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userAuthInfo.Token), []byte(req.Password)); err != nil {
		return nil, ierr.NewError("invalid password").
			WithHint("Invalid email or password").
			Mark(ierr.ErrPermissionDenied)
	}

	authToken, err := l.generateToken(userAuthInfo.UserID, req.Email)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to generate token").
			Mark(ierr.ErrSystem)
	}

	return &AuthResponse{
		ProviderToken: userAuthInfo.Token,
		AuthToken:     authToken,
		ID:            userAuthInfo.UserID,
	}, nil
}

func (l *localAuth) ValidateToken(ctx context.Context, token string) (*domainAuth.Claims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint(fmt.Sprintf("unexpected signing method: %v", token.Header["alg"])).
				Mark(ierr.ErrPermissionDenied)
		}
		return []byte(l.AuthConfig.Secret), nil
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

	userID, userOk := claims["user_id"].(string)
	if !userOk {
		return nil, ierr.NewError("token missing user ID").
			WithHint("Token missing user ID").
			Mark(ierr.ErrPermissionDenied)
	}

	email, _ := claims["email"].(string)

	return &domainAuth.Claims{
		UserID:   userID,
		TenantID: types.DefaultTenantID,
		Email:    email,
	}, nil
}

// VerifyPassword re-checks the password against the stored hash. The
// step-up challenge runs through this.
func (l *localAuth) VerifyPassword(ctx context.Context, req AuthRequest, userAuthInfo *domainAuth.Auth) error {
	if userAuthInfo == nil {
		return ierr.NewError("no credentials on record").
			WithHint("Password verification failed").
			Mark(ierr.ErrPermissionDenied)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(userAuthInfo.Token), []byte(req.Password)); err != nil {
		return ierr.NewError("invalid password").
			WithHint("Password verification failed").
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}

// SetUserRole is a no-op for the local provider; the role lives on the
// users table and is loaded by the auth middleware.
func (l *localAuth) SetUserRole(ctx context.Context, userID string, role types.UserRole) error {
	return nil
}

// RequestPasswordRecovery is handled at the service layer for the
// local provider (recovery token generation plus email dispatch).
func (l *localAuth) RequestPasswordRecovery(ctx context.Context, email string) error {
	return nil
}

func (l *localAuth) generateToken(userID, email string) (string, error) {
	// 30 day session expiry
	expiration := time.Now().Add(30 * 24 * time.Hour)

	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     expiration.Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(l.AuthConfig.Secret))
}
