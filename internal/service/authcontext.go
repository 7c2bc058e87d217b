package service

import (
	"context"

	domainAuth "github.com/brokerdesk/brokerdesk/internal/domain/auth"
	"github.com/brokerdesk/brokerdesk/internal/domain/user"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
)

// AuthContextService resolves bearer tokens for the auth middleware.
type AuthContextService interface {
	// ResolveToken validates the token and loads the user behind it.
	ResolveToken(ctx context.Context, token string) (*domainAuth.Claims, *user.User, error)
}

type authContextService struct {
	ServiceParams
}

// NewAuthContextService creates a new auth context service.
func NewAuthContextService(params ServiceParams) AuthContextService {
	return &authContextService{ServiceParams: params}
}

func (s *authContextService) ResolveToken(ctx context.Context, token string) (*domainAuth.Claims, *user.User, error) {
	claims, err := s.AuthProvider.ValidateToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	u, err := s.UserRepo.Get(ctx, claims.UserID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil, ierr.NewError("unknown user").
				WithHint("Sign in again").
				Mark(ierr.ErrPermissionDenied)
		}
		return nil, nil, err
	}
	if u.Suspended {
		return nil, nil, ierr.NewError("account suspended").
			WithHint("This account has been suspended, contact support").
			Mark(ierr.ErrPermissionDenied)
	}

	return claims, u, nil
}
