package auth

import "context"

// Repository defines the interface for local credential persistence.
type Repository interface {
	// CreateAuth stores a new credential record
	CreateAuth(ctx context.Context, a *Auth) error

	// GetAuthByUserID retrieves the credential record for a user
	GetAuthByUserID(ctx context.Context, userID string) (*Auth, error)

	// UpdateAuth replaces the stored credential token
	UpdateAuth(ctx context.Context, a *Auth) error

	// DeleteAuth removes a credential record
	DeleteAuth(ctx context.Context, userID string) error
}
