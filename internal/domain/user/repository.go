package user

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/types"
)

// Repository defines the interface for user persistence.
type Repository interface {
	// Create creates a new user
	Create(ctx context.Context, u *User) error

	// Get retrieves a user by id
	Get(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List retrieves users matching the filter
	List(ctx context.Context, filter *types.UserFilter) ([]*User, error)

	// Count returns the exact number of users matching the filter
	Count(ctx context.Context, filter *types.UserFilter) (int, error)

	// Update updates an existing user
	Update(ctx context.Context, u *User) error

	// Delete removes a user
	Delete(ctx context.Context, u *User) error
}
