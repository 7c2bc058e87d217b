package testutil

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/domain/auth"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
)

// InMemoryAuthStore implements auth.Repository, keyed by user id.
type InMemoryAuthStore struct {
	*InMemoryStore[*auth.Auth]
}

// NewInMemoryAuthStore creates a new in-memory auth store
func NewInMemoryAuthStore() *InMemoryAuthStore {
	return &InMemoryAuthStore{
		InMemoryStore: NewInMemoryStore[*auth.Auth](),
	}
}

func copyAuth(a *auth.Auth) *auth.Auth {
	if a == nil {
		return nil
	}
	copied := *a
	return &copied
}

func (s *InMemoryAuthStore) CreateAuth(ctx context.Context, a *auth.Auth) error {
	if err := s.InMemoryStore.Create(ctx, a.UserID, copyAuth(a)); err != nil {
		return ierr.NewErrorf("credentials for user %s already exist", a.UserID).
			WithHint("Credentials already exist").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryAuthStore) GetAuthByUserID(ctx context.Context, userID string) (*auth.Auth, error) {
	a, err := s.InMemoryStore.Get(ctx, userID)
	if err != nil {
		return nil, ierr.NewErrorf("credentials for user %s not found", userID).
			WithHint("Credentials not found").
			Mark(ierr.ErrNotFound)
	}
	return copyAuth(a), nil
}

func (s *InMemoryAuthStore) UpdateAuth(ctx context.Context, a *auth.Auth) error {
	if err := s.InMemoryStore.Update(ctx, a.UserID, copyAuth(a)); err != nil {
		return ierr.NewErrorf("credentials for user %s not found", a.UserID).
			WithHint("Credentials not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryAuthStore) DeleteAuth(ctx context.Context, userID string) error {
	if err := s.InMemoryStore.Delete(ctx, userID); err != nil {
		return ierr.NewErrorf("credentials for user %s not found", userID).
			WithHint("Credentials not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}
