package testutil

import (
	"context"
	"strings"

	"github.com/brokerdesk/brokerdesk/internal/domain/user"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
)

// InMemoryUserStore implements user.Repository
type InMemoryUserStore struct {
	*InMemoryStore[*user.User]
}

// NewInMemoryUserStore creates a new in-memory user store
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		InMemoryStore: NewInMemoryStore[*user.User](),
	}
}

func copyUser(u *user.User) *user.User {
	if u == nil {
		return nil
	}
	copied := *u
	copied.Metadata = lo.Assign(map[string]string{}, u.Metadata)
	if u.StripeCustomerID != nil {
		copied.StripeCustomerID = lo.ToPtr(*u.StripeCustomerID)
	}
	return &copied
}

func (s *InMemoryUserStore) Create(ctx context.Context, u *user.User) error {
	if existing, _ := s.GetByEmail(ctx, u.Email); existing != nil {
		return ierr.NewErrorf("user with email %s already exists", u.Email).
			WithHint("An account with this email already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	if err := s.InMemoryStore.Create(ctx, u.ID, copyUser(u)); err != nil {
		return ierr.NewErrorf("user %s already exists", u.ID).
			WithHint("User already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryUserStore) Get(ctx context.Context, id string) (*user.User, error) {
	u, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || u.Status == types.StatusDeleted {
		return nil, ierr.NewErrorf("user %s not found", id).
			WithHint("User not found").
			Mark(ierr.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *InMemoryUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	users, _ := s.InMemoryStore.List(ctx, nil, nil, nil)
	for _, u := range users {
		if strings.EqualFold(u.Email, email) && u.Status != types.StatusDeleted {
			return copyUser(u), nil
		}
	}
	return nil, ierr.NewErrorf("user with email %s not found", email).
		WithHint("User not found").
		Mark(ierr.ErrNotFound)
}

func userFilterFn(ctx context.Context, u *user.User, filter interface{}) bool {
	f, ok := filter.(*types.UserFilter)
	if !ok {
		return true
	}
	if u.Status == types.StatusDeleted {
		return false
	}
	if len(f.UserIDs) > 0 && !lo.Contains(f.UserIDs, u.ID) {
		return false
	}
	if f.Email != "" && !strings.EqualFold(u.Email, f.Email) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(u.Email), needle) &&
			!strings.Contains(strings.ToLower(u.FullName), needle) {
			return false
		}
	}
	if len(f.Roles) > 0 && !lo.Contains(f.Roles, u.Role) {
		return false
	}
	if f.Suspended != nil && u.Suspended != *f.Suspended {
		return false
	}
	return true
}

func userSortFn(a, b *user.User) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (s *InMemoryUserStore) List(ctx context.Context, filter *types.UserFilter) ([]*user.User, error) {
	if filter == nil {
		filter = types.NewUserFilter()
	}
	users, err := s.InMemoryStore.List(ctx, filter, userFilterFn, userSortFn)
	if err != nil {
		return nil, err
	}
	users = applyPagination(users, filter.QueryFilter)
	return lo.Map(users, func(u *user.User, _ int) *user.User {
		return copyUser(u)
	}), nil
}

func (s *InMemoryUserStore) Count(ctx context.Context, filter *types.UserFilter) (int, error) {
	if filter == nil {
		filter = types.NewUserFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, userFilterFn)
}

func (s *InMemoryUserStore) Update(ctx context.Context, u *user.User) error {
	if err := s.InMemoryStore.Update(ctx, u.ID, copyUser(u)); err != nil {
		return ierr.NewErrorf("user %s not found", u.ID).
			WithHint("User not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryUserStore) Delete(ctx context.Context, u *user.User) error {
	stored, err := s.InMemoryStore.Get(ctx, u.ID)
	if err != nil {
		return ierr.NewErrorf("user %s not found", u.ID).
			WithHint("User not found").
			Mark(ierr.ErrNotFound)
	}
	deleted := copyUser(stored)
	deleted.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, u.ID, deleted)
}
