package testutil

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/domain/notification"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
)

// InMemoryNotificationStore implements notification.Repository
type InMemoryNotificationStore struct {
	*InMemoryStore[*notification.Notification]
}

// NewInMemoryNotificationStore creates a new in-memory notification store
func NewInMemoryNotificationStore() *InMemoryNotificationStore {
	return &InMemoryNotificationStore{
		InMemoryStore: NewInMemoryStore[*notification.Notification](),
	}
}

func copyNotification(n *notification.Notification) *notification.Notification {
	if n == nil {
		return nil
	}
	copied := *n
	if n.ReadAt != nil {
		copied.ReadAt = lo.ToPtr(*n.ReadAt)
	}
	return &copied
}

func (s *InMemoryNotificationStore) Create(ctx context.Context, n *notification.Notification) error {
	if err := s.InMemoryStore.Create(ctx, n.ID, copyNotification(n)); err != nil {
		return ierr.NewErrorf("notification %s already exists", n.ID).
			WithHint("Notification already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryNotificationStore) Get(ctx context.Context, id string) (*notification.Notification, error) {
	n, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewErrorf("notification %s not found", id).
			WithHint("Notification not found").
			Mark(ierr.ErrNotFound)
	}
	return copyNotification(n), nil
}

func notificationFilterFn(ctx context.Context, n *notification.Notification, filter interface{}) bool {
	f, ok := filter.(*types.NotificationFilter)
	if !ok {
		return true
	}
	if len(f.NotificationIDs) > 0 && !lo.Contains(f.NotificationIDs, n.ID) {
		return false
	}
	// A recipient filter still matches broadcasts.
	if f.RecipientID != "" && n.RecipientID != f.RecipientID && !n.IsBroadcast() {
		return false
	}
	if len(f.Levels) > 0 && !lo.Contains(f.Levels, n.Level) {
		return false
	}
	if f.UnreadOnly && n.ReadAt != nil {
		return false
	}
	return true
}

func notificationSortFn(a, b *notification.Notification) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (s *InMemoryNotificationStore) List(ctx context.Context, filter *types.NotificationFilter) ([]*notification.Notification, error) {
	if filter == nil {
		filter = types.NewNotificationFilter()
	}
	notifications, err := s.InMemoryStore.List(ctx, filter, notificationFilterFn, notificationSortFn)
	if err != nil {
		return nil, err
	}
	notifications = applyPagination(notifications, filter.QueryFilter)
	return lo.Map(notifications, func(n *notification.Notification, _ int) *notification.Notification {
		return copyNotification(n)
	}), nil
}

func (s *InMemoryNotificationStore) Count(ctx context.Context, filter *types.NotificationFilter) (int, error) {
	if filter == nil {
		filter = types.NewNotificationFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, notificationFilterFn)
}

func (s *InMemoryNotificationStore) Update(ctx context.Context, n *notification.Notification) error {
	if err := s.InMemoryStore.Update(ctx, n.ID, copyNotification(n)); err != nil {
		return ierr.NewErrorf("notification %s not found", n.ID).
			WithHint("Notification not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryNotificationStore) Delete(ctx context.Context, n *notification.Notification) error {
	if err := s.InMemoryStore.Delete(ctx, n.ID); err != nil {
		return ierr.NewErrorf("notification %s not found", n.ID).
			WithHint("Notification not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}
