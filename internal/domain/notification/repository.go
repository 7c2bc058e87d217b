package notification

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/types"
)

// Repository defines the interface for notification persistence.
type Repository interface {
	// Create creates a new notification
	Create(ctx context.Context, n *Notification) error

	// Get retrieves a notification by id
	Get(ctx context.Context, id string) (*Notification, error)

	// List retrieves notifications matching the filter; broadcasts are
	// included when filtering by recipient
	List(ctx context.Context, filter *types.NotificationFilter) ([]*Notification, error)

	// Count returns the exact number of matching notifications
	Count(ctx context.Context, filter *types.NotificationFilter) (int, error)

	// Update updates an existing notification
	Update(ctx context.Context, n *Notification) error

	// Delete removes a notification
	Delete(ctx context.Context, n *Notification) error
}
