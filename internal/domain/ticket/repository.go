package ticket

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/types"
)

// Repository defines the interface for support ticket persistence.
type Repository interface {
	// Create creates a new ticket
	Create(ctx context.Context, t *Ticket) error

	// Get retrieves a ticket by id
	Get(ctx context.Context, id string) (*Ticket, error)

	// List retrieves tickets matching the filter
	List(ctx context.Context, filter *types.TicketFilter) ([]*Ticket, error)

	// Count returns the exact number of tickets matching the filter
	Count(ctx context.Context, filter *types.TicketFilter) (int, error)

	// Update updates an existing ticket
	Update(ctx context.Context, t *Ticket) error

	// Delete removes a ticket
	Delete(ctx context.Context, t *Ticket) error
}
