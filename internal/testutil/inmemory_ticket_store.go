package testutil

import (
	"context"
	"strings"

	"github.com/brokerdesk/brokerdesk/internal/domain/ticket"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
)

// InMemoryTicketStore implements ticket.Repository
type InMemoryTicketStore struct {
	*InMemoryStore[*ticket.Ticket]
}

// NewInMemoryTicketStore creates a new in-memory ticket store
func NewInMemoryTicketStore() *InMemoryTicketStore {
	return &InMemoryTicketStore{
		InMemoryStore: NewInMemoryStore[*ticket.Ticket](),
	}
}

func copyTicket(t *ticket.Ticket) *ticket.Ticket {
	if t == nil {
		return nil
	}
	copied := *t
	if t.AssigneeID != nil {
		copied.AssigneeID = lo.ToPtr(*t.AssigneeID)
	}
	return &copied
}

func (s *InMemoryTicketStore) Create(ctx context.Context, t *ticket.Ticket) error {
	if err := s.InMemoryStore.Create(ctx, t.ID, copyTicket(t)); err != nil {
		return ierr.NewErrorf("ticket %s already exists", t.ID).
			WithHint("Ticket already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryTicketStore) Get(ctx context.Context, id string) (*ticket.Ticket, error) {
	t, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewErrorf("ticket %s not found", id).
			WithHint("Ticket not found").
			Mark(ierr.ErrNotFound)
	}
	return copyTicket(t), nil
}

func ticketFilterFn(ctx context.Context, t *ticket.Ticket, filter interface{}) bool {
	f, ok := filter.(*types.TicketFilter)
	if !ok {
		return true
	}
	if len(f.TicketIDs) > 0 && !lo.Contains(f.TicketIDs, t.ID) {
		return false
	}
	if f.UserID != "" && t.UserID != f.UserID {
		return false
	}
	if f.AssigneeID != "" && (t.AssigneeID == nil || *t.AssigneeID != f.AssigneeID) {
		return false
	}
	if len(f.TicketStatuses) > 0 && !lo.Contains(f.TicketStatuses, t.TicketStatus) {
		return false
	}
	if len(f.Priorities) > 0 && !lo.Contains(f.Priorities, t.Priority) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Subject), needle) &&
			!strings.Contains(strings.ToLower(t.Number), needle) {
			return false
		}
	}
	return true
}

func ticketSortFn(a, b *ticket.Ticket) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (s *InMemoryTicketStore) List(ctx context.Context, filter *types.TicketFilter) ([]*ticket.Ticket, error) {
	if filter == nil {
		filter = types.NewTicketFilter()
	}
	tickets, err := s.InMemoryStore.List(ctx, filter, ticketFilterFn, ticketSortFn)
	if err != nil {
		return nil, err
	}
	tickets = applyPagination(tickets, filter.QueryFilter)
	return lo.Map(tickets, func(t *ticket.Ticket, _ int) *ticket.Ticket {
		return copyTicket(t)
	}), nil
}

func (s *InMemoryTicketStore) Count(ctx context.Context, filter *types.TicketFilter) (int, error) {
	if filter == nil {
		filter = types.NewTicketFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, ticketFilterFn)
}

func (s *InMemoryTicketStore) Update(ctx context.Context, t *ticket.Ticket) error {
	if err := s.InMemoryStore.Update(ctx, t.ID, copyTicket(t)); err != nil {
		return ierr.NewErrorf("ticket %s not found", t.ID).
			WithHint("Ticket not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryTicketStore) Delete(ctx context.Context, t *ticket.Ticket) error {
	if err := s.InMemoryStore.Delete(ctx, t.ID); err != nil {
		return ierr.NewErrorf("ticket %s not found", t.ID).
			WithHint("Ticket not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}
