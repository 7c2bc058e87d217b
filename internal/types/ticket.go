package types

import ierr "github.com/brokerdesk/brokerdesk/internal/errors"

// TicketStatus is a support ticket's state.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

func (s TicketStatus) Validate() error {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return nil
	default:
		return ierr.NewErrorf("invalid ticket status: %s", s).
			WithHint("Invalid ticket status").
			Mark(ierr.ErrValidation)
	}
}

// ticketTransitions lists the allowed moves. Closed tickets can only
// be reopened.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusOpen, TicketStatusResolved, TicketStatusClosed},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusOpen},
	TicketStatusClosed:     {TicketStatusOpen},
}

// CanTransitionTo reports whether a status change is allowed.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, allowed := range ticketTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TicketPriority orders tickets in the admin queue.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

func (p TicketPriority) Validate() error {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return nil
	default:
		return ierr.NewErrorf("invalid ticket priority: %s", p).
			WithHint("Invalid ticket priority").
			Mark(ierr.ErrValidation)
	}
}

// TicketFilter represents the filter options for ticket listings.
type TicketFilter struct {
	*QueryFilter
	TicketIDs      []string         `json:"ticket_ids,omitempty" form:"ticket_ids"`
	UserID         string           `json:"user_id,omitempty" form:"user_id"`
	AssigneeID     string           `json:"assignee_id,omitempty" form:"assignee_id"`
	TicketStatuses []TicketStatus   `json:"ticket_statuses,omitempty" form:"ticket_statuses"`
	Priorities     []TicketPriority `json:"priorities,omitempty" form:"priorities"`
	Search         string           `json:"search,omitempty" form:"search"`
}

// NewTicketFilter creates a filter with default values.
func NewTicketFilter() *TicketFilter {
	return &TicketFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *TicketFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	for _, s := range f.TicketStatuses {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return f.QueryFilter.Validate()
}
