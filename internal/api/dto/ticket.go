package dto

import (
	"context"
	"fmt"
	"strings"

	"github.com/brokerdesk/brokerdesk/internal/domain/ticket"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// CreateTicketRequest opens a support ticket.
type CreateTicketRequest struct {
	Subject  string               `json:"subject" binding:"required"`
	Body     string               `json:"body"`
	Priority types.TicketPriority `json:"priority"`
}

// ToTicket builds the domain model from the request.
func (r *CreateTicketRequest) ToTicket(ctx context.Context, userID string) *ticket.Ticket {
	priority := r.Priority
	if priority == "" {
		priority = types.TicketPriorityMedium
	}
	return &ticket.Ticket{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TICKET),
		Number:       generateTicketNumber(),
		UserID:       userID,
		Subject:      r.Subject,
		Body:         r.Body,
		TicketStatus: types.TicketStatusOpen,
		Priority:     priority,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

// generateTicketNumber derives the human-facing identifier, e.g.
// TKT-2E0F9A. It doubles as the delete confirmation phrase.
func generateTicketNumber() string {
	suffix := types.GenerateUUID()
	return fmt.Sprintf("TKT-%s", strings.ToUpper(suffix[len(suffix)-6:]))
}

// UpdateTicketRequest mutates a ticket.
type UpdateTicketRequest struct {
	Subject    *string               `json:"subject,omitempty"`
	Body       *string               `json:"body,omitempty"`
	Priority   *types.TicketPriority `json:"priority,omitempty"`
	AssigneeID *string               `json:"assignee_id,omitempty"`
}

// UpdateTicketStatusRequest moves a ticket between states.
type UpdateTicketStatusRequest struct {
	Status types.TicketStatus `json:"status" binding:"required"`
}

// DeleteTicketRequest deletes a ticket. ConfirmationPhrase must match
// the ticket number exactly.
type DeleteTicketRequest struct {
	ConfirmationPhrase string `json:"confirmation_phrase" binding:"required"`
}

// TicketResponse is the API shape of a ticket.
type TicketResponse struct {
	*ticket.Ticket
}

// ListTicketsResponse is the paginated ticket listing.
type ListTicketsResponse = types.ListResponse[*TicketResponse]
