package ticket

import (
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// Ticket is a customer support request. Number is the human-facing
// identifier used as the delete confirmation phrase.
type Ticket struct {
	ID         string               `json:"id"`
	Number     string               `json:"number"`
	UserID     string               `json:"user_id"`
	Subject    string               `json:"subject"`
	Body       string               `json:"body"`
	TicketStatus types.TicketStatus `json:"ticket_status"`
	Priority   types.TicketPriority `json:"priority"`
	AssigneeID *string              `json:"assignee_id,omitempty"`
	types.BaseModel
}

// Validate validates the ticket.
func (t *Ticket) Validate() error {
	if t.UserID == "" {
		return ierr.NewError("user_id is required").
			WithHint("User is required").
			Mark(ierr.ErrValidation)
	}
	if t.Subject == "" {
		return ierr.NewError("subject is required").
			WithHint("Subject is required").
			Mark(ierr.ErrValidation)
	}
	if err := t.TicketStatus.Validate(); err != nil {
		return err
	}
	return t.Priority.Validate()
}
