package notification

import (
	"time"

	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// Notification is a staff-authored message for one user or, with an
// empty recipient, a broadcast to everyone.
type Notification struct {
	ID          string                  `json:"id"`
	RecipientID string                  `json:"recipient_id,omitempty"`
	Title       string                  `json:"title"`
	Body        string                  `json:"body"`
	Level       types.NotificationLevel `json:"level"`
	ReadAt      *time.Time              `json:"read_at,omitempty"`
	types.BaseModel
}

// IsBroadcast reports whether the notification targets everyone.
func (n *Notification) IsBroadcast() bool {
	return n.RecipientID == ""
}

// Validate validates the notification.
func (n *Notification) Validate() error {
	if n.Title == "" {
		return ierr.NewError("title is required").
			WithHint("Title is required").
			Mark(ierr.ErrValidation)
	}
	return n.Level.Validate()
}
