package types

import ierr "github.com/brokerdesk/brokerdesk/internal/errors"

// NotificationLevel is the severity shown to the recipient.
type NotificationLevel string

const (
	NotificationLevelInfo     NotificationLevel = "info"
	NotificationLevelWarning  NotificationLevel = "warning"
	NotificationLevelCritical NotificationLevel = "critical"
)

func (l NotificationLevel) Validate() error {
	switch l {
	case NotificationLevelInfo, NotificationLevelWarning, NotificationLevelCritical:
		return nil
	default:
		return ierr.NewErrorf("invalid notification level: %s", l).
			WithHint("Level must be info, warning or critical").
			Mark(ierr.ErrValidation)
	}
}

// NotificationFilter represents the filter options for notifications.
type NotificationFilter struct {
	*QueryFilter
	NotificationIDs []string            `json:"notification_ids,omitempty" form:"notification_ids"`
	RecipientID     string              `json:"recipient_id,omitempty" form:"recipient_id"`
	Levels          []NotificationLevel `json:"levels,omitempty" form:"levels"`
	UnreadOnly      bool                `json:"unread_only,omitempty" form:"unread_only"`
}

// NewNotificationFilter creates a filter with default values.
func NewNotificationFilter() *NotificationFilter {
	return &NotificationFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *NotificationFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	for _, l := range f.Levels {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return f.QueryFilter.Validate()
}
