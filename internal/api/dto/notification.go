package dto

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/domain/notification"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// CreateNotificationRequest publishes a message to one user or, with
// an empty recipient, to everyone.
type CreateNotificationRequest struct {
	RecipientID string                  `json:"recipient_id"`
	Title       string                  `json:"title" binding:"required"`
	Body        string                  `json:"body"`
	Level       types.NotificationLevel `json:"level"`
}

// ToNotification builds the domain model from the request.
func (r *CreateNotificationRequest) ToNotification(ctx context.Context) *notification.Notification {
	level := r.Level
	if level == "" {
		level = types.NotificationLevelInfo
	}
	return &notification.Notification{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION),
		RecipientID: r.RecipientID,
		Title:       r.Title,
		Body:        r.Body,
		Level:       level,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

// NotificationResponse is the API shape of a notification.
type NotificationResponse struct {
	*notification.Notification
}

// ListNotificationsResponse is the paginated notification listing.
type ListNotificationsResponse = types.ListResponse[*NotificationResponse]
