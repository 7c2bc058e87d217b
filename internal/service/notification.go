package service

import (
	"context"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
)

// NotificationService publishes staff announcements and per-user
// messages, and tracks read state.
type NotificationService interface {
	CreateNotification(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error)
	ListNotifications(ctx context.Context, filter *types.NotificationFilter) (*dto.ListNotificationsResponse, error)
	MarkRead(ctx context.Context, id string) (*dto.NotificationResponse, error)
	DeleteNotification(ctx context.Context, id string) error
}

type notificationService struct {
	ServiceParams
}

// NewNotificationService creates a new notification service.
func NewNotificationService(params ServiceParams) NotificationService {
	return &notificationService{ServiceParams: params}
}

func (s *notificationService) CreateNotification(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error) {
	if req.RecipientID != "" {
		if _, err := s.UserRepo.Get(ctx, req.RecipientID); err != nil {
			return nil, err
		}
	}

	n := req.ToNotification(ctx)
	if err := n.Validate(); err != nil {
		return nil, err
	}

	if err := s.NotificationRepo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.Logger.Infow("created notification",
		"notification_id", n.ID,
		"recipient_id", n.RecipientID,
		"broadcast", n.IsBroadcast(),
	)
	return &dto.NotificationResponse{Notification: n}, nil
}

func (s *notificationService) ListNotifications(ctx context.Context, filter *types.NotificationFilter) (*dto.ListNotificationsResponse, error) {
	if filter == nil {
		filter = types.NewNotificationFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	// Customers see their own messages plus broadcasts.
	if !types.GetUserRole(ctx).IsStaff() {
		filter.RecipientID = types.GetUserID(ctx)
	}

	notifications, err := s.NotificationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.NotificationRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.NotificationResponse, len(notifications))
	for i, n := range notifications {
		items[i] = &dto.NotificationResponse{Notification: n}
	}
	return &dto.ListNotificationsResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) (*dto.NotificationResponse, error) {
	n, err := s.NotificationRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !n.IsBroadcast() && n.RecipientID != types.GetUserID(ctx) {
		return nil, ierr.NewError("notification for another user").
			WithHint("You do not have access to this notification").
			Mark(ierr.ErrPermissionDenied)
	}

	if n.ReadAt != nil {
		return &dto.NotificationResponse{Notification: n}, nil
	}

	n.ReadAt = lo.ToPtr(time.Now().UTC())
	n.UpdatedAt = time.Now().UTC()
	n.UpdatedBy = types.GetUserID(ctx)
	if err := s.NotificationRepo.Update(ctx, n); err != nil {
		return nil, err
	}
	return &dto.NotificationResponse{Notification: n}, nil
}

func (s *notificationService) DeleteNotification(ctx context.Context, id string) error {
	n, err := s.NotificationRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.NotificationRepo.Delete(ctx, n)
}
