package service

import (
	"testing"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	"github.com/brokerdesk/brokerdesk/internal/domain/user"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/testutil"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/stretchr/testify/suite"
)

type NotificationServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	notificationService NotificationService
}

func TestNotificationService(t *testing.T) {
	suite.Run(t, new(NotificationServiceTestSuite))
}

func (s *NotificationServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Cache:            s.GetCache(),
		NotificationRepo: s.GetStores().Notification,
		UserRepo:         s.GetStores().User,
	}
	s.notificationService = NewNotificationService(params)

	for _, u := range []*user.User{
		{
			ID:        "user_customer_1",
			Email:     "customer@example.com",
			Role:      types.UserRoleCustomer,
			BaseModel: types.GetDefaultBaseModel(s.GetContext()),
		},
		{
			ID:        "user_other",
			Email:     "other@example.com",
			Role:      types.UserRoleCustomer,
			BaseModel: types.GetDefaultBaseModel(s.GetContext()),
		},
	} {
		s.Require().NoError(s.GetStores().User.Create(s.GetContext(), u))
	}
}

func (s *NotificationServiceTestSuite) notify(recipientID, title string) *dto.NotificationResponse {
	resp, err := s.notificationService.CreateNotification(s.GetContext(), &dto.CreateNotificationRequest{
		RecipientID: recipientID,
		Title:       title,
		Body:        "body",
	})
	s.Require().NoError(err)
	return resp
}

func (s *NotificationServiceTestSuite) TestCreateForUnknownRecipientRejected() {
	_, err := s.notificationService.CreateNotification(s.GetContext(), &dto.CreateNotificationRequest{
		RecipientID: "user_missing",
		Title:       "hello",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *NotificationServiceTestSuite) TestDefaultLevelIsInfo() {
	resp := s.notify("user_customer_1", "maintenance window")
	s.Equal(types.NotificationLevelInfo, resp.Level)
	s.Nil(resp.ReadAt)
}

func (s *NotificationServiceTestSuite) TestCustomerSeesOwnPlusBroadcasts() {
	s.notify("user_customer_1", "your pause went through")
	s.notify("", "scheduled maintenance")
	s.notify("user_other", "private to someone else")

	s.SetContextUser("user_customer_1", types.UserRoleCustomer)
	resp, err := s.notificationService.ListNotifications(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Len(resp.Items, 2)

	titles := make([]string, len(resp.Items))
	for i, n := range resp.Items {
		titles[i] = n.Title
	}
	s.Contains(titles, "your pause went through")
	s.Contains(titles, "scheduled maintenance")
}

func (s *NotificationServiceTestSuite) TestUnreadOnlyFilter() {
	created := s.notify("user_customer_1", "first")
	s.notify("user_customer_1", "second")

	s.SetContextUser("user_customer_1", types.UserRoleCustomer)
	_, err := s.notificationService.MarkRead(s.GetContext(), created.ID)
	s.Require().NoError(err)

	filter := types.NewNotificationFilter()
	filter.UnreadOnly = true
	resp, err := s.notificationService.ListNotifications(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Require().Len(resp.Items, 1)
	s.Equal("second", resp.Items[0].Title)
}

func (s *NotificationServiceTestSuite) TestMarkReadIsIdempotent() {
	created := s.notify("user_customer_1", "first")

	s.SetContextUser("user_customer_1", types.UserRoleCustomer)
	first, err := s.notificationService.MarkRead(s.GetContext(), created.ID)
	s.Require().NoError(err)
	s.Require().NotNil(first.ReadAt)

	second, err := s.notificationService.MarkRead(s.GetContext(), created.ID)
	s.Require().NoError(err)
	s.Equal(first.ReadAt, second.ReadAt)
}

func (s *NotificationServiceTestSuite) TestCannotMarkForeignNotification() {
	created := s.notify("user_other", "not yours")

	s.SetContextUser("user_customer_1", types.UserRoleCustomer)
	_, err := s.notificationService.MarkRead(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *NotificationServiceTestSuite) TestDeleteNotification() {
	created := s.notify("user_customer_1", "ephemeral")

	s.Require().NoError(s.notificationService.DeleteNotification(s.GetContext(), created.ID))

	_, err := s.GetStores().Notification.Get(s.GetContext(), created.ID)
	s.True(ierr.IsNotFound(err))
}
