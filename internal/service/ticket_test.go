package service

import (
	"testing"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/testutil"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type TicketServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	ticketService TicketService
}

func TestTicketService(t *testing.T) {
	suite.Run(t, new(TicketServiceTestSuite))
}

func (s *TicketServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:     s.GetLogger(),
		Config:     s.GetConfig(),
		DB:         s.GetDB(),
		Cache:      s.GetCache(),
		TicketRepo: s.GetStores().Ticket,
		UserRepo:   s.GetStores().User,
	}
	s.ticketService = NewTicketService(params)
	s.SetContextUser("user_customer_1", types.UserRoleCustomer)
}

func (s *TicketServiceTestSuite) createTicket(subject string) *dto.TicketResponse {
	resp, err := s.ticketService.CreateTicket(s.GetContext(), &dto.CreateTicketRequest{
		Subject: subject,
		Body:    "something is broken",
	})
	s.Require().NoError(err)
	return resp
}

func (s *TicketServiceTestSuite) TestCreateTicketDefaults() {
	resp := s.createTicket("cannot pause my service")
	s.NotEmpty(resp.ID)
	s.Regexp(`^TKT-[0-9A-HJKMNP-TV-Z]{6}$`, resp.Number)
	s.Equal(types.TicketStatusOpen, resp.TicketStatus)
	s.Equal(types.TicketPriorityMedium, resp.Priority)
	s.Equal("user_customer_1", resp.UserID)
}

func (s *TicketServiceTestSuite) TestStatusTransitions() {
	created := s.createTicket("cannot pause my service")

	resp, err := s.ticketService.UpdateTicketStatus(s.GetContext(), created.ID, &dto.UpdateTicketStatusRequest{
		Status: types.TicketStatusInProgress,
	})
	s.Require().NoError(err)
	s.Equal(types.TicketStatusInProgress, resp.TicketStatus)

	resp, err = s.ticketService.UpdateTicketStatus(s.GetContext(), created.ID, &dto.UpdateTicketStatusRequest{
		Status: types.TicketStatusResolved,
	})
	s.Require().NoError(err)
	s.Equal(types.TicketStatusResolved, resp.TicketStatus)

	// Resolved cannot jump back to in_progress.
	_, err = s.ticketService.UpdateTicketStatus(s.GetContext(), created.ID, &dto.UpdateTicketStatusRequest{
		Status: types.TicketStatusInProgress,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *TicketServiceTestSuite) TestClosedTicketCanOnlyReopen() {
	created := s.createTicket("cannot pause my service")

	_, err := s.ticketService.UpdateTicketStatus(s.GetContext(), created.ID, &dto.UpdateTicketStatusRequest{
		Status: types.TicketStatusClosed,
	})
	s.Require().NoError(err)

	_, err = s.ticketService.UpdateTicketStatus(s.GetContext(), created.ID, &dto.UpdateTicketStatusRequest{
		Status: types.TicketStatusResolved,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	resp, err := s.ticketService.UpdateTicketStatus(s.GetContext(), created.ID, &dto.UpdateTicketStatusRequest{
		Status: types.TicketStatusOpen,
	})
	s.Require().NoError(err)
	s.Equal(types.TicketStatusOpen, resp.TicketStatus)
}

func (s *TicketServiceTestSuite) TestUnknownStatusRejected() {
	created := s.createTicket("cannot pause my service")

	_, err := s.ticketService.UpdateTicketStatus(s.GetContext(), created.ID, &dto.UpdateTicketStatusRequest{
		Status: "archived",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *TicketServiceTestSuite) TestAssignmentIsStaffOnly() {
	created := s.createTicket("cannot pause my service")

	_, err := s.ticketService.UpdateTicket(s.GetContext(), created.ID, &dto.UpdateTicketRequest{
		AssigneeID: lo.ToPtr("user_support"),
	})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	s.SetContextUser("user_support", types.UserRoleSupport)
	resp, err := s.ticketService.UpdateTicket(s.GetContext(), created.ID, &dto.UpdateTicketRequest{
		AssigneeID: lo.ToPtr("user_support"),
		Priority:   lo.ToPtr(types.TicketPriorityUrgent),
	})
	s.Require().NoError(err)
	s.Require().NotNil(resp.AssigneeID)
	s.Equal("user_support", *resp.AssigneeID)
	s.Equal(types.TicketPriorityUrgent, resp.Priority)
}

func (s *TicketServiceTestSuite) TestCustomerCannotSeeForeignTicket() {
	created := s.createTicket("cannot pause my service")

	s.SetContextUser("user_stranger", types.UserRoleCustomer)
	_, err := s.ticketService.GetTicket(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *TicketServiceTestSuite) TestListScopesCustomersToTheirOwn() {
	s.createTicket("ticket one")
	s.SetContextUser("user_customer_2", types.UserRoleCustomer)
	s.createTicket("ticket two")

	resp, err := s.ticketService.ListTickets(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Require().Len(resp.Items, 1)
	s.Equal("ticket two", resp.Items[0].Subject)

	// Staff see everything.
	s.SetContextUser("user_support", types.UserRoleSupport)
	resp, err = s.ticketService.ListTickets(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Len(resp.Items, 2)
}

func (s *TicketServiceTestSuite) TestDeleteRequiresConfirmationPhrase() {
	created := s.createTicket("cannot pause my service")

	err := s.ticketService.DeleteTicket(s.GetContext(), created.ID, &dto.DeleteTicketRequest{
		ConfirmationPhrase: "TKT-WRONG1",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	err = s.ticketService.DeleteTicket(s.GetContext(), created.ID, &dto.DeleteTicketRequest{
		ConfirmationPhrase: created.Number,
	})
	s.Require().NoError(err)

	_, err = s.ticketService.GetTicket(s.GetContext(), created.ID)
	s.True(ierr.IsNotFound(err))
}
