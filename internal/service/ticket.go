package service

import (
	"context"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	"github.com/brokerdesk/brokerdesk/internal/domain/ticket"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// TicketService handles support tickets. Deletes are irreversible and
// require retyping the ticket number as a confirmation phrase.
type TicketService interface {
	CreateTicket(ctx context.Context, req *dto.CreateTicketRequest) (*dto.TicketResponse, error)
	GetTicket(ctx context.Context, id string) (*dto.TicketResponse, error)
	ListTickets(ctx context.Context, filter *types.TicketFilter) (*dto.ListTicketsResponse, error)
	UpdateTicket(ctx context.Context, id string, req *dto.UpdateTicketRequest) (*dto.TicketResponse, error)
	UpdateTicketStatus(ctx context.Context, id string, req *dto.UpdateTicketStatusRequest) (*dto.TicketResponse, error)
	DeleteTicket(ctx context.Context, id string, req *dto.DeleteTicketRequest) error
}

type ticketService struct {
	ServiceParams
}

// NewTicketService creates a new ticket service.
func NewTicketService(params ServiceParams) TicketService {
	return &ticketService{ServiceParams: params}
}

func (s *ticketService) CreateTicket(ctx context.Context, req *dto.CreateTicketRequest) (*dto.TicketResponse, error) {
	t := req.ToTicket(ctx, types.GetUserID(ctx))
	if err := t.Validate(); err != nil {
		return nil, err
	}

	if err := s.TicketRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.Logger.Infow("created ticket", "ticket_id", t.ID, "number", t.Number)
	return &dto.TicketResponse{Ticket: t}, nil
}

func (s *ticketService) GetTicket(ctx context.Context, id string) (*dto.TicketResponse, error) {
	t, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.TicketResponse{Ticket: t}, nil
}

func (s *ticketService) ListTickets(ctx context.Context, filter *types.TicketFilter) (*dto.ListTicketsResponse, error) {
	if filter == nil {
		filter = types.NewTicketFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	// Customers only ever see their own tickets.
	if !types.GetUserRole(ctx).IsStaff() {
		filter.UserID = types.GetUserID(ctx)
	}

	tickets, err := s.TicketRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.TicketRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.TicketResponse, len(tickets))
	for i, t := range tickets {
		items[i] = &dto.TicketResponse{Ticket: t}
	}
	return &dto.ListTicketsResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *ticketService) UpdateTicket(ctx context.Context, id string, req *dto.UpdateTicketRequest) (*dto.TicketResponse, error) {
	t, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Subject != nil {
		t.Subject = *req.Subject
	}
	if req.Body != nil {
		t.Body = *req.Body
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.AssigneeID != nil {
		if !types.GetUserRole(ctx).IsStaff() {
			return nil, ierr.NewError("assignment is staff only").
				WithHint("Only staff can assign tickets").
				Mark(ierr.ErrPermissionDenied)
		}
		t.AssigneeID = req.AssigneeID
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	t.UpdatedAt = time.Now().UTC()
	t.UpdatedBy = types.GetUserID(ctx)
	if err := s.TicketRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	return &dto.TicketResponse{Ticket: t}, nil
}

func (s *ticketService) UpdateTicketStatus(ctx context.Context, id string, req *dto.UpdateTicketStatusRequest) (*dto.TicketResponse, error) {
	if err := req.Status.Validate(); err != nil {
		return nil, err
	}

	t, err := s.getVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	if !t.TicketStatus.CanTransitionTo(req.Status) {
		return nil, ierr.NewError("invalid status transition").
			WithHintf("A ticket cannot move from %s to %s", t.TicketStatus, req.Status).
			WithReportableDetails(map[string]interface{}{
				"from": t.TicketStatus,
				"to":   req.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	t.TicketStatus = req.Status
	t.UpdatedAt = time.Now().UTC()
	t.UpdatedBy = types.GetUserID(ctx)
	if err := s.TicketRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	return &dto.TicketResponse{Ticket: t}, nil
}

// DeleteTicket hard-deletes a ticket after the caller retypes its
// number.
func (s *ticketService) DeleteTicket(ctx context.Context, id string, req *dto.DeleteTicketRequest) error {
	t, err := s.getVisible(ctx, id)
	if err != nil {
		return err
	}

	if req.ConfirmationPhrase != t.Number {
		return ierr.NewError("confirmation phrase mismatch").
			WithHintf("Type %s to confirm deletion", t.Number).
			Mark(ierr.ErrValidation)
	}

	if err := s.TicketRepo.Delete(ctx, t); err != nil {
		return err
	}

	s.Logger.Infow("deleted ticket", "ticket_id", t.ID, "number", t.Number)
	return nil
}

func (s *ticketService) getVisible(ctx context.Context, id string) (*ticket.Ticket, error) {
	t, err := s.TicketRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !types.GetUserRole(ctx).IsStaff() && t.UserID != types.GetUserID(ctx) {
		return nil, ierr.NewError("ticket owned by another user").
			WithHint("You do not have access to this ticket").
			Mark(ierr.ErrPermissionDenied)
	}
	return t, nil
}
