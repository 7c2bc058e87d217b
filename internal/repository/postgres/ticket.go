package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/brokerdesk/brokerdesk/internal/domain/ticket"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/postgres"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/lib/pq"
)

type ticketRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewTicketRepository builds the Postgres-backed ticket repository.
func NewTicketRepository(db postgres.IClient, log *logger.Logger) ticket.Repository {
	return &ticketRepository{db: db, logger: log}
}

const ticketColumns = `id, number, user_id, subject, body, ticket_status, priority, assignee_id,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *ticketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	r.logger.Debugw("creating ticket", "ticket_id", t.ID, "number", t.Number)

	query := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		types.TableNameTickets, ticketColumns)

	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		t.ID, t.Number, t.UserID, t.Subject, t.Body, t.TicketStatus, t.Priority, t.AssigneeID,
		t.TenantID, t.Status, t.CreatedAt, t.UpdatedAt, t.CreatedBy, t.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create ticket").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *ticketRepository) Get(ctx context.Context, id string) (*ticket.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		ticketColumns, types.TableNameTickets)

	row := r.db.Querier(ctx).QueryRowContext(ctx, query,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	t, err := scanTicket(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("ticket not found").
				WithHintf("Ticket with ID %s was not found", id).
				WithReportableDetails(map[string]interface{}{"ticket_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get ticket").
			Mark(ierr.ErrDatabase)
	}
	return t, nil
}

func (r *ticketRepository) List(ctx context.Context, filter *types.TicketFilter) ([]*ticket.Ticket, error) {
	where, args := r.buildWhere(ctx, filter)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY created_at DESC, id ASC`,
		ticketColumns, types.TableNameTickets, where)
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list tickets").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var tickets []*ticket.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan ticket").
				Mark(ierr.ErrDatabase)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list tickets").
			Mark(ierr.ErrDatabase)
	}
	return tickets, nil
}

func (r *ticketRepository) Count(ctx context.Context, filter *types.TicketFilter) (int, error) {
	where, args := r.buildWhere(ctx, filter)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, types.TableNameTickets, where)

	var count int
	if err := r.db.Querier(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count tickets").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *ticketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	r.logger.Debugw("updating ticket", "ticket_id", t.ID, "ticket_status", t.TicketStatus)

	query := fmt.Sprintf(`UPDATE %s SET
		subject = $3, body = $4, ticket_status = $5, priority = $6, assignee_id = $7,
		status = $8, updated_at = $9, updated_by = $10
		WHERE id = $1 AND tenant_id = $2`, types.TableNameTickets)

	res, err := r.db.Querier(ctx).ExecContext(ctx, query,
		t.ID, t.TenantID,
		t.Subject, t.Body, t.TicketStatus, t.Priority, t.AssigneeID,
		t.Status, t.UpdatedAt, t.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update ticket").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(res, "ticket", t.ID)
}

func (r *ticketRepository) Delete(ctx context.Context, t *ticket.Ticket) error {
	r.logger.Debugw("deleting ticket", "ticket_id", t.ID, "number", t.Number)

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND tenant_id = $2`,
		types.TableNameTickets)

	res, err := r.db.Querier(ctx).ExecContext(ctx, query, t.ID, t.TenantID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete ticket").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(res, "ticket", t.ID)
}

func (r *ticketRepository) buildWhere(ctx context.Context, filter *types.TicketFilter) (string, []interface{}) {
	conds := []string{"tenant_id = $1", "status != $2"}
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}

	if len(filter.TicketIDs) > 0 {
		args = append(args, pq.Array(filter.TicketIDs))
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.AssigneeID != "" {
		args = append(args, filter.AssigneeID)
		conds = append(conds, fmt.Sprintf("assignee_id = $%d", len(args)))
	}
	if len(filter.TicketStatuses) > 0 {
		statuses := make([]string, len(filter.TicketStatuses))
		for i, s := range filter.TicketStatuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conds = append(conds, fmt.Sprintf("ticket_status = ANY($%d)", len(args)))
	}
	if len(filter.Priorities) > 0 {
		priorities := make([]string, len(filter.Priorities))
		for i, p := range filter.Priorities {
			priorities[i] = string(p)
		}
		args = append(args, pq.Array(priorities))
		conds = append(conds, fmt.Sprintf("priority = ANY($%d)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(subject ILIKE $%d OR number ILIKE $%d)", len(args), len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func scanTicket(row interface{ Scan(...interface{}) error }) (*ticket.Ticket, error) {
	var t ticket.Ticket
	err := row.Scan(
		&t.ID, &t.Number, &t.UserID, &t.Subject, &t.Body, &t.TicketStatus, &t.Priority, &t.AssigneeID,
		&t.TenantID, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.CreatedBy, &t.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
