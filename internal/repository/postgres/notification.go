package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/brokerdesk/brokerdesk/internal/domain/notification"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/postgres"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/lib/pq"
)

type notificationRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewNotificationRepository builds the Postgres-backed notification
// repository.
func NewNotificationRepository(db postgres.IClient, log *logger.Logger) notification.Repository {
	return &notificationRepository{db: db, logger: log}
}

const notificationColumns = `id, recipient_id, title, body, level, read_at,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	r.logger.Debugw("creating notification",
		"notification_id", n.ID,
		"recipient_id", n.RecipientID,
		"level", n.Level,
	)

	query := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		types.TableNameNotifications, notificationColumns)

	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		n.ID, n.RecipientID, n.Title, n.Body, n.Level, n.ReadAt,
		n.TenantID, n.Status, n.CreatedAt, n.UpdatedAt, n.CreatedBy, n.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create notification").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *notificationRepository) Get(ctx context.Context, id string) (*notification.Notification, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		notificationColumns, types.TableNameNotifications)

	row := r.db.Querier(ctx).QueryRowContext(ctx, query,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	n, err := scanNotification(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("notification not found").
				WithHintf("Notification with ID %s was not found", id).
				WithReportableDetails(map[string]interface{}{"notification_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get notification").
			Mark(ierr.ErrDatabase)
	}
	return n, nil
}

// List includes broadcast rows (empty recipient) when filtering by a
// recipient, so every user sees announcements alongside their own
// notifications.
func (r *notificationRepository) List(ctx context.Context, filter *types.NotificationFilter) ([]*notification.Notification, error) {
	where, args := r.buildWhere(ctx, filter)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY created_at DESC, id ASC`,
		notificationColumns, types.TableNameNotifications, where)
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list notifications").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan notification").
				Mark(ierr.ErrDatabase)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list notifications").
			Mark(ierr.ErrDatabase)
	}
	return notifications, nil
}

func (r *notificationRepository) Count(ctx context.Context, filter *types.NotificationFilter) (int, error) {
	where, args := r.buildWhere(ctx, filter)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, types.TableNameNotifications, where)

	var count int
	if err := r.db.Querier(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count notifications").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *notificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	query := fmt.Sprintf(`UPDATE %s SET
		title = $3, body = $4, level = $5, read_at = $6,
		status = $7, updated_at = $8, updated_by = $9
		WHERE id = $1 AND tenant_id = $2`, types.TableNameNotifications)

	res, err := r.db.Querier(ctx).ExecContext(ctx, query,
		n.ID, n.TenantID,
		n.Title, n.Body, n.Level, n.ReadAt,
		n.Status, n.UpdatedAt, n.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update notification").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(res, "notification", n.ID)
}

func (r *notificationRepository) Delete(ctx context.Context, n *notification.Notification) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND tenant_id = $2`,
		types.TableNameNotifications)

	res, err := r.db.Querier(ctx).ExecContext(ctx, query, n.ID, n.TenantID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete notification").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(res, "notification", n.ID)
}

func (r *notificationRepository) buildWhere(ctx context.Context, filter *types.NotificationFilter) (string, []interface{}) {
	conds := []string{"tenant_id = $1", "status != $2"}
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}

	if len(filter.NotificationIDs) > 0 {
		args = append(args, pq.Array(filter.NotificationIDs))
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if filter.RecipientID != "" {
		args = append(args, filter.RecipientID)
		conds = append(conds, fmt.Sprintf("(recipient_id = $%d OR recipient_id = '')", len(args)))
	}
	if len(filter.Levels) > 0 {
		levels := make([]string, len(filter.Levels))
		for i, l := range filter.Levels {
			levels[i] = string(l)
		}
		args = append(args, pq.Array(levels))
		conds = append(conds, fmt.Sprintf("level = ANY($%d)", len(args)))
	}
	if filter.UnreadOnly {
		conds = append(conds, "read_at IS NULL")
	}
	return strings.Join(conds, " AND "), args
}

func scanNotification(row interface{ Scan(...interface{}) error }) (*notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(
		&n.ID, &n.RecipientID, &n.Title, &n.Body, &n.Level, &n.ReadAt,
		&n.TenantID, &n.Status, &n.CreatedAt, &n.UpdatedAt, &n.CreatedBy, &n.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
