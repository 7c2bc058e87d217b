package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brokerdesk/brokerdesk/internal/domain/user"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/postgres"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/lib/pq"
)

type userRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewUserRepository builds the Postgres-backed user repository.
func NewUserRepository(db postgres.IClient, log *logger.Logger) user.Repository {
	return &userRepository{db: db, logger: log}
}

const userColumns = `id, email, full_name, phone, role, suspended, billing_address,
	stripe_customer_id, metadata, tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	r.logger.Debugw("creating user", "user_id", u.ID, "email", u.Email, "role", u.Role)

	address, err := json.Marshal(u.BillingAddress)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode billing address").
			Mark(ierr.ErrDatabase)
	}
	metadata, err := json.Marshal(u.Metadata)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode metadata").
			Mark(ierr.ErrDatabase)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		types.TableNameUsers, userColumns)

	_, err = r.db.Querier(ctx).ExecContext(ctx, query,
		u.ID, u.Email, u.FullName, u.Phone, u.Role, u.Suspended, address,
		u.StripeCustomerID, metadata,
		u.TenantID, u.Status, u.CreatedAt, u.UpdatedAt, u.CreatedBy, u.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A user with this email already exists").
				WithReportableDetails(map[string]interface{}{"email": u.Email}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create user").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		userColumns, types.TableNameUsers)

	row := r.db.Querier(ctx).QueryRowContext(ctx, query,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("user not found").
				WithHintf("User with ID %s was not found", id).
				WithReportableDetails(map[string]interface{}{"user_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get user").
			Mark(ierr.ErrDatabase)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE email = $1 AND tenant_id = $2 AND status != $3`,
		userColumns, types.TableNameUsers)

	row := r.db.Querier(ctx).QueryRowContext(ctx, query,
		email, types.GetTenantID(ctx), types.StatusDeleted)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("user not found").
				WithHint("No user exists with this email").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get user").
			Mark(ierr.ErrDatabase)
	}
	return u, nil
}

func (r *userRepository) List(ctx context.Context, filter *types.UserFilter) ([]*user.User, error) {
	where, args := r.buildWhere(ctx, filter)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY created_at DESC, id ASC`,
		userColumns, types.TableNameUsers, where)
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list users").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan user").
				Mark(ierr.ErrDatabase)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list users").
			Mark(ierr.ErrDatabase)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context, filter *types.UserFilter) (int, error) {
	where, args := r.buildWhere(ctx, filter)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, types.TableNameUsers, where)

	var count int
	if err := r.db.Querier(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count users").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	r.logger.Debugw("updating user", "user_id", u.ID)

	address, err := json.Marshal(u.BillingAddress)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode billing address").
			Mark(ierr.ErrDatabase)
	}
	metadata, err := json.Marshal(u.Metadata)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode metadata").
			Mark(ierr.ErrDatabase)
	}

	query := fmt.Sprintf(`UPDATE %s SET
		full_name = $3, phone = $4, role = $5, suspended = $6, billing_address = $7,
		stripe_customer_id = $8, metadata = $9, status = $10, updated_at = $11, updated_by = $12
		WHERE id = $1 AND tenant_id = $2`, types.TableNameUsers)

	res, err := r.db.Querier(ctx).ExecContext(ctx, query,
		u.ID, u.TenantID,
		u.FullName, u.Phone, u.Role, u.Suspended, address,
		u.StripeCustomerID, metadata, u.Status, u.UpdatedAt, u.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update user").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(res, "user", u.ID)
}

func (r *userRepository) Delete(ctx context.Context, u *user.User) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $3, updated_at = $4, updated_by = $5
		WHERE id = $1 AND tenant_id = $2`, types.TableNameUsers)

	res, err := r.db.Querier(ctx).ExecContext(ctx, query,
		u.ID, u.TenantID, types.StatusDeleted, u.UpdatedAt, u.UpdatedBy)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete user").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(res, "user", u.ID)
}

func (r *userRepository) buildWhere(ctx context.Context, filter *types.UserFilter) (string, []interface{}) {
	conds := []string{"tenant_id = $1", "status != $2"}
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}

	if len(filter.UserIDs) > 0 {
		args = append(args, pq.Array(filter.UserIDs))
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(email ILIKE $%d OR full_name ILIKE $%d)", len(args), len(args)))
	}
	if len(filter.Roles) > 0 {
		roles := make([]string, len(filter.Roles))
		for i, role := range filter.Roles {
			roles[i] = string(role)
		}
		args = append(args, pq.Array(roles))
		conds = append(conds, fmt.Sprintf("role = ANY($%d)", len(args)))
	}
	if filter.Suspended != nil {
		args = append(args, *filter.Suspended)
		conds = append(conds, fmt.Sprintf("suspended = $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func scanUser(row interface{ Scan(...interface{}) error }) (*user.User, error) {
	var u user.User
	var address, metadata []byte

	err := row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.Phone, &u.Role, &u.Suspended, &address,
		&u.StripeCustomerID, &metadata,
		&u.TenantID, &u.Status, &u.CreatedAt, &u.UpdatedAt, &u.CreatedBy, &u.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &u.BillingAddress); err != nil {
			return nil, err
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &u.Metadata); err != nil {
			return nil, err
		}
	}
	return &u, nil
}
