package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brokerdesk/brokerdesk/internal/domain/agreement"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/postgres"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/lib/pq"
)

type agreementRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewAgreementRepository builds the Postgres-backed agreement repository.
func NewAgreementRepository(db postgres.IClient, log *logger.Logger) agreement.Repository {
	return &agreementRepository{db: db, logger: log}
}

const agreementColumns = `id, user_id, service_name, service_version, confirmed_fields,
	agreed_to_terms, agreement_hash, signed_at, client_ip, user_agent, agreement_status,
	cancelled_at, cancellation_reason, version,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *agreementRepository) Create(ctx context.Context, a *agreement.ServiceAgreement) error {
	r.logger.Debugw("creating agreement",
		"agreement_id", a.ID,
		"user_id", a.UserID,
		"service_name", a.ServiceName,
	)

	confirmed, err := json.Marshal(a.ConfirmedFields)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode confirmed fields").
			Mark(ierr.ErrDatabase)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		types.TableNameServiceAgreements, agreementColumns)

	_, err = r.db.Querier(ctx).ExecContext(ctx, query,
		a.ID, a.UserID, a.ServiceName, a.ServiceVersion, confirmed,
		a.AgreedToTerms, a.AgreementHash, a.SignedAt, a.ClientIP, a.UserAgent,
		a.AgreementStatus, a.CancelledAt, a.CancellationReason, a.Version,
		a.TenantID, a.Status, a.CreatedAt, a.UpdatedAt, a.CreatedBy, a.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create agreement").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *agreementRepository) Get(ctx context.Context, id string) (*agreement.ServiceAgreement, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND tenant_id = $2`,
		agreementColumns, types.TableNameServiceAgreements)

	row := r.db.Querier(ctx).QueryRowContext(ctx, query, id, types.GetTenantID(ctx))
	a, err := scanAgreement(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("agreement not found").
				WithHintf("Agreement with ID %s was not found", id).
				WithReportableDetails(map[string]interface{}{"agreement_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get agreement").
			Mark(ierr.ErrDatabase)
	}
	return a, nil
}

// List orders by signing time then id so entitlement decisions are
// deterministic when timestamps collide.
func (r *agreementRepository) List(ctx context.Context, filter *types.AgreementFilter) ([]*agreement.ServiceAgreement, error) {
	where, args := r.buildWhere(ctx, filter)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY signed_at ASC, id ASC`,
		agreementColumns, types.TableNameServiceAgreements, where)
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list agreements").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var agreements []*agreement.ServiceAgreement
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan agreement").
				Mark(ierr.ErrDatabase)
		}
		agreements = append(agreements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list agreements").
			Mark(ierr.ErrDatabase)
	}
	return agreements, nil
}

func (r *agreementRepository) Count(ctx context.Context, filter *types.AgreementFilter) (int, error) {
	where, args := r.buildWhere(ctx, filter)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`,
		types.TableNameServiceAgreements, where)

	var count int
	if err := r.db.Querier(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count agreements").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

// Update bumps the version only when the row still carries
// expectedVersion; a concurrent writer winning the race surfaces as a
// version conflict instead of a silent overwrite.
func (r *agreementRepository) Update(ctx context.Context, a *agreement.ServiceAgreement, expectedVersion int) error {
	r.logger.Debugw("updating agreement",
		"agreement_id", a.ID,
		"agreement_status", a.AgreementStatus,
		"expected_version", expectedVersion,
	)

	confirmed, err := json.Marshal(a.ConfirmedFields)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode confirmed fields").
			Mark(ierr.ErrDatabase)
	}

	query := fmt.Sprintf(`UPDATE %s SET
		confirmed_fields = $4, agreed_to_terms = $5, agreement_status = $6,
		cancelled_at = $7, cancellation_reason = $8, version = version + 1,
		status = $9, updated_at = $10, updated_by = $11
		WHERE id = $1 AND tenant_id = $2 AND version = $3`,
		types.TableNameServiceAgreements)

	res, err := r.db.Querier(ctx).ExecContext(ctx, query,
		a.ID, a.TenantID, expectedVersion,
		confirmed, a.AgreedToTerms, a.AgreementStatus,
		a.CancelledAt, a.CancellationReason,
		a.Status, a.UpdatedAt, a.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update agreement").
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read update result").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		// Distinguish a missing row from a stale version.
		var current int
		checkQuery := fmt.Sprintf(`SELECT version FROM %s WHERE id = $1 AND tenant_id = $2`,
			types.TableNameServiceAgreements)
		err := r.db.Querier(ctx).QueryRowContext(ctx, checkQuery, a.ID, a.TenantID).Scan(&current)
		if err == sql.ErrNoRows {
			return ierr.NewError("agreement not found").
				WithHintf("Agreement with ID %s was not found", a.ID).
				Mark(ierr.ErrNotFound)
		}
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to update agreement").
				Mark(ierr.ErrDatabase)
		}
		return ierr.NewError("agreement was modified concurrently").
			WithHint("The agreement changed while you were working on it, reload and retry").
			WithReportableDetails(map[string]interface{}{
				"agreement_id":     a.ID,
				"expected_version": expectedVersion,
				"current_version":  current,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	a.Version = expectedVersion + 1
	return nil
}

func (r *agreementRepository) Delete(ctx context.Context, a *agreement.ServiceAgreement) error {
	r.logger.Debugw("deleting agreement", "agreement_id", a.ID)

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND tenant_id = $2`,
		types.TableNameServiceAgreements)

	res, err := r.db.Querier(ctx).ExecContext(ctx, query, a.ID, a.TenantID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete agreement").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(res, "agreement", a.ID)
}

func (r *agreementRepository) buildWhere(ctx context.Context, filter *types.AgreementFilter) (string, []interface{}) {
	conds := []string{"tenant_id = $1"}
	args := []interface{}{types.GetTenantID(ctx)}

	if len(filter.AgreementIDs) > 0 {
		args = append(args, pq.Array(filter.AgreementIDs))
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if len(filter.ServiceNames) > 0 {
		args = append(args, pq.Array(filter.ServiceNames))
		conds = append(conds, fmt.Sprintf("service_name = ANY($%d)", len(args)))
	}
	if len(filter.AgreementStatuses) > 0 {
		statuses := make([]string, len(filter.AgreementStatuses))
		for i, s := range filter.AgreementStatuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conds = append(conds, fmt.Sprintf("agreement_status = ANY($%d)", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func scanAgreement(row interface{ Scan(...interface{}) error }) (*agreement.ServiceAgreement, error) {
	var a agreement.ServiceAgreement
	var confirmed []byte

	err := row.Scan(
		&a.ID, &a.UserID, &a.ServiceName, &a.ServiceVersion, &confirmed,
		&a.AgreedToTerms, &a.AgreementHash, &a.SignedAt, &a.ClientIP, &a.UserAgent,
		&a.AgreementStatus, &a.CancelledAt, &a.CancellationReason, &a.Version,
		&a.TenantID, &a.Status, &a.CreatedAt, &a.UpdatedAt, &a.CreatedBy, &a.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if len(confirmed) > 0 {
		if err := json.Unmarshal(confirmed, &a.ConfirmedFields); err != nil {
			return nil, err
		}
	}
	return &a, nil
}
