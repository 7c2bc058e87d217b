package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/brokerdesk/brokerdesk/internal/domain/brokeraccount"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/postgres"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

type brokerAccountRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewBrokerAccountRepository builds the Postgres-backed broker account
// repository.
func NewBrokerAccountRepository(db postgres.IClient, log *logger.Logger) brokeraccount.Repository {
	return &brokerAccountRepository{db: db, logger: log}
}

const brokerAccountColumns = `id, user_id, broker_name, account_number, encrypted_password,
	encrypted_api_key, is_active, agreement_id,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *brokerAccountRepository) Create(ctx context.Context, b *brokeraccount.BrokerAccount) error {
	r.logger.Debugw("creating broker account",
		"broker_account_id", b.ID,
		"user_id", b.UserID,
		"broker_name", b.BrokerName,
	)

	query := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		types.TableNameBrokerAccounts, brokerAccountColumns)

	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		b.ID, b.UserID, b.BrokerName, b.AccountNumber, b.EncryptedPassword,
		b.EncryptedAPIKey, b.IsActive, b.AgreementID,
		b.TenantID, b.Status, b.CreatedAt, b.UpdatedAt, b.CreatedBy, b.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create broker account").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *brokerAccountRepository) Get(ctx context.Context, id string) (*brokeraccount.BrokerAccount, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND tenant_id = $2`,
		brokerAccountColumns, types.TableNameBrokerAccounts)

	row := r.db.Querier(ctx).QueryRowContext(ctx, query, id, types.GetTenantID(ctx))
	b, err := scanBrokerAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("broker account not found").
				WithHintf("Broker account with ID %s was not found", id).
				WithReportableDetails(map[string]interface{}{"broker_account_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get broker account").
			Mark(ierr.ErrDatabase)
	}
	return b, nil
}

func (r *brokerAccountRepository) GetByAgreementID(ctx context.Context, agreementID string) (*brokeraccount.BrokerAccount, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE agreement_id = $1 AND tenant_id = $2`,
		brokerAccountColumns, types.TableNameBrokerAccounts)

	row := r.db.Querier(ctx).QueryRowContext(ctx, query, agreementID, types.GetTenantID(ctx))
	b, err := scanBrokerAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("broker account not found").
				WithHintf("No broker account is linked to agreement %s", agreementID).
				WithReportableDetails(map[string]interface{}{"agreement_id": agreementID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get broker account").
			Mark(ierr.ErrDatabase)
	}
	return b, nil
}

func (r *brokerAccountRepository) ListByUser(ctx context.Context, userID string) ([]*brokeraccount.BrokerAccount, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 AND tenant_id = $2 ORDER BY created_at ASC, id ASC`,
		brokerAccountColumns, types.TableNameBrokerAccounts)

	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, userID, types.GetTenantID(ctx))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list broker accounts").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var accounts []*brokeraccount.BrokerAccount
	for rows.Next() {
		b, err := scanBrokerAccount(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan broker account").
				Mark(ierr.ErrDatabase)
		}
		accounts = append(accounts, b)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list broker accounts").
			Mark(ierr.ErrDatabase)
	}
	return accounts, nil
}

func (r *brokerAccountRepository) Update(ctx context.Context, b *brokeraccount.BrokerAccount) error {
	r.logger.Debugw("updating broker account",
		"broker_account_id", b.ID,
		"is_active", b.IsActive,
	)

	query := fmt.Sprintf(`UPDATE %s SET
		broker_name = $3, account_number = $4, encrypted_password = $5,
		encrypted_api_key = $6, is_active = $7, agreement_id = $8,
		status = $9, updated_at = $10, updated_by = $11
		WHERE id = $1 AND tenant_id = $2`, types.TableNameBrokerAccounts)

	res, err := r.db.Querier(ctx).ExecContext(ctx, query,
		b.ID, b.TenantID,
		b.BrokerName, b.AccountNumber, b.EncryptedPassword,
		b.EncryptedAPIKey, b.IsActive, b.AgreementID,
		b.Status, b.UpdatedAt, b.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update broker account").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(res, "broker account", b.ID)
}

func (r *brokerAccountRepository) Delete(ctx context.Context, b *brokeraccount.BrokerAccount) error {
	r.logger.Debugw("deleting broker account", "broker_account_id", b.ID)

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND tenant_id = $2`,
		types.TableNameBrokerAccounts)

	res, err := r.db.Querier(ctx).ExecContext(ctx, query, b.ID, b.TenantID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete broker account").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(res, "broker account", b.ID)
}

func scanBrokerAccount(row interface{ Scan(...interface{}) error }) (*brokeraccount.BrokerAccount, error) {
	var b brokeraccount.BrokerAccount
	err := row.Scan(
		&b.ID, &b.UserID, &b.BrokerName, &b.AccountNumber, &b.EncryptedPassword,
		&b.EncryptedAPIKey, &b.IsActive, &b.AgreementID,
		&b.TenantID, &b.Status, &b.CreatedAt, &b.UpdatedAt, &b.CreatedBy, &b.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
