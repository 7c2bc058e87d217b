package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brokerdesk/brokerdesk/internal/domain/catalog"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/postgres"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/lib/pq"
)

type catalogRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewCatalogRepository builds the Postgres-backed catalog repository.
func NewCatalogRepository(db postgres.IClient, log *logger.Logger) catalog.Repository {
	return &catalogRepository{db: db, logger: log}
}

const catalogColumns = `id, name, display_name, description, long_description, version, enabled,
	pricing_type, price_amount, billing_period, max_instances_per_user, acknowledgments,
	agreement_text, tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *catalogRepository) Create(ctx context.Context, def *catalog.ServiceDefinition) error {
	r.logger.Debugw("creating service definition", "service_id", def.ID, "name", def.Name)

	acks, err := json.Marshal(def.Acknowledgments)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode acknowledgments").
			Mark(ierr.ErrDatabase)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		types.TableNameServiceDefinitions, catalogColumns)

	_, err = r.db.Querier(ctx).ExecContext(ctx, query,
		def.ID, def.Name, def.DisplayName, def.Description, def.LongDescription,
		def.Version, def.Enabled, def.PricingType, def.PriceAmount, def.BillingPeriod,
		def.MaxInstancesPerUser, acks, def.AgreementText,
		def.TenantID, def.Status, def.CreatedAt, def.UpdatedAt, def.CreatedBy, def.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A service with this name already exists").
				WithReportableDetails(map[string]interface{}{"name": def.Name}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create service definition").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *catalogRepository) Get(ctx context.Context, id string) (*catalog.ServiceDefinition, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		catalogColumns, types.TableNameServiceDefinitions)

	row := r.db.Querier(ctx).QueryRowContext(ctx, query,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	def, err := scanServiceDefinition(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("service definition not found").
				WithHintf("Service with ID %s was not found", id).
				WithReportableDetails(map[string]interface{}{"service_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get service definition").
			Mark(ierr.ErrDatabase)
	}
	return def, nil
}

func (r *catalogRepository) GetByName(ctx context.Context, name string) (*catalog.ServiceDefinition, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE name = $1 AND tenant_id = $2 AND status != $3`,
		catalogColumns, types.TableNameServiceDefinitions)

	row := r.db.Querier(ctx).QueryRowContext(ctx, query,
		name, types.GetTenantID(ctx), types.StatusDeleted)
	def, err := scanServiceDefinition(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("service definition not found").
				WithHintf("Service %s was not found", name).
				WithReportableDetails(map[string]interface{}{"name": name}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get service definition").
			Mark(ierr.ErrDatabase)
	}
	return def, nil
}

func (r *catalogRepository) List(ctx context.Context, filter *types.ServiceDefinitionFilter) ([]*catalog.ServiceDefinition, error) {
	where, args := r.buildWhere(ctx, filter)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY display_name ASC, id ASC`,
		catalogColumns, types.TableNameServiceDefinitions, where)
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list service definitions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var defs []*catalog.ServiceDefinition
	for rows.Next() {
		def, err := scanServiceDefinition(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan service definition").
				Mark(ierr.ErrDatabase)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list service definitions").
			Mark(ierr.ErrDatabase)
	}
	return defs, nil
}

func (r *catalogRepository) Count(ctx context.Context, filter *types.ServiceDefinitionFilter) (int, error) {
	where, args := r.buildWhere(ctx, filter)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`,
		types.TableNameServiceDefinitions, where)

	var count int
	if err := r.db.Querier(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count service definitions").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *catalogRepository) Update(ctx context.Context, def *catalog.ServiceDefinition) error {
	r.logger.Debugw("updating service definition", "service_id", def.ID)

	acks, err := json.Marshal(def.Acknowledgments)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode acknowledgments").
			Mark(ierr.ErrDatabase)
	}

	query := fmt.Sprintf(`UPDATE %s SET
		display_name = $3, description = $4, long_description = $5, version = $6,
		enabled = $7, pricing_type = $8, price_amount = $9, billing_period = $10,
		max_instances_per_user = $11, acknowledgments = $12, agreement_text = $13,
		status = $14, updated_at = $15, updated_by = $16
		WHERE id = $1 AND tenant_id = $2`, types.TableNameServiceDefinitions)

	res, err := r.db.Querier(ctx).ExecContext(ctx, query,
		def.ID, def.TenantID,
		def.DisplayName, def.Description, def.LongDescription, def.Version,
		def.Enabled, def.PricingType, def.PriceAmount, def.BillingPeriod,
		def.MaxInstancesPerUser, acks, def.AgreementText,
		def.Status, def.UpdatedAt, def.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update service definition").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(res, "service definition", def.ID)
}

func (r *catalogRepository) Delete(ctx context.Context, def *catalog.ServiceDefinition) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $3, updated_at = $4, updated_by = $5
		WHERE id = $1 AND tenant_id = $2`, types.TableNameServiceDefinitions)

	res, err := r.db.Querier(ctx).ExecContext(ctx, query,
		def.ID, def.TenantID, types.StatusDeleted, def.UpdatedAt, def.UpdatedBy)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete service definition").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(res, "service definition", def.ID)
}

func (r *catalogRepository) buildWhere(ctx context.Context, filter *types.ServiceDefinitionFilter) (string, []interface{}) {
	conds := []string{"tenant_id = $1", "status != $2"}
	args := []interface{}{types.GetTenantID(ctx), types.StatusDeleted}

	if len(filter.ServiceNames) > 0 {
		args = append(args, pq.Array(filter.ServiceNames))
		conds = append(conds, fmt.Sprintf("name = ANY($%d)", len(args)))
	}
	if filter.EnabledOnly {
		conds = append(conds, "enabled = true")
	}
	return strings.Join(conds, " AND "), args
}

func scanServiceDefinition(row interface{ Scan(...interface{}) error }) (*catalog.ServiceDefinition, error) {
	var def catalog.ServiceDefinition
	var acks []byte

	err := row.Scan(
		&def.ID, &def.Name, &def.DisplayName, &def.Description, &def.LongDescription,
		&def.Version, &def.Enabled, &def.PricingType, &def.PriceAmount, &def.BillingPeriod,
		&def.MaxInstancesPerUser, &acks, &def.AgreementText,
		&def.TenantID, &def.Status, &def.CreatedAt, &def.UpdatedAt, &def.CreatedBy, &def.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if len(acks) > 0 {
		if err := json.Unmarshal(acks, &def.Acknowledgments); err != nil {
			return nil, err
		}
	}
	return &def, nil
}
