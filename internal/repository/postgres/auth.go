package postgres

import (
	"context"
	"database/sql"

	"github.com/brokerdesk/brokerdesk/internal/domain/auth"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/postgres"
)

type authRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewAuthRepository builds the Postgres-backed credential repository.
func NewAuthRepository(db postgres.IClient, log *logger.Logger) auth.Repository {
	return &authRepository{db: db, logger: log}
}

func (r *authRepository) CreateAuth(ctx context.Context, a *auth.Auth) error {
	query := `INSERT INTO auths (user_id, provider, token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		a.UserID, a.Provider, a.Token, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("Credentials already exist for this user").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to store credentials").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *authRepository) GetAuthByUserID(ctx context.Context, userID string) (*auth.Auth, error) {
	query := `SELECT user_id, provider, token, created_at, updated_at
		FROM auths WHERE user_id = $1`

	var a auth.Auth
	err := r.db.Querier(ctx).QueryRowContext(ctx, query, userID).Scan(
		&a.UserID, &a.Provider, &a.Token, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("credentials not found").
				WithHint("No credentials exist for this user").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load credentials").
			Mark(ierr.ErrDatabase)
	}
	return &a, nil
}

func (r *authRepository) UpdateAuth(ctx context.Context, a *auth.Auth) error {
	query := `UPDATE auths SET token = $2, updated_at = $3 WHERE user_id = $1`

	res, err := r.db.Querier(ctx).ExecContext(ctx, query, a.UserID, a.Token, a.UpdatedAt)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update credentials").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(res, "credentials", a.UserID)
}

func (r *authRepository) DeleteAuth(ctx context.Context, userID string) error {
	query := `DELETE FROM auths WHERE user_id = $1`

	res, err := r.db.Querier(ctx).ExecContext(ctx, query, userID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete credentials").
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(res, "credentials", userID)
}
