package postgres

import (
	"database/sql"
	"errors"

	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/lib/pq"
)

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// requireRowAffected converts a zero-row update into a not-found error.
func requireRowAffected(res sql.Result, entity, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read update result").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewErrorf("%s not found", entity).
			WithHintf("The %s was not found", entity).
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
