package agreement

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/types"
)

// Repository defines the interface for service agreement persistence.
type Repository interface {
	// Create creates a new agreement
	Create(ctx context.Context, a *ServiceAgreement) error

	// Get retrieves an agreement by id
	Get(ctx context.Context, id string) (*ServiceAgreement, error)

	// List retrieves agreements matching the filter, ordered by
	// signing time ascending then id ascending
	List(ctx context.Context, filter *types.AgreementFilter) ([]*ServiceAgreement, error)

	// Count returns the exact number of agreements matching the filter
	Count(ctx context.Context, filter *types.AgreementFilter) (int, error)

	// Update persists a mutated agreement conditionally on the version
	// it was read at; a stale version yields ErrVersionConflict and
	// bumps nothing.
	Update(ctx context.Context, a *ServiceAgreement, expectedVersion int) error

	// Delete hard-deletes an agreement
	Delete(ctx context.Context, a *ServiceAgreement) error
}
