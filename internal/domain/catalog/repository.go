package catalog

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/types"
)

// Repository defines the interface for service catalog persistence.
type Repository interface {
	// Create creates a new service definition
	Create(ctx context.Context, def *ServiceDefinition) error

	// Get retrieves a service definition by id
	Get(ctx context.Context, id string) (*ServiceDefinition, error)

	// GetByName retrieves a service definition by its stable name
	GetByName(ctx context.Context, name string) (*ServiceDefinition, error)

	// List retrieves service definitions matching the filter
	List(ctx context.Context, filter *types.ServiceDefinitionFilter) ([]*ServiceDefinition, error)

	// Count returns the exact number of definitions matching the filter
	Count(ctx context.Context, filter *types.ServiceDefinitionFilter) (int, error)

	// Update updates an existing service definition
	Update(ctx context.Context, def *ServiceDefinition) error

	// Delete removes a service definition
	Delete(ctx context.Context, def *ServiceDefinition) error
}
