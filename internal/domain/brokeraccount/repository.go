package brokeraccount

import "context"

// Repository defines the interface for broker account persistence.
type Repository interface {
	// Create creates a new broker account
	Create(ctx context.Context, b *BrokerAccount) error

	// Get retrieves a broker account by id
	Get(ctx context.Context, id string) (*BrokerAccount, error)

	// GetByAgreementID retrieves the account linked to an agreement
	GetByAgreementID(ctx context.Context, agreementID string) (*BrokerAccount, error)

	// ListByUser retrieves all accounts owned by a user
	ListByUser(ctx context.Context, userID string) ([]*BrokerAccount, error)

	// Update updates an existing broker account
	Update(ctx context.Context, b *BrokerAccount) error

	// Delete hard-deletes a broker account
	Delete(ctx context.Context, b *BrokerAccount) error
}
