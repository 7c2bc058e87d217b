package testutil

import (
	"context"
	"sort"

	"github.com/brokerdesk/brokerdesk/internal/domain/brokeraccount"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/samber/lo"
)

// InMemoryBrokerAccountStore implements brokeraccount.Repository
type InMemoryBrokerAccountStore struct {
	*InMemoryStore[*brokeraccount.BrokerAccount]
}

// NewInMemoryBrokerAccountStore creates a new in-memory broker account store
func NewInMemoryBrokerAccountStore() *InMemoryBrokerAccountStore {
	return &InMemoryBrokerAccountStore{
		InMemoryStore: NewInMemoryStore[*brokeraccount.BrokerAccount](),
	}
}

func copyBrokerAccount(b *brokeraccount.BrokerAccount) *brokeraccount.BrokerAccount {
	if b == nil {
		return nil
	}
	copied := *b
	if b.EncryptedAPIKey != nil {
		copied.EncryptedAPIKey = lo.ToPtr(*b.EncryptedAPIKey)
	}
	if b.AgreementID != nil {
		copied.AgreementID = lo.ToPtr(*b.AgreementID)
	}
	return &copied
}

func (s *InMemoryBrokerAccountStore) Create(ctx context.Context, b *brokeraccount.BrokerAccount) error {
	if err := s.InMemoryStore.Create(ctx, b.ID, copyBrokerAccount(b)); err != nil {
		return ierr.NewErrorf("broker account %s already exists", b.ID).
			WithHint("Broker account already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryBrokerAccountStore) Get(ctx context.Context, id string) (*brokeraccount.BrokerAccount, error) {
	b, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewErrorf("broker account %s not found", id).
			WithHint("Broker account not found").
			Mark(ierr.ErrNotFound)
	}
	return copyBrokerAccount(b), nil
}

func (s *InMemoryBrokerAccountStore) GetByAgreementID(ctx context.Context, agreementID string) (*brokeraccount.BrokerAccount, error) {
	accounts, _ := s.InMemoryStore.List(ctx, nil, nil, nil)
	for _, b := range accounts {
		if b.AgreementID != nil && *b.AgreementID == agreementID {
			return copyBrokerAccount(b), nil
		}
	}
	return nil, ierr.NewErrorf("no broker account linked to agreement %s", agreementID).
		WithHint("Broker account not found").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryBrokerAccountStore) ListByUser(ctx context.Context, userID string) ([]*brokeraccount.BrokerAccount, error) {
	accounts, _ := s.InMemoryStore.List(ctx, nil, nil, nil)
	owned := lo.Filter(accounts, func(b *brokeraccount.BrokerAccount, _ int) bool {
		return b.UserID == userID
	})
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID < owned[j].ID })
	return lo.Map(owned, func(b *brokeraccount.BrokerAccount, _ int) *brokeraccount.BrokerAccount {
		return copyBrokerAccount(b)
	}), nil
}

func (s *InMemoryBrokerAccountStore) Update(ctx context.Context, b *brokeraccount.BrokerAccount) error {
	if err := s.InMemoryStore.Update(ctx, b.ID, copyBrokerAccount(b)); err != nil {
		return ierr.NewErrorf("broker account %s not found", b.ID).
			WithHint("Broker account not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryBrokerAccountStore) Delete(ctx context.Context, b *brokeraccount.BrokerAccount) error {
	if err := s.InMemoryStore.Delete(ctx, b.ID); err != nil {
		return ierr.NewErrorf("broker account %s not found", b.ID).
			WithHint("Broker account not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}
