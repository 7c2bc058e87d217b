package testutil

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/domain/agreement"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
)

// InMemoryAgreementStore implements agreement.Repository, including
// the conditional version-guarded update.
type InMemoryAgreementStore struct {
	*InMemoryStore[*agreement.ServiceAgreement]
}

// NewInMemoryAgreementStore creates a new in-memory agreement store
func NewInMemoryAgreementStore() *InMemoryAgreementStore {
	return &InMemoryAgreementStore{
		InMemoryStore: NewInMemoryStore[*agreement.ServiceAgreement](),
	}
}

func copyAgreement(a *agreement.ServiceAgreement) *agreement.ServiceAgreement {
	if a == nil {
		return nil
	}
	copied := *a
	copied.ConfirmedFields = lo.Assign(map[string]bool{}, a.ConfirmedFields)
	if a.CancelledAt != nil {
		copied.CancelledAt = lo.ToPtr(*a.CancelledAt)
	}
	if a.CancellationReason != nil {
		copied.CancellationReason = lo.ToPtr(*a.CancellationReason)
	}
	return &copied
}

func (s *InMemoryAgreementStore) Create(ctx context.Context, a *agreement.ServiceAgreement) error {
	if err := s.InMemoryStore.Create(ctx, a.ID, copyAgreement(a)); err != nil {
		return ierr.NewErrorf("agreement %s already exists", a.ID).
			WithHint("Agreement already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryAgreementStore) Get(ctx context.Context, id string) (*agreement.ServiceAgreement, error) {
	a, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewErrorf("agreement %s not found", id).
			WithHint("Agreement not found").
			Mark(ierr.ErrNotFound)
	}
	return copyAgreement(a), nil
}

func agreementFilterFn(ctx context.Context, a *agreement.ServiceAgreement, filter interface{}) bool {
	f, ok := filter.(*types.AgreementFilter)
	if !ok {
		return true
	}
	if len(f.AgreementIDs) > 0 && !lo.Contains(f.AgreementIDs, a.ID) {
		return false
	}
	if f.UserID != "" && a.UserID != f.UserID {
		return false
	}
	if len(f.ServiceNames) > 0 && !lo.Contains(f.ServiceNames, a.ServiceName) {
		return false
	}
	if len(f.AgreementStatuses) > 0 && !lo.Contains(f.AgreementStatuses, a.AgreementStatus) {
		return false
	}
	return true
}

// Oldest signature first, id as the tie break. The entitlement view
// depends on this order being stable.
func agreementSortFn(a, b *agreement.ServiceAgreement) bool {
	if !a.SignedAt.Equal(b.SignedAt) {
		return a.SignedAt.Before(b.SignedAt)
	}
	return a.ID < b.ID
}

func (s *InMemoryAgreementStore) List(ctx context.Context, filter *types.AgreementFilter) ([]*agreement.ServiceAgreement, error) {
	if filter == nil {
		filter = types.NewAgreementFilter()
	}
	agreements, err := s.InMemoryStore.List(ctx, filter, agreementFilterFn, agreementSortFn)
	if err != nil {
		return nil, err
	}
	agreements = applyPagination(agreements, filter.QueryFilter)
	return lo.Map(agreements, func(a *agreement.ServiceAgreement, _ int) *agreement.ServiceAgreement {
		return copyAgreement(a)
	}), nil
}

func (s *InMemoryAgreementStore) Count(ctx context.Context, filter *types.AgreementFilter) (int, error) {
	if filter == nil {
		filter = types.NewAgreementFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, agreementFilterFn)
}

func (s *InMemoryAgreementStore) Update(ctx context.Context, a *agreement.ServiceAgreement, expectedVersion int) error {
	stored, err := s.InMemoryStore.Get(ctx, a.ID)
	if err != nil {
		return ierr.NewErrorf("agreement %s not found", a.ID).
			WithHint("Agreement not found").
			Mark(ierr.ErrNotFound)
	}
	if stored.Version != expectedVersion {
		return ierr.NewError("agreement was modified concurrently").
			WithHint("The agreement changed while you were working on it, reload and retry").
			WithReportableDetails(map[string]interface{}{
				"agreement_id":     a.ID,
				"expected_version": expectedVersion,
				"current_version":  stored.Version,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	a.Version = expectedVersion + 1
	return s.InMemoryStore.Update(ctx, a.ID, copyAgreement(a))
}

func (s *InMemoryAgreementStore) Delete(ctx context.Context, a *agreement.ServiceAgreement) error {
	if err := s.InMemoryStore.Delete(ctx, a.ID); err != nil {
		return ierr.NewErrorf("agreement %s not found", a.ID).
			WithHint("Agreement not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}
