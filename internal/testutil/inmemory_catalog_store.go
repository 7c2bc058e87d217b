package testutil

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/domain/catalog"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
)

// InMemoryCatalogStore implements catalog.Repository
type InMemoryCatalogStore struct {
	*InMemoryStore[*catalog.ServiceDefinition]
}

// NewInMemoryCatalogStore creates a new in-memory catalog store
func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		InMemoryStore: NewInMemoryStore[*catalog.ServiceDefinition](),
	}
}

func copyServiceDefinition(def *catalog.ServiceDefinition) *catalog.ServiceDefinition {
	if def == nil {
		return nil
	}
	copied := *def
	copied.Acknowledgments = append([]catalog.AcknowledgmentItem(nil), def.Acknowledgments...)
	return &copied
}

func (s *InMemoryCatalogStore) Create(ctx context.Context, def *catalog.ServiceDefinition) error {
	existing, _ := s.GetByName(ctx, def.Name)
	if existing != nil {
		return ierr.NewErrorf("service definition %s already exists", def.Name).
			WithHint("A service with this name already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	if err := s.InMemoryStore.Create(ctx, def.ID, copyServiceDefinition(def)); err != nil {
		return ierr.NewErrorf("service definition %s already exists", def.ID).
			WithHint("A service with this name already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryCatalogStore) Get(ctx context.Context, id string) (*catalog.ServiceDefinition, error) {
	def, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || def.Status == types.StatusDeleted {
		return nil, ierr.NewErrorf("service definition %s not found", id).
			WithHint("Service not found").
			Mark(ierr.ErrNotFound)
	}
	return copyServiceDefinition(def), nil
}

func (s *InMemoryCatalogStore) GetByName(ctx context.Context, name string) (*catalog.ServiceDefinition, error) {
	defs, _ := s.InMemoryStore.List(ctx, nil, nil, nil)
	for _, def := range defs {
		if def.Name == name && def.Status != types.StatusDeleted {
			return copyServiceDefinition(def), nil
		}
	}
	return nil, ierr.NewErrorf("service definition %s not found", name).
		WithHint("Service not found").
		Mark(ierr.ErrNotFound)
}

func serviceDefinitionFilterFn(ctx context.Context, def *catalog.ServiceDefinition, filter interface{}) bool {
	f, ok := filter.(*types.ServiceDefinitionFilter)
	if !ok {
		return true
	}
	if def.Status == types.StatusDeleted {
		return false
	}
	if len(f.ServiceNames) > 0 && !lo.Contains(f.ServiceNames, def.Name) {
		return false
	}
	if f.EnabledOnly && !def.Enabled {
		return false
	}
	return true
}

func serviceDefinitionSortFn(a, b *catalog.ServiceDefinition) bool {
	if a.DisplayName != b.DisplayName {
		return a.DisplayName < b.DisplayName
	}
	return a.ID < b.ID
}

func (s *InMemoryCatalogStore) List(ctx context.Context, filter *types.ServiceDefinitionFilter) ([]*catalog.ServiceDefinition, error) {
	if filter == nil {
		filter = types.NewServiceDefinitionFilter()
	}
	defs, err := s.InMemoryStore.List(ctx, filter, serviceDefinitionFilterFn, serviceDefinitionSortFn)
	if err != nil {
		return nil, err
	}
	defs = applyPagination(defs, filter.QueryFilter)
	return lo.Map(defs, func(def *catalog.ServiceDefinition, _ int) *catalog.ServiceDefinition {
		return copyServiceDefinition(def)
	}), nil
}

func (s *InMemoryCatalogStore) Count(ctx context.Context, filter *types.ServiceDefinitionFilter) (int, error) {
	if filter == nil {
		filter = types.NewServiceDefinitionFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, serviceDefinitionFilterFn)
}

func (s *InMemoryCatalogStore) Update(ctx context.Context, def *catalog.ServiceDefinition) error {
	if err := s.InMemoryStore.Update(ctx, def.ID, copyServiceDefinition(def)); err != nil {
		return ierr.NewErrorf("service definition %s not found", def.ID).
			WithHint("Service not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryCatalogStore) Delete(ctx context.Context, def *catalog.ServiceDefinition) error {
	stored, err := s.InMemoryStore.Get(ctx, def.ID)
	if err != nil {
		return ierr.NewErrorf("service definition %s not found", def.ID).
			WithHint("Service not found").
			Mark(ierr.ErrNotFound)
	}
	deleted := copyServiceDefinition(stored)
	deleted.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, def.ID, deleted)
}
