package service

import (
	"context"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	"github.com/brokerdesk/brokerdesk/internal/cache"
	"github.com/brokerdesk/brokerdesk/internal/domain/catalog"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

func serviceDefinitionCacheKey(name string) string {
	return "catalog:service:" + name
}

// CatalogService manages the service catalog. Staff get full CRUD;
// customers and the marketing site read the enabled subset.
type CatalogService interface {
	CreateServiceDefinition(ctx context.Context, req *dto.CreateServiceDefinitionRequest) (*dto.ServiceDefinitionResponse, error)
	GetServiceDefinition(ctx context.Context, id string) (*dto.ServiceDefinitionResponse, error)
	GetServiceDefinitionByName(ctx context.Context, name string) (*dto.ServiceDefinitionResponse, error)
	ListServiceDefinitions(ctx context.Context, filter *types.ServiceDefinitionFilter) (*dto.ListServiceDefinitionsResponse, error)
	UpdateServiceDefinition(ctx context.Context, id string, req *dto.UpdateServiceDefinitionRequest) (*dto.ServiceDefinitionResponse, error)
	DeleteServiceDefinition(ctx context.Context, id string) error
}

type catalogService struct {
	ServiceParams
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(params ServiceParams) CatalogService {
	return &catalogService{ServiceParams: params}
}

func (s *catalogService) CreateServiceDefinition(ctx context.Context, req *dto.CreateServiceDefinitionRequest) (*dto.ServiceDefinitionResponse, error) {
	def := req.ToServiceDefinition(ctx)
	if err := def.Validate(); err != nil {
		return nil, err
	}

	if err := s.CatalogRepo.Create(ctx, def); err != nil {
		return nil, err
	}

	s.Logger.Infow("created service definition",
		"service_id", def.ID,
		"name", def.Name,
	)
	return &dto.ServiceDefinitionResponse{ServiceDefinition: def}, nil
}

func (s *catalogService) GetServiceDefinition(ctx context.Context, id string) (*dto.ServiceDefinitionResponse, error) {
	def, err := s.CatalogRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ServiceDefinitionResponse{ServiceDefinition: def}, nil
}

// GetServiceDefinitionByName reads through the cache; the marketing
// and catalog pages resolve services by name on every render.
func (s *catalogService) GetServiceDefinitionByName(ctx context.Context, name string) (*dto.ServiceDefinitionResponse, error) {
	if value, found := s.Cache.Get(ctx, serviceDefinitionCacheKey(name)); found {
		if def, ok := cache.UnmarshalCacheValue[catalog.ServiceDefinition](value); ok {
			return &dto.ServiceDefinitionResponse{ServiceDefinition: def}, nil
		}
	}

	def, err := s.CatalogRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(ctx, serviceDefinitionCacheKey(name), def, s.Config.Cache.TTL())
	return &dto.ServiceDefinitionResponse{ServiceDefinition: def}, nil
}

func (s *catalogService) ListServiceDefinitions(ctx context.Context, filter *types.ServiceDefinitionFilter) (*dto.ListServiceDefinitionsResponse, error) {
	if filter == nil {
		filter = types.NewServiceDefinitionFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	// Customers only ever see enabled services.
	if !types.GetUserRole(ctx).IsStaff() {
		filter.EnabledOnly = true
	}

	defs, err := s.CatalogRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.CatalogRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ServiceDefinitionResponse, len(defs))
	for i, def := range defs {
		items[i] = &dto.ServiceDefinitionResponse{ServiceDefinition: def}
	}

	return &dto.ListServiceDefinitionsResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *catalogService) UpdateServiceDefinition(ctx context.Context, id string, req *dto.UpdateServiceDefinitionRequest) (*dto.ServiceDefinitionResponse, error) {
	def, err := s.CatalogRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		def.DisplayName = *req.DisplayName
	}
	if req.Description != nil {
		def.Description = *req.Description
	}
	if req.LongDescription != nil {
		def.LongDescription = *req.LongDescription
	}
	if req.Version != nil {
		def.Version = *req.Version
	}
	if req.Enabled != nil {
		def.Enabled = *req.Enabled
	}
	if req.PricingType != nil {
		def.PricingType = *req.PricingType
	}
	if req.PriceAmount != nil {
		def.PriceAmount = *req.PriceAmount
	}
	if req.BillingPeriod != nil {
		def.BillingPeriod = *req.BillingPeriod
	}
	if req.MaxInstancesPerUser != nil {
		def.MaxInstancesPerUser = *req.MaxInstancesPerUser
	}
	if req.Acknowledgments != nil {
		def.Acknowledgments = *req.Acknowledgments
	}
	if req.AgreementText != nil {
		def.AgreementText = *req.AgreementText
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	def.UpdatedAt = time.Now().UTC()
	def.UpdatedBy = types.GetUserID(ctx)

	if err := s.CatalogRepo.Update(ctx, def); err != nil {
		return nil, err
	}
	s.Cache.Delete(ctx, serviceDefinitionCacheKey(def.Name))
	return &dto.ServiceDefinitionResponse{ServiceDefinition: def}, nil
}

// DeleteServiceDefinition disables and soft-deletes a catalog entry.
// Existing agreements keep working; the entitlement layer reports the
// service as discontinued by its absence.
func (s *catalogService) DeleteServiceDefinition(ctx context.Context, id string) error {
	def, err := s.CatalogRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	activeFilter := types.NewNoLimitAgreementFilter()
	activeFilter.ServiceNames = []string{def.Name}
	activeFilter.AgreementStatuses = types.EnrollmentStatuses()
	count, err := s.AgreementRepo.Count(ctx, activeFilter)
	if err != nil {
		return err
	}
	if count > 0 {
		return ierr.NewError("service has live agreements").
			WithHintf("Disable the service instead, %d customers are still enrolled", count).
			WithReportableDetails(map[string]interface{}{
				"service_name":    def.Name,
				"live_agreements": count,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	def.UpdatedAt = time.Now().UTC()
	def.UpdatedBy = types.GetUserID(ctx)
	if err := s.CatalogRepo.Delete(ctx, def); err != nil {
		return err
	}
	s.Cache.Delete(ctx, serviceDefinitionCacheKey(def.Name))
	return nil
}
