package service

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	"github.com/brokerdesk/brokerdesk/internal/domain/agreement"
	"github.com/brokerdesk/brokerdesk/internal/domain/catalog"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
)

// EntitlementService derives, per service, a user's enrollment state
// and the action the UI should offer.
type EntitlementService interface {
	// ComputeStatus resolves one user/service pair.
	ComputeStatus(ctx context.Context, userID, serviceName string) (*dto.EntitlementResponse, error)

	// ListEntitlements resolves every enabled service for the user in
	// one pass, for the catalog page.
	ListEntitlements(ctx context.Context, userID string) ([]*dto.EntitlementResponse, error)
}

type entitlementService struct {
	ServiceParams
}

// NewEntitlementService creates a new entitlement service.
func NewEntitlementService(params ServiceParams) EntitlementService {
	return &entitlementService{ServiceParams: params}
}

func (s *entitlementService) ComputeStatus(ctx context.Context, userID, serviceName string) (*dto.EntitlementResponse, error) {
	def, err := s.CatalogRepo.GetByName(ctx, serviceName)
	if err != nil {
		return nil, err
	}

	filter := types.NewNoLimitAgreementFilter()
	filter.UserID = userID
	filter.ServiceNames = []string{serviceName}
	filter.AgreementStatuses = types.EnrollmentStatuses()

	agreements, err := s.AgreementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return computeEntitlement(def, agreements), nil
}

func (s *entitlementService) ListEntitlements(ctx context.Context, userID string) ([]*dto.EntitlementResponse, error) {
	catalogFilter := types.NewServiceDefinitionFilter()
	catalogFilter.QueryFilter = types.NewNoLimitQueryFilter()
	catalogFilter.EnabledOnly = true

	defs, err := s.CatalogRepo.List(ctx, catalogFilter)
	if err != nil {
		return nil, err
	}

	filter := types.NewNoLimitAgreementFilter()
	filter.UserID = userID
	filter.AgreementStatuses = types.EnrollmentStatuses()

	agreements, err := s.AgreementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	byService := lo.GroupBy(agreements, func(a *agreement.ServiceAgreement) string {
		return a.ServiceName
	})

	entitlements := make([]*dto.EntitlementResponse, len(defs))
	for i, def := range defs {
		entitlements[i] = computeEntitlement(def, byService[def.Name])
	}
	return entitlements, nil
}

// computeEntitlement applies the action decision table. The agreement
// slice must already be ordered by signing time then id; the first row
// is the one the UI's action link targets.
func computeEntitlement(def *catalog.ServiceDefinition, agreements []*agreement.ServiceAgreement) *dto.EntitlementResponse {
	resp := &dto.EntitlementResponse{
		ServiceName:     def.Name,
		DisplayName:     def.DisplayName,
		State:           types.EntitlementStateAvailable,
		EnrollmentCount: len(agreements),
		MaxInstances:    def.MaxInstancesPerUser,
		AtLimit:         len(agreements) >= def.MaxInstancesPerUser,
	}

	if len(agreements) > 0 {
		first := agreements[0]
		resp.AgreementID = first.ID
		if first.AgreementStatus == types.AgreementStatusActive {
			resp.State = types.EntitlementStateActive
		} else {
			resp.State = types.EntitlementStatePaused
		}
	}

	switch resp.State {
	case types.EntitlementStateActive:
		resp.Action = types.EntitlementActionViewDetails
	case types.EntitlementStatePaused:
		resp.Action = types.EntitlementActionManageService
	default:
		if resp.AtLimit {
			resp.Action = types.EntitlementActionLimitReached
		} else {
			resp.Action = types.EntitlementActionGetStarted
		}
	}
	return resp
}
