package types

import ierr "github.com/brokerdesk/brokerdesk/internal/errors"

// AgreementStatus is a service agreement's lifecycle state. Removal is
// a hard delete, not a terminal status.
type AgreementStatus string

const (
	AgreementStatusActive    AgreementStatus = "active"
	AgreementStatusPaused    AgreementStatus = "paused"
	AgreementStatusCancelled AgreementStatus = "cancelled"
	AgreementStatusExpired   AgreementStatus = "expired"
)

func (s AgreementStatus) Validate() error {
	switch s {
	case AgreementStatusActive, AgreementStatusPaused, AgreementStatusCancelled, AgreementStatusExpired:
		return nil
	default:
		return ierr.NewErrorf("invalid agreement status: %s", s).
			WithHint("Invalid agreement status").
			Mark(ierr.ErrValidation)
	}
}

// EnrollmentStatuses are the statuses that count against a service's
// per-user instance limit.
func EnrollmentStatuses() []AgreementStatus {
	return []AgreementStatus{AgreementStatusActive, AgreementStatusPaused}
}

// EntitlementState is what the catalog surface offers a user for a
// given service.
type EntitlementState string

const (
	EntitlementStateActive    EntitlementState = "active"
	EntitlementStatePaused    EntitlementState = "paused"
	EntitlementStateAvailable EntitlementState = "available"
)

// EntitlementAction is the UI affordance derived from the entitlement
// decision table.
type EntitlementAction string

const (
	EntitlementActionViewDetails   EntitlementAction = "view_details"
	EntitlementActionManageService EntitlementAction = "manage_service"
	EntitlementActionGetStarted    EntitlementAction = "get_started"
	EntitlementActionLimitReached  EntitlementAction = "limit_reached"
)

// AgreementFilter represents the filter options for agreements.
type AgreementFilter struct {
	*QueryFilter
	AgreementIDs      []string          `json:"agreement_ids,omitempty" form:"agreement_ids"`
	UserID            string            `json:"user_id,omitempty" form:"user_id"`
	ServiceNames      []string          `json:"service_names,omitempty" form:"service_names"`
	AgreementStatuses []AgreementStatus `json:"agreement_statuses,omitempty" form:"agreement_statuses"`
}

// NewAgreementFilter creates a filter with default values.
func NewAgreementFilter() *AgreementFilter {
	return &AgreementFilter{QueryFilter: NewDefaultQueryFilter()}
}

// NewNoLimitAgreementFilter creates a filter that fetches everything.
func NewNoLimitAgreementFilter() *AgreementFilter {
	return &AgreementFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *AgreementFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	for _, s := range f.AgreementStatuses {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return f.QueryFilter.Validate()
}
