package types

import ierr "github.com/brokerdesk/brokerdesk/internal/errors"

// PricingType distinguishes how a service is priced.
type PricingType string

const (
	// PricingTypeFixed is a flat amount per billing period.
	PricingTypeFixed PricingType = "fixed"
	// PricingTypePercentage is a percentage of managed volume.
	PricingTypePercentage PricingType = "percentage"
)

func (p PricingType) Validate() error {
	switch p {
	case PricingTypeFixed, PricingTypePercentage:
		return nil
	default:
		return ierr.NewErrorf("invalid pricing type: %s", p).
			WithHint("Pricing type must be fixed or percentage").
			Mark(ierr.ErrValidation)
	}
}

// BillingPeriod is the cadence a service is billed on.
type BillingPeriod string

const (
	BillingPeriodMonthly   BillingPeriod = "monthly"
	BillingPeriodQuarterly BillingPeriod = "quarterly"
	BillingPeriodAnnual    BillingPeriod = "annual"
)

func (b BillingPeriod) Validate() error {
	switch b {
	case BillingPeriodMonthly, BillingPeriodQuarterly, BillingPeriodAnnual:
		return nil
	default:
		return ierr.NewErrorf("invalid billing period: %s", b).
			WithHint("Billing period must be monthly, quarterly or annual").
			Mark(ierr.ErrValidation)
	}
}

// ServiceDefinitionFilter represents the filter options for catalog listings.
type ServiceDefinitionFilter struct {
	*QueryFilter
	ServiceNames []string `json:"service_names,omitempty" form:"service_names"`
	EnabledOnly  bool     `json:"enabled_only,omitempty" form:"enabled_only"`
}

// NewServiceDefinitionFilter creates a filter with default values.
func NewServiceDefinitionFilter() *ServiceDefinitionFilter {
	return &ServiceDefinitionFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *ServiceDefinitionFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	return f.QueryFilter.Validate()
}
