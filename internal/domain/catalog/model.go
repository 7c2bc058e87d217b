package catalog

import (
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/shopspring/decimal"
)

// AcknowledgmentItem is one checklist entry a customer must confirm
// before enrolling.
type AcknowledgmentItem struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Required bool   `json:"required"`
}

// ServiceDefinition is a catalog entry staff manage and customers
// enroll in. Name is the stable identifier agreements point to.
type ServiceDefinition struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	DisplayName         string               `json:"display_name"`
	Description         string               `json:"description"`
	LongDescription     string               `json:"long_description,omitempty"`
	Version             string               `json:"version"`
	Enabled             bool                 `json:"enabled"`
	PricingType         types.PricingType    `json:"pricing_type"`
	PriceAmount         decimal.Decimal      `json:"price_amount"`
	BillingPeriod       types.BillingPeriod  `json:"billing_period"`
	MaxInstancesPerUser int                  `json:"max_instances_per_user"`
	Acknowledgments     []AcknowledgmentItem `json:"acknowledgments"`
	AgreementText       string               `json:"agreement_text"`
	types.BaseModel
}

// Validate validates the service definition.
func (s *ServiceDefinition) Validate() error {
	if s.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Service name is required").
			Mark(ierr.ErrValidation)
	}
	if s.DisplayName == "" {
		return ierr.NewError("display_name is required").
			WithHint("Display name is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.PricingType.Validate(); err != nil {
		return err
	}
	if err := s.BillingPeriod.Validate(); err != nil {
		return err
	}
	if s.PriceAmount.IsNegative() {
		return ierr.NewError("price_amount must not be negative").
			WithHint("Price must not be negative").
			Mark(ierr.ErrValidation)
	}
	if s.PricingType == types.PricingTypePercentage && s.PriceAmount.GreaterThan(decimal.NewFromInt(100)) {
		return ierr.NewError("percentage price above 100").
			WithHint("Percentage pricing cannot exceed 100").
			Mark(ierr.ErrValidation)
	}
	if s.MaxInstancesPerUser < 1 {
		return ierr.NewError("max_instances_per_user must be at least 1").
			WithHint("A service must allow at least one enrollment per user").
			Mark(ierr.ErrValidation)
	}
	seen := make(map[string]struct{}, len(s.Acknowledgments))
	for _, ack := range s.Acknowledgments {
		if ack.ID == "" || ack.Text == "" {
			return ierr.NewError("acknowledgment items need id and text").
				WithHint("Each acknowledgment needs an id and text").
				Mark(ierr.ErrValidation)
		}
		if _, ok := seen[ack.ID]; ok {
			return ierr.NewErrorf("duplicate acknowledgment id: %s", ack.ID).
				WithHint("Acknowledgment ids must be unique").
				Mark(ierr.ErrValidation)
		}
		seen[ack.ID] = struct{}{}
	}
	if s.AgreementText == "" {
		return ierr.NewError("agreement_text is required").
			WithHint("Agreement text is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}
