package dto

import (
	"context"

	"github.com/brokerdesk/brokerdesk/internal/domain/catalog"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/shopspring/decimal"
)

// CreateServiceDefinitionRequest creates a catalog entry.
type CreateServiceDefinitionRequest struct {
	Name                string                       `json:"name" binding:"required"`
	DisplayName         string                       `json:"display_name" binding:"required"`
	Description         string                       `json:"description"`
	LongDescription     string                       `json:"long_description"`
	Version             string                       `json:"version"`
	Enabled             bool                         `json:"enabled"`
	PricingType         types.PricingType            `json:"pricing_type" binding:"required"`
	PriceAmount         decimal.Decimal              `json:"price_amount"`
	BillingPeriod       types.BillingPeriod          `json:"billing_period" binding:"required"`
	MaxInstancesPerUser int                          `json:"max_instances_per_user"`
	Acknowledgments     []catalog.AcknowledgmentItem `json:"acknowledgments"`
	AgreementText       string                       `json:"agreement_text" binding:"required"`
}

// ToServiceDefinition builds the domain model from the request.
func (r *CreateServiceDefinitionRequest) ToServiceDefinition(ctx context.Context) *catalog.ServiceDefinition {
	version := r.Version
	if version == "" {
		version = "1.0"
	}
	maxInstances := r.MaxInstancesPerUser
	if maxInstances == 0 {
		maxInstances = 1
	}
	return &catalog.ServiceDefinition{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SERVICE),
		Name:                r.Name,
		DisplayName:         r.DisplayName,
		Description:         r.Description,
		LongDescription:     r.LongDescription,
		Version:             version,
		Enabled:             r.Enabled,
		PricingType:         r.PricingType,
		PriceAmount:         r.PriceAmount,
		BillingPeriod:       r.BillingPeriod,
		MaxInstancesPerUser: maxInstances,
		Acknowledgments:     r.Acknowledgments,
		AgreementText:       r.AgreementText,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
}

// UpdateServiceDefinitionRequest mutates a catalog entry. Name is
// immutable; agreements reference it.
type UpdateServiceDefinitionRequest struct {
	DisplayName         *string                       `json:"display_name,omitempty"`
	Description         *string                       `json:"description,omitempty"`
	LongDescription     *string                       `json:"long_description,omitempty"`
	Version             *string                       `json:"version,omitempty"`
	Enabled             *bool                         `json:"enabled,omitempty"`
	PricingType         *types.PricingType            `json:"pricing_type,omitempty"`
	PriceAmount         *decimal.Decimal              `json:"price_amount,omitempty"`
	BillingPeriod       *types.BillingPeriod          `json:"billing_period,omitempty"`
	MaxInstancesPerUser *int                          `json:"max_instances_per_user,omitempty"`
	Acknowledgments     *[]catalog.AcknowledgmentItem `json:"acknowledgments,omitempty"`
	AgreementText       *string                       `json:"agreement_text,omitempty"`
}

// ServiceDefinitionResponse is the API shape of a catalog entry.
type ServiceDefinitionResponse struct {
	*catalog.ServiceDefinition
}

// ListServiceDefinitionsResponse is the paginated catalog listing.
type ListServiceDefinitionsResponse = types.ListResponse[*ServiceDefinitionResponse]
