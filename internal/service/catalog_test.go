package service

import (
	"testing"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	"github.com/brokerdesk/brokerdesk/internal/domain/agreement"
	"github.com/brokerdesk/brokerdesk/internal/domain/catalog"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/testutil"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CatalogServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	catalogService CatalogService
}

func TestCatalogService(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}

func (s *CatalogServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:        s.GetLogger(),
		Config:        s.GetConfig(),
		DB:            s.GetDB(),
		Cache:         s.GetCache(),
		CatalogRepo:   s.GetStores().Catalog,
		AgreementRepo: s.GetStores().Agreement,
	}
	s.catalogService = NewCatalogService(params)
}

func (s *CatalogServiceTestSuite) createService(name string, enabled bool) *dto.ServiceDefinitionResponse {
	resp, err := s.catalogService.CreateServiceDefinition(s.GetContext(), &dto.CreateServiceDefinitionRequest{
		Name:          name,
		DisplayName:   "Service " + name,
		Enabled:       enabled,
		PricingType:   types.PricingTypeFixed,
		PriceAmount:   decimal.NewFromInt(29),
		BillingPeriod: types.BillingPeriodMonthly,
		Acknowledgments: []catalog.AcknowledgmentItem{
			{ID: "risk", Text: "I understand the risk", Required: true},
		},
		AgreementText: "terms and conditions",
	})
	s.Require().NoError(err)
	return resp
}

func (s *CatalogServiceTestSuite) TestCreateAppliesDefaults() {
	resp := s.createService("copy-trading", true)
	s.NotEmpty(resp.ID)
	s.Equal("1.0", resp.Version)
	s.Equal(1, resp.MaxInstancesPerUser)
}

func (s *CatalogServiceTestSuite) TestCreateDuplicateNameRejected() {
	s.createService("copy-trading", true)

	_, err := s.catalogService.CreateServiceDefinition(s.GetContext(), &dto.CreateServiceDefinitionRequest{
		Name:          "copy-trading",
		DisplayName:   "Copy Trading Again",
		PricingType:   types.PricingTypeFixed,
		BillingPeriod: types.BillingPeriodMonthly,
		AgreementText: "terms",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *CatalogServiceTestSuite) TestGetByName() {
	created := s.createService("copy-trading", true)

	resp, err := s.catalogService.GetServiceDefinitionByName(s.GetContext(), "copy-trading")
	s.Require().NoError(err)
	s.Equal(created.ID, resp.ID)

	_, err = s.catalogService.GetServiceDefinitionByName(s.GetContext(), "missing")
	s.True(ierr.IsNotFound(err))
}

func (s *CatalogServiceTestSuite) TestUpdateServiceDefinition() {
	created := s.createService("copy-trading", true)

	resp, err := s.catalogService.UpdateServiceDefinition(s.GetContext(), created.ID, &dto.UpdateServiceDefinitionRequest{
		DisplayName:         lo.ToPtr("Copy Trading Pro"),
		Version:             lo.ToPtr("2.0"),
		MaxInstancesPerUser: lo.ToPtr(3),
	})
	s.Require().NoError(err)
	s.Equal("Copy Trading Pro", resp.DisplayName)
	s.Equal("2.0", resp.Version)
	s.Equal(3, resp.MaxInstancesPerUser)
	// Name never changes.
	s.Equal("copy-trading", resp.Name)
}

func (s *CatalogServiceTestSuite) TestCustomerListingOnlySeesEnabled() {
	s.createService("copy-trading", true)
	s.createService("legacy-bots", false)

	s.SetContextUser("user_customer_1", types.UserRoleCustomer)
	resp, err := s.catalogService.ListServiceDefinitions(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Require().Len(resp.Items, 1)
	s.Equal("copy-trading", resp.Items[0].Name)

	// Staff see the disabled entry too.
	s.SetContextUser("user_support", types.UserRoleSupport)
	resp, err = s.catalogService.ListServiceDefinitions(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Len(resp.Items, 2)
}

func (s *CatalogServiceTestSuite) TestDeleteBlockedWhileEnrolled() {
	created := s.createService("copy-trading", true)

	a := &agreement.ServiceAgreement{
		ID:              "agr_01",
		UserID:          "user_customer_1",
		ServiceName:     "copy-trading",
		ConfirmedFields: map[string]bool{},
		AgreedToTerms:   true,
		AgreementHash:   "hash",
		SignedAt:        time.Now().UTC(),
		AgreementStatus: types.AgreementStatusActive,
		Version:         1,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().Agreement.Create(s.GetContext(), a))

	err := s.catalogService.DeleteServiceDefinition(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// Once the enrollment is gone the delete goes through.
	s.Require().NoError(s.GetStores().Agreement.Delete(s.GetContext(), a))
	s.Require().NoError(s.catalogService.DeleteServiceDefinition(s.GetContext(), created.ID))

	_, err = s.catalogService.GetServiceDefinition(s.GetContext(), created.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *CatalogServiceTestSuite) TestByNameLookupIsCached() {
	created := s.createService("copy-trading", true)

	_, err := s.catalogService.GetServiceDefinitionByName(s.GetContext(), "copy-trading")
	s.Require().NoError(err)

	// A repo-level change the service never saw is invisible until the
	// cache entry expires.
	stored, err := s.GetStores().Catalog.Get(s.GetContext(), created.ID)
	s.Require().NoError(err)
	stored.DisplayName = "changed behind the cache"
	s.Require().NoError(s.GetStores().Catalog.Update(s.GetContext(), stored))

	resp, err := s.catalogService.GetServiceDefinitionByName(s.GetContext(), "copy-trading")
	s.Require().NoError(err)
	s.Equal("Service copy-trading", resp.DisplayName)

	// Updating through the service invalidates the entry.
	_, err = s.catalogService.UpdateServiceDefinition(s.GetContext(), created.ID, &dto.UpdateServiceDefinitionRequest{
		DisplayName: lo.ToPtr("Copy Trading Pro"),
	})
	s.Require().NoError(err)

	resp, err = s.catalogService.GetServiceDefinitionByName(s.GetContext(), "copy-trading")
	s.Require().NoError(err)
	s.Equal("Copy Trading Pro", resp.DisplayName)
}

func (s *CatalogServiceTestSuite) TestDeletedNameCanBeReused() {
	created := s.createService("copy-trading", true)
	s.Require().NoError(s.catalogService.DeleteServiceDefinition(s.GetContext(), created.ID))

	reborn := s.createService("copy-trading", true)
	s.NotEqual(created.ID, reborn.ID)
}
