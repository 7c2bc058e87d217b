package service

import (
	"testing"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/domain/agreement"
	"github.com/brokerdesk/brokerdesk/internal/domain/catalog"
	"github.com/brokerdesk/brokerdesk/internal/testutil"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type EntitlementServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	entitlementService EntitlementService
	testData           struct {
		userID string
		now    time.Time
	}
}

func TestEntitlementService(t *testing.T) {
	suite.Run(t, new(EntitlementServiceTestSuite))
}

func (s *EntitlementServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:        s.GetLogger(),
		Config:        s.GetConfig(),
		DB:            s.GetDB(),
		Cache:         s.GetCache(),
		CatalogRepo:   s.GetStores().Catalog,
		AgreementRepo: s.GetStores().Agreement,
	}
	s.entitlementService = NewEntitlementService(params)

	s.testData.userID = "user_customer_1"
	s.testData.now = time.Now().UTC()
	s.SetContextUser(s.testData.userID, types.UserRoleCustomer)
}

func (s *EntitlementServiceTestSuite) seedService(id, name string, maxInstances int, enabled bool) {
	def := &catalog.ServiceDefinition{
		ID:                  id,
		Name:                name,
		DisplayName:         "Service " + name,
		Version:             "1.0",
		Enabled:             enabled,
		PricingType:         types.PricingTypeFixed,
		PriceAmount:         decimal.NewFromInt(10),
		BillingPeriod:       types.BillingPeriodMonthly,
		MaxInstancesPerUser: maxInstances,
		AgreementText:       "terms",
		BaseModel:           types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().Catalog.Create(s.GetContext(), def))
}

func (s *EntitlementServiceTestSuite) seedAgreement(id, serviceName string, status types.AgreementStatus, signedAt time.Time) {
	a := &agreement.ServiceAgreement{
		ID:              id,
		UserID:          s.testData.userID,
		ServiceName:     serviceName,
		ConfirmedFields: map[string]bool{},
		AgreedToTerms:   true,
		AgreementHash:   "hash",
		SignedAt:        signedAt,
		AgreementStatus: status,
		Version:         1,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().Agreement.Create(s.GetContext(), a))
}

func (s *EntitlementServiceTestSuite) TestAvailableService() {
	s.seedService("svc_01", "copy-trading", 1, true)

	resp, err := s.entitlementService.ComputeStatus(s.GetContext(), s.testData.userID, "copy-trading")
	s.Require().NoError(err)
	s.Equal(types.EntitlementStateAvailable, resp.State)
	s.Equal(types.EntitlementActionGetStarted, resp.Action)
	s.Zero(resp.EnrollmentCount)
	s.False(resp.AtLimit)
	s.Empty(resp.AgreementID)
}

func (s *EntitlementServiceTestSuite) TestActiveEnrollment() {
	s.seedService("svc_01", "copy-trading", 1, true)
	s.seedAgreement("agr_01", "copy-trading", types.AgreementStatusActive, s.testData.now)

	resp, err := s.entitlementService.ComputeStatus(s.GetContext(), s.testData.userID, "copy-trading")
	s.Require().NoError(err)
	s.Equal(types.EntitlementStateActive, resp.State)
	s.Equal(types.EntitlementActionViewDetails, resp.Action)
	s.Equal("agr_01", resp.AgreementID)
	s.True(resp.AtLimit)
}

func (s *EntitlementServiceTestSuite) TestPausedEnrollment() {
	s.seedService("svc_01", "copy-trading", 1, true)
	s.seedAgreement("agr_01", "copy-trading", types.AgreementStatusPaused, s.testData.now)

	resp, err := s.entitlementService.ComputeStatus(s.GetContext(), s.testData.userID, "copy-trading")
	s.Require().NoError(err)
	s.Equal(types.EntitlementStatePaused, resp.State)
	s.Equal(types.EntitlementActionManageService, resp.Action)
}

func (s *EntitlementServiceTestSuite) TestAtLimitNeverOffersGetStarted() {
	s.seedService("svc_01", "copy-trading", 2, true)
	s.seedAgreement("agr_01", "copy-trading", types.AgreementStatusActive, s.testData.now.Add(-time.Hour))
	s.seedAgreement("agr_02", "copy-trading", types.AgreementStatusActive, s.testData.now)

	resp, err := s.entitlementService.ComputeStatus(s.GetContext(), s.testData.userID, "copy-trading")
	s.Require().NoError(err)
	s.True(resp.AtLimit)
	s.Equal(2, resp.EnrollmentCount)
	s.NotEqual(types.EntitlementActionGetStarted, resp.Action)
}

func (s *EntitlementServiceTestSuite) TestOldestAgreementWinsTheLink() {
	s.seedService("svc_01", "copy-trading", 3, true)
	s.seedAgreement("agr_newer", "copy-trading", types.AgreementStatusActive, s.testData.now)
	s.seedAgreement("agr_older", "copy-trading", types.AgreementStatusPaused, s.testData.now.Add(-time.Hour))

	resp, err := s.entitlementService.ComputeStatus(s.GetContext(), s.testData.userID, "copy-trading")
	s.Require().NoError(err)
	s.Equal("agr_older", resp.AgreementID)
	// The first row also decides the state.
	s.Equal(types.EntitlementStatePaused, resp.State)
}

func (s *EntitlementServiceTestSuite) TestSignedAtTieBreaksOnID() {
	s.seedService("svc_01", "copy-trading", 3, true)
	signedAt := s.testData.now.Truncate(time.Second)
	s.seedAgreement("agr_b", "copy-trading", types.AgreementStatusActive, signedAt)
	s.seedAgreement("agr_a", "copy-trading", types.AgreementStatusActive, signedAt)

	resp, err := s.entitlementService.ComputeStatus(s.GetContext(), s.testData.userID, "copy-trading")
	s.Require().NoError(err)
	s.Equal("agr_a", resp.AgreementID)
}

func (s *EntitlementServiceTestSuite) TestListEntitlementsSkipsDisabledServices() {
	s.seedService("svc_01", "copy-trading", 1, true)
	s.seedService("svc_02", "signals", 1, true)
	s.seedService("svc_03", "legacy-bots", 1, false)
	s.seedAgreement("agr_01", "copy-trading", types.AgreementStatusActive, s.testData.now)

	entitlements, err := s.entitlementService.ListEntitlements(s.GetContext(), s.testData.userID)
	s.Require().NoError(err)
	s.Len(entitlements, 2)

	byName := map[string]types.EntitlementAction{}
	for _, e := range entitlements {
		byName[e.ServiceName] = e.Action
	}
	s.Equal(types.EntitlementActionViewDetails, byName["copy-trading"])
	s.Equal(types.EntitlementActionGetStarted, byName["signals"])
	s.NotContains(byName, "legacy-bots")
}
