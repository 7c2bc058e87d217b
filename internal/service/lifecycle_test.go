package service

import (
	"testing"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	"github.com/brokerdesk/brokerdesk/internal/domain/agreement"
	"github.com/brokerdesk/brokerdesk/internal/domain/brokeraccount"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/testutil"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type LifecycleServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	lifecycleService LifecycleService
	testData         struct {
		userID    string
		agreement *agreement.ServiceAgreement
		broker    *brokeraccount.BrokerAccount
	}
}

func TestLifecycleService(t *testing.T) {
	suite.Run(t, new(LifecycleServiceTestSuite))
}

func (s *LifecycleServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		DB:                s.GetDB(),
		Cache:             s.GetCache(),
		CatalogRepo:       s.GetStores().Catalog,
		AgreementRepo:     s.GetStores().Agreement,
		BrokerAccountRepo: s.GetStores().BrokerAccount,
		UserRepo:          s.GetStores().User,
	}
	s.lifecycleService = NewLifecycleService(params)
	s.setupTestData()
}

func (s *LifecycleServiceTestSuite) setupTestData() {
	s.testData.userID = "user_customer_1"
	s.SetContextUser(s.testData.userID, types.UserRoleCustomer)

	s.testData.agreement = &agreement.ServiceAgreement{
		ID:              "agr_01",
		UserID:          s.testData.userID,
		ServiceName:     "copy-trading",
		ServiceVersion:  "2.1",
		ConfirmedFields: map[string]bool{"risk": true},
		AgreedToTerms:   true,
		AgreementHash:   "hash",
		SignedAt:        time.Now().UTC().Add(-24 * time.Hour),
		AgreementStatus: types.AgreementStatusActive,
		Version:         1,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().Agreement.Create(s.GetContext(), s.testData.agreement))

	s.testData.broker = &brokeraccount.BrokerAccount{
		ID:                "bacc_01",
		UserID:            s.testData.userID,
		BrokerName:        "trading-com",
		AccountNumber:     "12345",
		EncryptedPassword: "sealed",
		IsActive:          true,
		AgreementID:       lo.ToPtr("agr_01"),
		BaseModel:         types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().BrokerAccount.Create(s.GetContext(), s.testData.broker))
}

func (s *LifecycleServiceTestSuite) TestPauseDeactivatesBroker() {
	resp, err := s.lifecycleService.Pause(s.GetContext(), "agr_01", &dto.PauseAgreementRequest{
		Version: 1,
		Reason:  "traveling",
	})
	s.Require().NoError(err)
	s.Equal(types.AgreementStatusPaused, resp.AgreementStatus)
	s.Equal(2, resp.Version)
	s.Require().NotNil(resp.CancelledAt)
	s.Require().NotNil(resp.CancellationReason)
	s.Equal("traveling", *resp.CancellationReason)

	broker, err := s.GetStores().BrokerAccount.Get(s.GetContext(), "bacc_01")
	s.Require().NoError(err)
	s.False(broker.IsActive)
}

func (s *LifecycleServiceTestSuite) TestPauseAlreadyPausedIsNoOp() {
	_, err := s.lifecycleService.Pause(s.GetContext(), "agr_01", &dto.PauseAgreementRequest{Version: 1})
	s.Require().NoError(err)

	// Second pause succeeds without touching the row again, even with
	// the now-stale version.
	resp, err := s.lifecycleService.Pause(s.GetContext(), "agr_01", &dto.PauseAgreementRequest{Version: 1})
	s.NoError(err)
	s.Equal(types.AgreementStatusPaused, resp.AgreementStatus)
	s.Equal(2, resp.Version)
}

func (s *LifecycleServiceTestSuite) TestPauseReactivateRoundTrip() {
	_, err := s.lifecycleService.Pause(s.GetContext(), "agr_01", &dto.PauseAgreementRequest{
		Version: 1,
		Reason:  "traveling",
	})
	s.Require().NoError(err)

	resp, err := s.lifecycleService.Reactivate(s.GetContext(), "agr_01", &dto.ReactivateAgreementRequest{Version: 2})
	s.Require().NoError(err)
	s.Equal(types.AgreementStatusActive, resp.AgreementStatus)
	s.Equal(3, resp.Version)
	s.Nil(resp.CancelledAt)
	s.Nil(resp.CancellationReason)

	broker, err := s.GetStores().BrokerAccount.Get(s.GetContext(), "bacc_01")
	s.Require().NoError(err)
	s.True(broker.IsActive)
}

func (s *LifecycleServiceTestSuite) TestReactivateAlreadyActiveIsNoOp() {
	resp, err := s.lifecycleService.Reactivate(s.GetContext(), "agr_01", &dto.ReactivateAgreementRequest{Version: 1})
	s.NoError(err)
	s.Equal(types.AgreementStatusActive, resp.AgreementStatus)
	s.Equal(1, resp.Version)

	// Invoking it twice changes nothing either.
	resp, err = s.lifecycleService.Reactivate(s.GetContext(), "agr_01", &dto.ReactivateAgreementRequest{Version: 1})
	s.NoError(err)
	s.Equal(types.AgreementStatusActive, resp.AgreementStatus)
	s.Equal(1, resp.Version)
}

func (s *LifecycleServiceTestSuite) TestStaleVersionRejected() {
	_, err := s.lifecycleService.Pause(s.GetContext(), "agr_01", &dto.PauseAgreementRequest{Version: 7})
	s.Error(err)
	s.True(ierr.IsVersionConflict(err))

	// The row is untouched.
	a, getErr := s.GetStores().Agreement.Get(s.GetContext(), "agr_01")
	s.Require().NoError(getErr)
	s.Equal(types.AgreementStatusActive, a.AgreementStatus)
	s.Equal(1, a.Version)

	broker, getErr := s.GetStores().BrokerAccount.Get(s.GetContext(), "bacc_01")
	s.Require().NoError(getErr)
	s.True(broker.IsActive)
}

func (s *LifecycleServiceTestSuite) TestRemoveDeletesAgreementAndBroker() {
	err := s.lifecycleService.Remove(s.GetContext(), "agr_01", &dto.RemoveAgreementRequest{
		Version: 1,
		Reason:  "switching brokers",
	})
	s.Require().NoError(err)

	_, err = s.GetStores().Agreement.Get(s.GetContext(), "agr_01")
	s.True(ierr.IsNotFound(err))
	_, err = s.GetStores().BrokerAccount.Get(s.GetContext(), "bacc_01")
	s.True(ierr.IsNotFound(err))
}

func (s *LifecycleServiceTestSuite) TestRemoveStaleVersionRejected() {
	err := s.lifecycleService.Remove(s.GetContext(), "agr_01", &dto.RemoveAgreementRequest{Version: 3})
	s.Error(err)
	s.True(ierr.IsVersionConflict(err))

	_, err = s.GetStores().Agreement.Get(s.GetContext(), "agr_01")
	s.NoError(err)
}

func (s *LifecycleServiceTestSuite) TestRemoveRechecksVersionUnderLock() {
	// Another writer bumps the row after the caller read version 1 but
	// before the removal commits.
	_, err := s.lifecycleService.Pause(s.GetContext(), "agr_01", &dto.PauseAgreementRequest{Version: 1})
	s.Require().NoError(err)

	err = s.lifecycleService.Remove(s.GetContext(), "agr_01", &dto.RemoveAgreementRequest{Version: 1})
	s.Error(err)
	s.True(ierr.IsVersionConflict(err))

	// Neither row was deleted.
	_, err = s.GetStores().Agreement.Get(s.GetContext(), "agr_01")
	s.NoError(err)
	_, err = s.GetStores().BrokerAccount.Get(s.GetContext(), "bacc_01")
	s.NoError(err)

	// Retrying with the fresh version goes through.
	s.Require().NoError(s.lifecycleService.Remove(s.GetContext(), "agr_01", &dto.RemoveAgreementRequest{Version: 2}))
	_, err = s.GetStores().Agreement.Get(s.GetContext(), "agr_01")
	s.True(ierr.IsNotFound(err))
}

func (s *LifecycleServiceTestSuite) TestRemoveWithoutBrokerAccount() {
	s.Require().NoError(s.GetStores().BrokerAccount.Delete(s.GetContext(), s.testData.broker))

	err := s.lifecycleService.Remove(s.GetContext(), "agr_01", &dto.RemoveAgreementRequest{Version: 1})
	s.NoError(err)
}

func (s *LifecycleServiceTestSuite) TestCustomerCannotTouchForeignAgreement() {
	s.SetContextUser("user_intruder", types.UserRoleCustomer)

	_, err := s.lifecycleService.Pause(s.GetContext(), "agr_01", &dto.PauseAgreementRequest{Version: 1})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	_, err = s.lifecycleService.GetAgreement(s.GetContext(), "agr_01")
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *LifecycleServiceTestSuite) TestStaffCanManageAnyAgreement() {
	s.SetContextUser("user_support", types.UserRoleSupport)

	resp, err := s.lifecycleService.Pause(s.GetContext(), "agr_01", &dto.PauseAgreementRequest{Version: 1})
	s.NoError(err)
	s.Equal(types.AgreementStatusPaused, resp.AgreementStatus)
}

func (s *LifecycleServiceTestSuite) TestListAgreementsScopedToCaller() {
	other := &agreement.ServiceAgreement{
		ID:              "agr_02",
		UserID:          "user_other",
		ServiceName:     "copy-trading",
		ConfirmedFields: map[string]bool{},
		AgreedToTerms:   true,
		AgreementHash:   "hash",
		SignedAt:        time.Now().UTC(),
		AgreementStatus: types.AgreementStatusActive,
		Version:         1,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().Agreement.Create(s.GetContext(), other))

	resp, err := s.lifecycleService.ListAgreements(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Len(resp.Items, 1)
	s.Equal("agr_01", resp.Items[0].ID)
}
