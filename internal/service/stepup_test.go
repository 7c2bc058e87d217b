package service

import (
	"testing"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	"github.com/brokerdesk/brokerdesk/internal/auth"
	domainAuth "github.com/brokerdesk/brokerdesk/internal/domain/auth"
	"github.com/brokerdesk/brokerdesk/internal/domain/brokeraccount"
	"github.com/brokerdesk/brokerdesk/internal/domain/user"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/security"
	"github.com/brokerdesk/brokerdesk/internal/testutil"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type StepUpServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	stepUpService StepUpService
	encryption    security.EncryptionService
	testData      struct {
		userID   string
		password string
	}
}

func TestStepUpService(t *testing.T) {
	suite.Run(t, new(StepUpServiceTestSuite))
}

func (s *StepUpServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	encryption, err := security.NewEncryptionService(s.GetConfig())
	s.Require().NoError(err)
	s.encryption = encryption

	params := ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		DB:                s.GetDB(),
		Cache:             s.GetCache(),
		CatalogRepo:       s.GetStores().Catalog,
		AgreementRepo:     s.GetStores().Agreement,
		BrokerAccountRepo: s.GetStores().BrokerAccount,
		UserRepo:          s.GetStores().User,
		AuthRepo:          s.GetStores().Auth,
		AuthProvider:      auth.NewLocalAuth(s.GetConfig()),
		Encryption:        encryption,
	}
	s.stepUpService = NewStepUpService(params)
	s.setupTestData()
}

func (s *StepUpServiceTestSuite) setupTestData() {
	s.testData.userID = "user_customer_1"
	s.testData.password = "correct-horse"
	s.SetContextUser(s.testData.userID, types.UserRoleCustomer)

	u := &user.User{
		ID:        s.testData.userID,
		Email:     "customer@example.com",
		FullName:  "Test Customer",
		Role:      types.UserRoleCustomer,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().User.Create(s.GetContext(), u))

	hash, err := bcrypt.GenerateFromPassword([]byte(s.testData.password), bcrypt.DefaultCost)
	s.Require().NoError(err)
	s.Require().NoError(s.GetStores().Auth.CreateAuth(s.GetContext(), &domainAuth.Auth{
		UserID:   s.testData.userID,
		Provider: types.AuthProviderLocal,
		Token:    string(hash),
	}))

	s.seedBrokerAccount("bacc_01", s.testData.userID, "secret-1", lo.ToPtr("apikey-1"))
	s.seedBrokerAccount("bacc_02", s.testData.userID, "secret-2", nil)
	s.seedBrokerAccount("bacc_other", "user_other", "secret-3", nil)
}

func (s *StepUpServiceTestSuite) seedBrokerAccount(id, userID, password string, apiKey *string) {
	sealed, err := s.encryption.Encrypt(password)
	s.Require().NoError(err)
	b := &brokeraccount.BrokerAccount{
		ID:                id,
		UserID:            userID,
		BrokerName:        "trading-com",
		AccountNumber:     "12345",
		EncryptedPassword: sealed,
		IsActive:          true,
		BaseModel:         types.GetDefaultBaseModel(s.GetContext()),
	}
	if apiKey != nil {
		sealedKey, err := s.encryption.Encrypt(*apiKey)
		s.Require().NoError(err)
		b.EncryptedAPIKey = lo.ToPtr(sealedKey)
	}
	s.Require().NoError(s.GetStores().BrokerAccount.Create(s.GetContext(), b))
}

func (s *StepUpServiceTestSuite) challenge(resourceID string) {
	_, err := s.stepUpService.Challenge(s.GetContext(), &dto.StepUpChallengeRequest{
		Password:   s.testData.password,
		Purpose:    types.StepUpPurposeRevealBrokerCredentials,
		ResourceID: resourceID,
	})
	s.Require().NoError(err)
}

func (s *StepUpServiceTestSuite) TestChallengeWithWrongPassword() {
	_, err := s.stepUpService.Challenge(s.GetContext(), &dto.StepUpChallengeRequest{
		Password:   "wrong",
		Purpose:    types.StepUpPurposeRevealBrokerCredentials,
		ResourceID: "bacc_01",
	})
	s.Error(err)
}

func (s *StepUpServiceTestSuite) TestRevealWithoutGrantDenied() {
	_, err := s.stepUpService.RevealCredentials(s.GetContext(), "bacc_01")
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *StepUpServiceTestSuite) TestRevealWithGrant() {
	s.challenge("bacc_01")

	resp, err := s.stepUpService.RevealCredentials(s.GetContext(), "bacc_01")
	s.Require().NoError(err)
	s.Equal("trading-com", resp.BrokerName)
	s.Equal("secret-1", resp.Password)
	s.Require().NotNil(resp.APIKey)
	s.Equal("apikey-1", *resp.APIKey)
}

func (s *StepUpServiceTestSuite) TestGrantIsScopedToOneAccount() {
	s.challenge("bacc_01")

	// The grant for account one does not open account two.
	_, err := s.stepUpService.RevealCredentials(s.GetContext(), "bacc_02")
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *StepUpServiceTestSuite) TestExpiredGrantDenied() {
	grant := &domainAuth.StepUpGrant{
		ID:         "grant_expired",
		UserID:     s.testData.userID,
		Purpose:    types.StepUpPurposeRevealBrokerCredentials,
		ResourceID: "bacc_01",
		GrantedAt:  time.Now().UTC().Add(-10 * time.Minute),
		ExpiresAt:  time.Now().UTC().Add(-5 * time.Minute),
	}
	key := types.StepUpGrantKey(s.testData.userID, grant.Purpose, grant.ResourceID)
	s.GetCache().Set(s.GetContext(), key, grant, time.Minute)

	_, err := s.stepUpService.RevealCredentials(s.GetContext(), "bacc_01")
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *StepUpServiceTestSuite) TestGrantDoesNotCrossUsers() {
	s.challenge("bacc_other")

	// Even holding a grant naming the foreign account, ownership wins.
	_, err := s.stepUpService.RevealCredentials(s.GetContext(), "bacc_other")
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *StepUpServiceTestSuite) TestMaskedViewNeedsNoGrant() {
	resp, err := s.stepUpService.GetBrokerAccount(s.GetContext(), "bacc_01")
	s.Require().NoError(err)
	s.Equal("bacc_01", resp.ID)
	s.True(resp.HasAPIKey)

	accounts, err := s.stepUpService.ListBrokerAccounts(s.GetContext())
	s.Require().NoError(err)
	s.Len(accounts, 2)
}

func (s *StepUpServiceTestSuite) TestInvalidPurposeRejected() {
	_, err := s.stepUpService.Challenge(s.GetContext(), &dto.StepUpChallengeRequest{
		Password:   s.testData.password,
		Purpose:    "frobnicate",
		ResourceID: "bacc_01",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
