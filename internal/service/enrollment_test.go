package service

import (
	"errors"
	"testing"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	"github.com/brokerdesk/brokerdesk/internal/auth"
	"github.com/brokerdesk/brokerdesk/internal/domain/agreement"
	"github.com/brokerdesk/brokerdesk/internal/domain/catalog"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/security"
	"github.com/brokerdesk/brokerdesk/internal/testutil"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type EnrollmentServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	enrollmentService  EnrollmentService
	entitlementService EntitlementService
	encryption         security.EncryptionService
	testData           struct {
		service *catalog.ServiceDefinition
		userID  string
	}
}

func TestEnrollmentService(t *testing.T) {
	suite.Run(t, new(EnrollmentServiceTestSuite))
}

func (s *EnrollmentServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupServices()
	s.setupTestData()
}

func (s *EnrollmentServiceTestSuite) setupServices() {
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
		TicketRepo:        s.GetStores().Ticket,
		NotificationRepo:  s.GetStores().Notification,
		AuthRepo:          s.GetStores().Auth,
		AuthProvider:      auth.NewLocalAuth(s.GetConfig()),
		Encryption:        encryption,
	}
	s.entitlementService = NewEntitlementService(params)
	s.enrollmentService = NewEnrollmentService(params, s.entitlementService)
}

func (s *EnrollmentServiceTestSuite) setupTestData() {
	s.testData.userID = "user_customer_1"
	s.SetContextUser(s.testData.userID, types.UserRoleCustomer)

	s.testData.service = &catalog.ServiceDefinition{
		ID:                  "svc_01",
		Name:                "copy-trading",
		DisplayName:         "Copy Trading",
		Description:         "Mirror a managed strategy in your own account",
		Version:             "2.1",
		Enabled:             true,
		PricingType:         types.PricingTypeFixed,
		PriceAmount:         decimal.NewFromInt(49),
		BillingPeriod:       types.BillingPeriodMonthly,
		MaxInstancesPerUser: 1,
		Acknowledgments: []catalog.AcknowledgmentItem{
			{ID: "risk", Text: "I understand trading involves risk of loss", Required: true},
			{ID: "authority", Text: "I authorize trades on my linked account", Required: true},
		},
		AgreementText: "Long agreement body that the customer must scroll through.",
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().Catalog.Create(s.GetContext(), s.testData.service))
}

// start runs StartEnrollment and returns the fresh session.
func (s *EnrollmentServiceTestSuite) start() *dto.EnrollmentSessionResponse {
	resp, err := s.enrollmentService.StartEnrollment(s.GetContext(), &dto.StartEnrollmentRequest{
		ServiceName: s.testData.service.Name,
	})
	s.Require().NoError(err)
	return resp
}

// completeAgreementStep satisfies the scroll and read guards.
func (s *EnrollmentServiceTestSuite) completeAgreementStep(sessionID string) {
	_, err := s.enrollmentService.RecordScroll(s.GetContext(), sessionID, &dto.RecordScrollRequest{
		ScrollTop:    590,
		ScrollHeight: 1000,
		ClientHeight: 400,
	})
	s.Require().NoError(err)
	_, err = s.enrollmentService.SetReadConfirmation(s.GetContext(), sessionID, &dto.SetReadConfirmationRequest{Checked: true})
	s.Require().NoError(err)
}

func (s *EnrollmentServiceTestSuite) advance(sessionID string) (*dto.EnrollmentSessionResponse, error) {
	return s.enrollmentService.AdvanceStep(s.GetContext(), sessionID, &dto.AdvanceStepRequest{Direction: "next"})
}

func (s *EnrollmentServiceTestSuite) TestStartEnrollmentOnDisabledService() {
	s.testData.service.Enabled = false
	s.Require().NoError(s.GetStores().Catalog.Update(s.GetContext(), s.testData.service))

	_, err := s.enrollmentService.StartEnrollment(s.GetContext(), &dto.StartEnrollmentRequest{
		ServiceName: s.testData.service.Name,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *EnrollmentServiceTestSuite) TestStartEnrollmentAtLimit() {
	s.seedAgreement("agr_existing", types.AgreementStatusActive, time.Now().UTC())

	_, err := s.enrollmentService.StartEnrollment(s.GetContext(), &dto.StartEnrollmentRequest{
		ServiceName: s.testData.service.Name,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *EnrollmentServiceTestSuite) TestScrollGate() {
	session := s.start()

	// 100px above the end, threshold is 20px.
	resp, err := s.enrollmentService.RecordScroll(s.GetContext(), session.SessionID, &dto.RecordScrollRequest{
		ScrollTop:    500,
		ScrollHeight: 1000,
		ClientHeight: 400,
	})
	s.NoError(err)
	s.False(resp.ScrolledToEnd)

	_, err = s.enrollmentService.SetReadConfirmation(s.GetContext(), session.SessionID, &dto.SetReadConfirmationRequest{Checked: true})
	s.NoError(err)

	_, err = s.advance(session.SessionID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// Within the threshold: 1000 - (585 + 400) = 15px remaining.
	resp, err = s.enrollmentService.RecordScroll(s.GetContext(), session.SessionID, &dto.RecordScrollRequest{
		ScrollTop:    585,
		ScrollHeight: 1000,
		ClientHeight: 400,
	})
	s.NoError(err)
	s.True(resp.ScrolledToEnd)

	advanced, err := s.advance(session.SessionID)
	s.NoError(err)
	s.Equal(types.EnrollmentStepAcknowledge, advanced.CurrentStep)
}

func (s *EnrollmentServiceTestSuite) TestScrollSignalIsSticky() {
	session := s.start()
	s.completeAgreementStep(session.SessionID)

	// Scrolling back up must not clear the signal.
	resp, err := s.enrollmentService.RecordScroll(s.GetContext(), session.SessionID, &dto.RecordScrollRequest{
		ScrollTop:    0,
		ScrollHeight: 1000,
		ClientHeight: 400,
	})
	s.NoError(err)
	s.True(resp.ScrolledToEnd)
}

func (s *EnrollmentServiceTestSuite) TestUncheckedReadConfirmationBlocksAdvance() {
	session := s.start()
	s.completeAgreementStep(session.SessionID)

	// Unchecking the read box re-blocks the advance.
	_, err := s.enrollmentService.SetReadConfirmation(s.GetContext(), session.SessionID, &dto.SetReadConfirmationRequest{Checked: false})
	s.NoError(err)

	_, err = s.advance(session.SessionID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *EnrollmentServiceTestSuite) TestAcknowledgmentGuardReportsProgress() {
	session := s.start()
	s.completeAgreementStep(session.SessionID)
	_, err := s.advance(session.SessionID)
	s.Require().NoError(err)

	_, err = s.enrollmentService.SetAcknowledgment(s.GetContext(), session.SessionID, &dto.SetAcknowledgmentRequest{
		AcknowledgmentID: "risk",
		Checked:          true,
	})
	s.Require().NoError(err)

	_, err = s.advance(session.SessionID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	var internal *ierr.InternalError
	s.Require().True(errors.As(err, &internal))
	s.Contains(internal.Hint(), "(1 of 2 checked)")
}

func (s *EnrollmentServiceTestSuite) TestUnknownAcknowledgmentRejected() {
	session := s.start()
	_, err := s.enrollmentService.SetAcknowledgment(s.GetContext(), session.SessionID, &dto.SetAcknowledgmentRequest{
		AcknowledgmentID: "nonexistent",
		Checked:          true,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *EnrollmentServiceTestSuite) TestBrokerAccountNumberMustBeDigits() {
	session := s.start()
	s.completeAgreementStep(session.SessionID)
	_, err := s.advance(session.SessionID)
	s.Require().NoError(err)
	s.checkAllAcknowledgments(session.SessionID)
	_, err = s.advance(session.SessionID)
	s.Require().NoError(err)

	_, err = s.enrollmentService.SubmitBrokerCredentials(s.GetContext(), session.SessionID, &dto.BrokerCredentialsRequest{
		BrokerName:    "trading-com",
		AccountNumber: "12a45",
		Password:      "secret",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *EnrollmentServiceTestSuite) TestBackNavigationKeepsState() {
	session := s.start()
	s.completeAgreementStep(session.SessionID)
	_, err := s.advance(session.SessionID)
	s.Require().NoError(err)
	s.checkAllAcknowledgments(session.SessionID)

	back, err := s.enrollmentService.AdvanceStep(s.GetContext(), session.SessionID, &dto.AdvanceStepRequest{Direction: "back"})
	s.NoError(err)
	s.Equal(types.EnrollmentStepAgreement, back.CurrentStep)
	s.True(back.ScrolledToEnd)
	s.True(back.ReadConfirmed)
	for _, ack := range back.Acknowledgments {
		s.True(ack.Checked)
	}

	// Back off the first step is rejected.
	_, err = s.enrollmentService.AdvanceStep(s.GetContext(), session.SessionID, &dto.AdvanceStepRequest{Direction: "back"})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *EnrollmentServiceTestSuite) TestFullWizard() {
	session := s.start()
	s.Equal(types.EnrollmentStepAgreement, session.CurrentStep)
	s.Equal(s.testData.service.AgreementText, session.AgreementText)

	s.completeAgreementStep(session.SessionID)
	_, err := s.advance(session.SessionID)
	s.Require().NoError(err)

	s.checkAllAcknowledgments(session.SessionID)
	_, err = s.advance(session.SessionID)
	s.Require().NoError(err)

	_, err = s.enrollmentService.SubmitBrokerCredentials(s.GetContext(), session.SessionID, &dto.BrokerCredentialsRequest{
		BrokerName:    "trading-com",
		AccountNumber: "12345",
		Password:      "secret",
		APIKey:        "key-abc",
	})
	s.Require().NoError(err)

	confirmStep, err := s.advance(session.SessionID)
	s.Require().NoError(err)
	s.Equal(types.EnrollmentStepConfirm, confirmStep.CurrentStep)

	result, err := s.enrollmentService.ConfirmEnrollment(s.GetContext(), session.SessionID, &dto.ConfirmEnrollmentRequest{
		AgreedToTerms: true,
	})
	s.Require().NoError(err)

	// Agreement committed with the audit trail.
	s.Equal(types.AgreementStatusActive, result.Agreement.AgreementStatus)
	s.Equal(1, result.Agreement.Version)
	s.Equal(s.testData.userID, result.Agreement.UserID)
	s.NotEmpty(result.Agreement.AgreementHash)
	s.Equal("192.0.2.10", result.Agreement.ClientIP)
	s.True(result.Agreement.ConfirmedFields["risk"])
	s.True(result.Agreement.ConfirmedFields["authority"])

	// Broker account linked, active, secrets sealed.
	s.True(result.BrokerAccount.IsActive)
	s.Require().NotNil(result.BrokerAccount.AgreementID)
	s.Equal(result.Agreement.ID, *result.BrokerAccount.AgreementID)
	s.True(result.BrokerAccount.HasAPIKey)

	stored, err := s.GetStores().BrokerAccount.Get(s.GetContext(), result.BrokerAccount.ID)
	s.Require().NoError(err)
	s.NotEqual("secret", stored.EncryptedPassword)
	plaintext, err := s.encryption.Decrypt(stored.EncryptedPassword)
	s.Require().NoError(err)
	s.Equal("secret", plaintext)

	// Entitlement flips to active / view details.
	entitlement, err := s.entitlementService.ComputeStatus(s.GetContext(), s.testData.userID, s.testData.service.Name)
	s.Require().NoError(err)
	s.Equal(types.EntitlementStateActive, entitlement.State)
	s.Equal(types.EntitlementActionViewDetails, entitlement.Action)
	s.Equal(1, entitlement.EnrollmentCount)
	s.True(entitlement.AtLimit)

	// Session is gone after the commit.
	_, err = s.enrollmentService.GetSession(s.GetContext(), session.SessionID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *EnrollmentServiceTestSuite) TestConfirmReassertsEarlierGuards() {
	session := s.start()
	s.completeAgreementStep(session.SessionID)
	_, err := s.advance(session.SessionID)
	s.Require().NoError(err)
	s.checkAllAcknowledgments(session.SessionID)
	_, err = s.advance(session.SessionID)
	s.Require().NoError(err)
	_, err = s.enrollmentService.SubmitBrokerCredentials(s.GetContext(), session.SessionID, &dto.BrokerCredentialsRequest{
		BrokerName:    "trading-com",
		AccountNumber: "12345",
		Password:      "secret",
	})
	s.Require().NoError(err)
	_, err = s.advance(session.SessionID)
	s.Require().NoError(err)

	// Unchecking an acknowledgment after reaching confirm must block
	// the commit.
	_, err = s.enrollmentService.SetAcknowledgment(s.GetContext(), session.SessionID, &dto.SetAcknowledgmentRequest{
		AcknowledgmentID: "risk",
		Checked:          false,
	})
	s.Require().NoError(err)

	_, err = s.enrollmentService.ConfirmEnrollment(s.GetContext(), session.SessionID, &dto.ConfirmEnrollmentRequest{
		AgreedToTerms: true,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// Nothing was written.
	count, err := s.GetStores().Agreement.Count(s.GetContext(), types.NewNoLimitAgreementFilter())
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *EnrollmentServiceTestSuite) TestConfirmRequiresTermsAccepted() {
	session := s.start()
	s.completeAgreementStep(session.SessionID)
	_, err := s.advance(session.SessionID)
	s.Require().NoError(err)
	s.checkAllAcknowledgments(session.SessionID)
	_, err = s.advance(session.SessionID)
	s.Require().NoError(err)
	_, err = s.enrollmentService.SubmitBrokerCredentials(s.GetContext(), session.SessionID, &dto.BrokerCredentialsRequest{
		BrokerName:    "trading-com",
		AccountNumber: "12345",
		Password:      "secret",
	})
	s.Require().NoError(err)
	_, err = s.advance(session.SessionID)
	s.Require().NoError(err)

	_, err = s.enrollmentService.ConfirmEnrollment(s.GetContext(), session.SessionID, &dto.ConfirmEnrollmentRequest{
		AgreedToTerms: false,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *EnrollmentServiceTestSuite) TestSessionOwnershipEnforced() {
	session := s.start()

	s.SetContextUser("user_intruder", types.UserRoleCustomer)
	_, err := s.enrollmentService.GetSession(s.GetContext(), session.SessionID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *EnrollmentServiceTestSuite) checkAllAcknowledgments(sessionID string) {
	for _, ack := range s.testData.service.Acknowledgments {
		_, err := s.enrollmentService.SetAcknowledgment(s.GetContext(), sessionID, &dto.SetAcknowledgmentRequest{
			AcknowledgmentID: ack.ID,
			Checked:          true,
		})
		s.Require().NoError(err)
	}
}

func (s *EnrollmentServiceTestSuite) seedAgreement(id string, status types.AgreementStatus, signedAt time.Time) {
	a := &agreement.ServiceAgreement{
		ID:              id,
		UserID:          s.testData.userID,
		ServiceName:     s.testData.service.Name,
		ServiceVersion:  s.testData.service.Version,
		ConfirmedFields: map[string]bool{"risk": true, "authority": true},
		AgreedToTerms:   true,
		AgreementHash:   "hash",
		SignedAt:        signedAt,
		AgreementStatus: status,
		Version:         1,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().Agreement.Create(s.GetContext(), a))
}
