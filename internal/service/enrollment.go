package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	"github.com/brokerdesk/brokerdesk/internal/cache"
	"github.com/brokerdesk/brokerdesk/internal/domain/agreement"
	"github.com/brokerdesk/brokerdesk/internal/domain/brokeraccount"
	"github.com/brokerdesk/brokerdesk/internal/domain/catalog"
	"github.com/brokerdesk/brokerdesk/internal/email"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
)

// EnrollmentService runs the four-step wizard: agreement, acknowledge,
// broker, confirm. Sessions live in the cache until confirmed or
// expired; the commit itself is a single transaction.
type EnrollmentService interface {
	StartEnrollment(ctx context.Context, req *dto.StartEnrollmentRequest) (*dto.EnrollmentSessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.EnrollmentSessionResponse, error)
	RecordScroll(ctx context.Context, sessionID string, req *dto.RecordScrollRequest) (*dto.EnrollmentSessionResponse, error)
	SetReadConfirmation(ctx context.Context, sessionID string, req *dto.SetReadConfirmationRequest) (*dto.EnrollmentSessionResponse, error)
	SetAcknowledgment(ctx context.Context, sessionID string, req *dto.SetAcknowledgmentRequest) (*dto.EnrollmentSessionResponse, error)
	SubmitBrokerCredentials(ctx context.Context, sessionID string, req *dto.BrokerCredentialsRequest) (*dto.EnrollmentSessionResponse, error)
	AdvanceStep(ctx context.Context, sessionID string, req *dto.AdvanceStepRequest) (*dto.EnrollmentSessionResponse, error)
	ConfirmEnrollment(ctx context.Context, sessionID string, req *dto.ConfirmEnrollmentRequest) (*dto.EnrollmentResultResponse, error)
}

type enrollmentService struct {
	ServiceParams
	entitlements EntitlementService
}

// NewEnrollmentService creates a new enrollment service.
func NewEnrollmentService(params ServiceParams, entitlements EntitlementService) EnrollmentService {
	return &enrollmentService{
		ServiceParams: params,
		entitlements:  entitlements,
	}
}

// sessionBroker holds the broker credentials entered on step 3.
// Secrets are sealed before the session is cached.
type sessionBroker struct {
	BrokerName        string  `json:"broker_name"`
	AccountNumber     string  `json:"account_number"`
	EncryptedPassword string  `json:"encrypted_password"`
	EncryptedAPIKey   *string `json:"encrypted_api_key,omitempty"`
}

// enrollmentSession is the cached wizard state. Back navigation keeps
// everything entered so far.
type enrollmentSession struct {
	ID             string               `json:"id"`
	UserID         string               `json:"user_id"`
	ServiceName    string               `json:"service_name"`
	ServiceVersion string               `json:"service_version"`
	AgreementHash  string               `json:"agreement_hash"`
	Step           types.EnrollmentStep `json:"step"`
	ScrolledToEnd  bool                 `json:"scrolled_to_end"`
	ReadConfirmed  bool                 `json:"read_confirmed"`
	Acknowledged   map[string]bool      `json:"acknowledged"`
	Broker         *sessionBroker       `json:"broker,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	ExpiresAt      time.Time            `json:"expires_at"`
}

func enrollmentSessionKey(sessionID string) string {
	return fmt.Sprintf("enrollment:session:%s", sessionID)
}

// hashAgreementText fingerprints the agreement text shown to the
// customer so the signed record proves which version they saw.
func hashAgreementText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (s *enrollmentService) StartEnrollment(ctx context.Context, req *dto.StartEnrollmentRequest) (*dto.EnrollmentSessionResponse, error) {
	userID := types.GetUserID(ctx)

	def, err := s.CatalogRepo.GetByName(ctx, req.ServiceName)
	if err != nil {
		return nil, err
	}
	if !def.Enabled {
		return nil, ierr.NewError("service is disabled").
			WithHintf("%s is not open for enrollment", def.DisplayName).
			Mark(ierr.ErrInvalidOperation)
	}

	entitlement, err := s.entitlements.ComputeStatus(ctx, userID, def.Name)
	if err != nil {
		return nil, err
	}
	if entitlement.AtLimit {
		return nil, ierr.NewError("enrollment limit reached").
			WithHintf("You already have %d of %d allowed enrollments for this service",
				entitlement.EnrollmentCount, def.MaxInstancesPerUser).
			WithReportableDetails(map[string]interface{}{
				"service_name":     def.Name,
				"enrollment_count": entitlement.EnrollmentCount,
				"max_instances":    def.MaxInstancesPerUser,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	session := &enrollmentSession{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ENROLLMENT),
		UserID:         userID,
		ServiceName:    def.Name,
		ServiceVersion: def.Version,
		AgreementHash:  hashAgreementText(def.AgreementText),
		Step:           types.EnrollmentStepAgreement,
		Acknowledged:   make(map[string]bool, len(def.Acknowledgments)),
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.Config.Enrollment.SessionTTL()),
	}
	for _, ack := range def.Acknowledgments {
		session.Acknowledged[ack.ID] = false
	}

	s.saveSession(ctx, session)

	s.Logger.Infow("started enrollment",
		"session_id", session.ID,
		"user_id", userID,
		"service_name", def.Name,
	)
	return s.toSessionResponse(session, def), nil
}

func (s *enrollmentService) GetSession(ctx context.Context, sessionID string) (*dto.EnrollmentSessionResponse, error) {
	session, def, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.toSessionResponse(session, def), nil
}

// RecordScroll marks the agreement as scrolled once the viewport comes
// within the configured threshold of the end. The signal is sticky.
func (s *enrollmentService) RecordScroll(ctx context.Context, sessionID string, req *dto.RecordScrollRequest) (*dto.EnrollmentSessionResponse, error) {
	session, def, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	remaining := req.ScrollHeight - (req.ScrollTop + req.ClientHeight)
	if remaining <= s.Config.Enrollment.ScrollThresholdPx {
		session.ScrolledToEnd = true
		s.saveSession(ctx, session)
	}
	return s.toSessionResponse(session, def), nil
}

func (s *enrollmentService) SetReadConfirmation(ctx context.Context, sessionID string, req *dto.SetReadConfirmationRequest) (*dto.EnrollmentSessionResponse, error) {
	session, def, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.ReadConfirmed = req.Checked
	s.saveSession(ctx, session)
	return s.toSessionResponse(session, def), nil
}

func (s *enrollmentService) SetAcknowledgment(ctx context.Context, sessionID string, req *dto.SetAcknowledgmentRequest) (*dto.EnrollmentSessionResponse, error) {
	session, def, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if _, ok := session.Acknowledged[req.AcknowledgmentID]; !ok {
		return nil, ierr.NewError("unknown acknowledgment").
			WithHint("Unknown acknowledgment item").
			WithReportableDetails(map[string]interface{}{
				"acknowledgment_id": req.AcknowledgmentID,
			}).
			Mark(ierr.ErrValidation)
	}

	session.Acknowledged[req.AcknowledgmentID] = req.Checked
	s.saveSession(ctx, session)
	return s.toSessionResponse(session, def), nil
}

func (s *enrollmentService) SubmitBrokerCredentials(ctx context.Context, sessionID string, req *dto.BrokerCredentialsRequest) (*dto.EnrollmentSessionResponse, error) {
	session, def, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Validate before sealing anything.
	probe := &brokeraccount.BrokerAccount{
		UserID:            session.UserID,
		BrokerName:        req.BrokerName,
		AccountNumber:     req.AccountNumber,
		EncryptedPassword: req.Password,
	}
	if err := probe.Validate(); err != nil {
		return nil, err
	}

	encryptedPassword, err := s.Encryption.Encrypt(req.Password)
	if err != nil {
		return nil, err
	}

	broker := &sessionBroker{
		BrokerName:        req.BrokerName,
		AccountNumber:     req.AccountNumber,
		EncryptedPassword: encryptedPassword,
	}
	if req.APIKey != "" {
		encryptedKey, err := s.Encryption.Encrypt(req.APIKey)
		if err != nil {
			return nil, err
		}
		broker.EncryptedAPIKey = lo.ToPtr(encryptedKey)
	}

	session.Broker = broker
	s.saveSession(ctx, session)
	return s.toSessionResponse(session, def), nil
}

func (s *enrollmentService) AdvanceStep(ctx context.Context, sessionID string, req *dto.AdvanceStepRequest) (*dto.EnrollmentSessionResponse, error) {
	session, def, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if req.Direction == "back" {
		if session.Step == types.EnrollmentStepAgreement {
			return nil, ierr.NewError("already on the first step").
				WithHint("You are on the first step").
				Mark(ierr.ErrInvalidOperation)
		}
		session.Step = session.Step.Prev()
		s.saveSession(ctx, session)
		return s.toSessionResponse(session, def), nil
	}

	if err := s.guardAdvance(session, def); err != nil {
		return nil, err
	}
	session.Step = session.Step.Next()
	s.saveSession(ctx, session)
	return s.toSessionResponse(session, def), nil
}

// guardAdvance enforces the forward transition guards. Skipping ahead
// is impossible because only one step is ever advanced at a time.
func (s *enrollmentService) guardAdvance(session *enrollmentSession, def *catalog.ServiceDefinition) error {
	switch session.Step {
	case types.EnrollmentStepAgreement:
		if !session.ScrolledToEnd {
			return ierr.NewError("agreement not scrolled to end").
				WithHint("Scroll through the full agreement before continuing").
				Mark(ierr.ErrInvalidOperation)
		}
		if !session.ReadConfirmed {
			return ierr.NewError("read confirmation not checked").
				WithHint("Confirm that you have read the agreement").
				Mark(ierr.ErrInvalidOperation)
		}
	case types.EnrollmentStepAcknowledge:
		checked := 0
		for _, ok := range session.Acknowledged {
			if ok {
				checked++
			}
		}
		total := len(session.Acknowledged)
		if checked < total {
			return ierr.NewError("acknowledgments incomplete").
				WithHintf("All acknowledgments must be checked (%d of %d checked)", checked, total).
				WithReportableDetails(map[string]interface{}{
					"checked": checked,
					"total":   total,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
	case types.EnrollmentStepBroker:
		if session.Broker == nil {
			return ierr.NewError("broker credentials missing").
				WithHint("Enter your broker account details before continuing").
				Mark(ierr.ErrInvalidOperation)
		}
	case types.EnrollmentStepConfirm:
		return ierr.NewError("already on the final step").
			WithHint("Submit the enrollment from this step").
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

// ConfirmEnrollment commits the wizard: one agreement row and one
// broker account row, written in a single transaction so a failure on
// either leaves nothing behind. An advisory lock plus a limit re-check
// inside the transaction closes the race between two sessions
// finishing the same wizard.
func (s *enrollmentService) ConfirmEnrollment(ctx context.Context, sessionID string, req *dto.ConfirmEnrollmentRequest) (*dto.EnrollmentResultResponse, error) {
	session, def, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Step != types.EnrollmentStepConfirm {
		return nil, ierr.NewError("wizard not on confirm step").
			WithHint("Complete the earlier steps first").
			Mark(ierr.ErrInvalidOperation)
	}
	if !req.AgreedToTerms {
		return nil, ierr.NewError("terms not accepted").
			WithHint("The service agreement must be accepted").
			Mark(ierr.ErrValidation)
	}
	// Re-assert the earlier guards; the session is client-driven state.
	stepsDone := *session
	for _, step := range []types.EnrollmentStep{types.EnrollmentStepAgreement, types.EnrollmentStepAcknowledge, types.EnrollmentStepBroker} {
		stepsDone.Step = step
		if err := s.guardAdvance(&stepsDone, def); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	newAgreement := &agreement.ServiceAgreement{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AGREEMENT),
		UserID:          session.UserID,
		ServiceName:     session.ServiceName,
		ServiceVersion:  session.ServiceVersion,
		ConfirmedFields: session.Acknowledged,
		AgreedToTerms:   true,
		AgreementHash:   session.AgreementHash,
		SignedAt:        now,
		ClientIP:        types.GetClientIP(ctx),
		UserAgent:       types.GetUserAgent(ctx),
		AgreementStatus: types.AgreementStatusActive,
		Version:         1,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	if err := newAgreement.Validate(); err != nil {
		return nil, err
	}

	newBroker := &brokeraccount.BrokerAccount{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BROKER),
		UserID:            session.UserID,
		BrokerName:        session.Broker.BrokerName,
		AccountNumber:     session.Broker.AccountNumber,
		EncryptedPassword: session.Broker.EncryptedPassword,
		EncryptedAPIKey:   session.Broker.EncryptedAPIKey,
		IsActive:          true,
		AgreementID:       lo.ToPtr(newAgreement.ID),
		BaseModel:         types.GetDefaultBaseModel(ctx),
	}

	lockKey := types.GenerateLockKey(ctx, types.LockScopeEnrollment, map[string]interface{}{
		"user_id":      session.UserID,
		"service_name": session.ServiceName,
	})

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.DB.LockKey(txCtx, types.LockRequest{Key: lockKey}); err != nil {
			return err
		}

		limitFilter := types.NewNoLimitAgreementFilter()
		limitFilter.UserID = session.UserID
		limitFilter.ServiceNames = []string{session.ServiceName}
		limitFilter.AgreementStatuses = types.EnrollmentStatuses()
		count, err := s.AgreementRepo.Count(txCtx, limitFilter)
		if err != nil {
			return err
		}
		if count >= def.MaxInstancesPerUser {
			return ierr.NewError("enrollment limit reached").
				WithHintf("You already have %d of %d allowed enrollments for this service",
					count, def.MaxInstancesPerUser).
				Mark(ierr.ErrInvalidOperation)
		}

		if err := s.AgreementRepo.Create(txCtx, newAgreement); err != nil {
			return err
		}
		return s.BrokerAccountRepo.Create(txCtx, newBroker)
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Delete(ctx, enrollmentSessionKey(session.ID))

	s.Logger.Infow("confirmed enrollment",
		"agreement_id", newAgreement.ID,
		"broker_account_id", newBroker.ID,
		"user_id", session.UserID,
		"service_name", session.ServiceName,
	)

	s.sendConfirmationEmail(ctx, newAgreement, newBroker, def)

	return &dto.EnrollmentResultResponse{
		Agreement:     &dto.AgreementResponse{ServiceAgreement: newAgreement},
		BrokerAccount: dto.NewBrokerAccountResponse(newBroker),
	}, nil
}

func (s *enrollmentService) sendConfirmationEmail(ctx context.Context, a *agreement.ServiceAgreement, b *brokeraccount.BrokerAccount, def *catalog.ServiceDefinition) {
	if s.Email == nil {
		return
	}
	owner, err := s.UserRepo.Get(ctx, a.UserID)
	if err != nil {
		s.Logger.Warnw("skipping confirmation email, owner lookup failed",
			"user_id", a.UserID, "error", err)
		return
	}

	last4 := b.AccountNumber
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}

	_, err = s.Email.SendEmailWithTemplate(ctx, email.SendEmailWithTemplateRequest{
		ToAddress:    owner.Email,
		Subject:      fmt.Sprintf("Enrollment confirmed: %s", def.DisplayName),
		TemplatePath: "enrollment-confirmed.html",
		Data: map[string]interface{}{
			"full_name":            owner.FullName,
			"service_display_name": def.DisplayName,
			"signed_at":            a.SignedAt.Format(time.RFC1123),
			"account_last4":        last4,
		},
	})
	if err != nil {
		s.Logger.Warnw("failed to send confirmation email",
			"user_id", a.UserID, "error", err)
	}
}

func (s *enrollmentService) loadSession(ctx context.Context, sessionID string) (*enrollmentSession, *catalog.ServiceDefinition, error) {
	value, found := s.Cache.Get(ctx, enrollmentSessionKey(sessionID))
	if !found {
		return nil, nil, ierr.NewError("enrollment session not found").
			WithHint("The enrollment session has expired, start again").
			Mark(ierr.ErrNotFound)
	}
	session, ok := cache.UnmarshalCacheValue[enrollmentSession](value)
	if !ok {
		return nil, nil, ierr.NewError("enrollment session corrupted").
			WithHint("The enrollment session has expired, start again").
			Mark(ierr.ErrNotFound)
	}

	if session.UserID != types.GetUserID(ctx) {
		return nil, nil, ierr.NewError("enrollment session owned by another user").
			WithHint("The enrollment session has expired, start again").
			Mark(ierr.ErrPermissionDenied)
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		s.Cache.Delete(ctx, enrollmentSessionKey(sessionID))
		return nil, nil, ierr.NewError("enrollment session expired").
			WithHint("The enrollment session has expired, start again").
			Mark(ierr.ErrNotFound)
	}

	def, err := s.CatalogRepo.GetByName(ctx, session.ServiceName)
	if err != nil {
		return nil, nil, err
	}
	return session, def, nil
}

func (s *enrollmentService) saveSession(ctx context.Context, session *enrollmentSession) {
	ttl := time.Until(session.ExpiresAt)
	s.Cache.Set(ctx, enrollmentSessionKey(session.ID), session, ttl)
}

func (s *enrollmentService) toSessionResponse(session *enrollmentSession, def *catalog.ServiceDefinition) *dto.EnrollmentSessionResponse {
	resp := &dto.EnrollmentSessionResponse{
		SessionID:      session.ID,
		ServiceName:    session.ServiceName,
		ServiceVersion: session.ServiceVersion,
		CurrentStep:    session.Step,
		ScrolledToEnd:  session.ScrolledToEnd,
		ReadConfirmed:  session.ReadConfirmed,
		BrokerProvided: session.Broker != nil,
		ExpiresAt:      session.ExpiresAt,
	}
	if session.Step == types.EnrollmentStepAgreement {
		resp.AgreementText = def.AgreementText
	}

	resp.Acknowledgments = make([]dto.AcknowledgmentState, len(def.Acknowledgments))
	for i, ack := range def.Acknowledgments {
		resp.Acknowledgments[i] = dto.AcknowledgmentState{
			ID:       ack.ID,
			Text:     ack.Text,
			Required: ack.Required,
			Checked:  session.Acknowledged[ack.ID],
		}
	}
	return resp
}
