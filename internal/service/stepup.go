package service

import (
	"context"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	"github.com/brokerdesk/brokerdesk/internal/auth"
	"github.com/brokerdesk/brokerdesk/internal/cache"
	domainAuth "github.com/brokerdesk/brokerdesk/internal/domain/auth"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// StepUpService manages narrowly-scoped, time-boxed elevation grants.
// A grant covers exactly one (purpose, resource) pair; revealing one
// broker's password never reveals another's.
type StepUpService interface {
	// Challenge re-verifies the caller's password and mints a grant.
	Challenge(ctx context.Context, req *dto.StepUpChallengeRequest) (*dto.StepUpGrantResponse, error)

	// HasValidGrant reports whether the caller holds a live grant for
	// the pair.
	HasValidGrant(ctx context.Context, purpose types.StepUpPurpose, resourceID string) bool

	// RevealCredentials returns the plaintext broker credentials,
	// gated on a live reveal grant for that exact account.
	RevealCredentials(ctx context.Context, brokerAccountID string) (*dto.RevealedCredentialsResponse, error)

	// GetBrokerAccount and ListBrokerAccounts serve the masked view;
	// no grant needed since secrets never leave the row encrypted.
	GetBrokerAccount(ctx context.Context, brokerAccountID string) (*dto.BrokerAccountResponse, error)
	ListBrokerAccounts(ctx context.Context) ([]*dto.BrokerAccountResponse, error)
}

type stepUpService struct {
	ServiceParams
}

// NewStepUpService creates a new step-up service.
func NewStepUpService(params ServiceParams) StepUpService {
	return &stepUpService{ServiceParams: params}
}

func (s *stepUpService) Challenge(ctx context.Context, req *dto.StepUpChallengeRequest) (*dto.StepUpGrantResponse, error) {
	if err := req.Purpose.Validate(); err != nil {
		return nil, err
	}

	userID := types.GetUserID(ctx)
	caller, err := s.UserRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var authInfo *domainAuth.Auth
	if s.AuthProvider.GetProvider() == types.AuthProviderLocal {
		authInfo, err = s.AuthRepo.GetAuthByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.AuthProvider.VerifyPassword(ctx, auth.AuthRequest{
		Email:    caller.Email,
		Password: req.Password,
	}, authInfo); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	grant := &domainAuth.StepUpGrant{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_STEPUP_GRANT),
		UserID:     userID,
		Purpose:    req.Purpose,
		ResourceID: req.ResourceID,
		GrantedAt:  now,
		ExpiresAt:  now.Add(s.Config.StepUp.Window()),
	}

	key := types.StepUpGrantKey(userID, grant.Purpose, grant.ResourceID)
	s.Cache.Set(ctx, key, grant, s.Config.StepUp.Window())

	s.Logger.Infow("granted step-up elevation",
		"grant_id", grant.ID,
		"user_id", userID,
		"purpose", grant.Purpose,
		"resource_id", grant.ResourceID,
	)

	return &dto.StepUpGrantResponse{
		GrantID:    grant.ID,
		Purpose:    grant.Purpose,
		ResourceID: grant.ResourceID,
		ExpiresAt:  grant.ExpiresAt,
	}, nil
}

func (s *stepUpService) HasValidGrant(ctx context.Context, purpose types.StepUpPurpose, resourceID string) bool {
	userID := types.GetUserID(ctx)
	value, found := s.Cache.Get(ctx, types.StepUpGrantKey(userID, purpose, resourceID))
	if !found {
		return false
	}
	grant, ok := cache.UnmarshalCacheValue[domainAuth.StepUpGrant](value)
	if !ok {
		return false
	}
	return grant.UserID == userID && grant.Valid(purpose, resourceID, time.Now().UTC())
}

func (s *stepUpService) RevealCredentials(ctx context.Context, brokerAccountID string) (*dto.RevealedCredentialsResponse, error) {
	broker, err := s.BrokerAccountRepo.Get(ctx, brokerAccountID)
	if err != nil {
		return nil, err
	}

	// Staff may reveal any account; customers only their own. Either
	// way the grant must name this exact account.
	if !types.GetUserRole(ctx).IsStaff() && broker.UserID != types.GetUserID(ctx) {
		return nil, ierr.NewError("broker account owned by another user").
			WithHint("You do not have access to this broker account").
			Mark(ierr.ErrPermissionDenied)
	}

	if !s.HasValidGrant(ctx, types.StepUpPurposeRevealBrokerCredentials, broker.ID) {
		return nil, ierr.NewError("no valid elevation grant").
			WithHint("Verify your password to reveal these credentials").
			WithReportableDetails(map[string]interface{}{
				"purpose":     types.StepUpPurposeRevealBrokerCredentials,
				"resource_id": broker.ID,
			}).
			Mark(ierr.ErrPermissionDenied)
	}

	password, err := s.Encryption.Decrypt(broker.EncryptedPassword)
	if err != nil {
		return nil, err
	}

	resp := &dto.RevealedCredentialsResponse{
		BrokerName:    broker.BrokerName,
		AccountNumber: broker.AccountNumber,
		Password:      password,
	}
	if broker.EncryptedAPIKey != nil {
		apiKey, err := s.Encryption.Decrypt(*broker.EncryptedAPIKey)
		if err != nil {
			return nil, err
		}
		resp.APIKey = &apiKey
	}

	s.Logger.Infow("revealed broker credentials",
		"broker_account_id", broker.ID,
		"requested_by", types.GetUserID(ctx),
	)
	return resp, nil
}

func (s *stepUpService) GetBrokerAccount(ctx context.Context, brokerAccountID string) (*dto.BrokerAccountResponse, error) {
	broker, err := s.BrokerAccountRepo.Get(ctx, brokerAccountID)
	if err != nil {
		return nil, err
	}
	if !types.GetUserRole(ctx).IsStaff() && broker.UserID != types.GetUserID(ctx) {
		return nil, ierr.NewError("broker account owned by another user").
			WithHint("You do not have access to this broker account").
			Mark(ierr.ErrPermissionDenied)
	}
	return dto.NewBrokerAccountResponse(broker), nil
}

func (s *stepUpService) ListBrokerAccounts(ctx context.Context) ([]*dto.BrokerAccountResponse, error) {
	accounts, err := s.BrokerAccountRepo.ListByUser(ctx, types.GetUserID(ctx))
	if err != nil {
		return nil, err
	}
	items := make([]*dto.BrokerAccountResponse, len(accounts))
	for i, b := range accounts {
		items[i] = dto.NewBrokerAccountResponse(b)
	}
	return items, nil
}
