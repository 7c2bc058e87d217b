package service

import (
	"context"
	"fmt"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	"github.com/brokerdesk/brokerdesk/internal/domain/agreement"
	"github.com/brokerdesk/brokerdesk/internal/email"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/samber/lo"
)

// LifecycleService mutates existing agreements: pause, reactivate,
// remove. Every mutation keeps the linked broker account's is_active
// flag consistent with the agreement status, inside one transaction.
type LifecycleService interface {
	GetAgreement(ctx context.Context, agreementID string) (*dto.AgreementResponse, error)
	ListAgreements(ctx context.Context, filter *types.AgreementFilter) (*dto.ListAgreementsResponse, error)
	Pause(ctx context.Context, agreementID string, req *dto.PauseAgreementRequest) (*dto.AgreementResponse, error)
	Reactivate(ctx context.Context, agreementID string, req *dto.ReactivateAgreementRequest) (*dto.AgreementResponse, error)
	Remove(ctx context.Context, agreementID string, req *dto.RemoveAgreementRequest) error
}

type lifecycleService struct {
	ServiceParams
}

// NewLifecycleService creates a new lifecycle service.
func NewLifecycleService(params ServiceParams) LifecycleService {
	return &lifecycleService{ServiceParams: params}
}

func (s *lifecycleService) GetAgreement(ctx context.Context, agreementID string) (*dto.AgreementResponse, error) {
	a, err := s.getOwned(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	return &dto.AgreementResponse{ServiceAgreement: a}, nil
}

func (s *lifecycleService) ListAgreements(ctx context.Context, filter *types.AgreementFilter) (*dto.ListAgreementsResponse, error) {
	if filter == nil {
		filter = types.NewAgreementFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	// Customers only ever see their own agreements.
	if !types.GetUserRole(ctx).IsStaff() {
		filter.UserID = types.GetUserID(ctx)
	}

	agreements, err := s.AgreementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.AgreementRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AgreementResponse, len(agreements))
	for i, a := range agreements {
		items[i] = &dto.AgreementResponse{ServiceAgreement: a}
	}
	return &dto.ListAgreementsResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

// Pause moves an active agreement to paused and deactivates the linked
// broker account. Pausing an already-paused agreement is a no-op.
func (s *lifecycleService) Pause(ctx context.Context, agreementID string, req *dto.PauseAgreementRequest) (*dto.AgreementResponse, error) {
	a, err := s.getOwned(ctx, agreementID)
	if err != nil {
		return nil, err
	}

	if a.AgreementStatus == types.AgreementStatusPaused {
		return &dto.AgreementResponse{ServiceAgreement: a}, nil
	}
	if !a.CanPause() {
		return nil, ierr.NewError("agreement cannot be paused").
			WithHintf("A %s agreement cannot be paused", a.AgreementStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	a.AgreementStatus = types.AgreementStatusPaused
	a.CancelledAt = lo.ToPtr(now)
	if req.Reason != "" {
		a.CancellationReason = lo.ToPtr(req.Reason)
	}
	a.UpdatedAt = now
	a.UpdatedBy = types.GetUserID(ctx)

	err = s.withAgreementLock(ctx, a, func(txCtx context.Context) error {
		if err := s.AgreementRepo.Update(txCtx, a, req.Version); err != nil {
			return err
		}
		return s.setBrokerActive(txCtx, a.ID, false)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("paused agreement",
		"agreement_id", a.ID,
		"user_id", a.UserID,
		"reason", req.Reason,
	)
	s.notifyLifecycle(ctx, a, "service-paused.html", "Service paused")

	return &dto.AgreementResponse{ServiceAgreement: a}, nil
}

// Reactivate is the inverse of Pause. Reactivating an already-active
// agreement is a no-op in observable effect.
func (s *lifecycleService) Reactivate(ctx context.Context, agreementID string, req *dto.ReactivateAgreementRequest) (*dto.AgreementResponse, error) {
	a, err := s.getOwned(ctx, agreementID)
	if err != nil {
		return nil, err
	}

	if a.AgreementStatus == types.AgreementStatusActive {
		return &dto.AgreementResponse{ServiceAgreement: a}, nil
	}
	if !a.CanReactivate() {
		return nil, ierr.NewError("agreement cannot be reactivated").
			WithHintf("A %s agreement cannot be reactivated", a.AgreementStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	a.AgreementStatus = types.AgreementStatusActive
	a.CancelledAt = nil
	a.CancellationReason = nil
	a.UpdatedAt = time.Now().UTC()
	a.UpdatedBy = types.GetUserID(ctx)

	err = s.withAgreementLock(ctx, a, func(txCtx context.Context) error {
		if err := s.AgreementRepo.Update(txCtx, a, req.Version); err != nil {
			return err
		}
		return s.setBrokerActive(txCtx, a.ID, true)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("reactivated agreement",
		"agreement_id", a.ID,
		"user_id", a.UserID,
	)
	return &dto.AgreementResponse{ServiceAgreement: a}, nil
}

// Remove hard-deletes the agreement and its broker account together.
// Both rows go in one transaction; there is no path that loses the
// broker credentials while the agreement survives.
func (s *lifecycleService) Remove(ctx context.Context, agreementID string, req *dto.RemoveAgreementRequest) error {
	a, err := s.getOwned(ctx, agreementID)
	if err != nil {
		return err
	}

	if !a.CanRemove() {
		return ierr.NewError("agreement cannot be removed").
			WithHintf("A %s agreement cannot be removed", a.AgreementStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	err = s.withAgreementLock(ctx, a, func(txCtx context.Context) error {
		// Re-read under the lock; a writer may have committed between
		// the ownership check above and the lock being granted.
		current, err := s.AgreementRepo.Get(txCtx, a.ID)
		if err != nil {
			return err
		}
		if current.Version != req.Version {
			return ierr.NewError("agreement was modified concurrently").
				WithHint("The agreement changed while you were working on it, reload and retry").
				WithReportableDetails(map[string]interface{}{
					"agreement_id":     current.ID,
					"expected_version": req.Version,
					"current_version":  current.Version,
				}).
				Mark(ierr.ErrVersionConflict)
		}

		broker, err := s.BrokerAccountRepo.GetByAgreementID(txCtx, current.ID)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}
		if broker != nil {
			if err := s.BrokerAccountRepo.Delete(txCtx, broker); err != nil {
				return err
			}
		}
		return s.AgreementRepo.Delete(txCtx, current)
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("removed agreement",
		"agreement_id", a.ID,
		"user_id", a.UserID,
		"reason", req.Reason,
	)
	return nil
}

// getOwned loads the agreement and enforces ownership: customers can
// only touch their own rows, staff can touch any.
func (s *lifecycleService) getOwned(ctx context.Context, agreementID string) (*agreement.ServiceAgreement, error) {
	a, err := s.AgreementRepo.Get(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if !types.GetUserRole(ctx).IsStaff() && a.UserID != types.GetUserID(ctx) {
		return nil, ierr.NewError("agreement owned by another user").
			WithHint("You do not have access to this agreement").
			Mark(ierr.ErrPermissionDenied)
	}
	return a, nil
}

func (s *lifecycleService) withAgreementLock(ctx context.Context, a *agreement.ServiceAgreement, fn func(ctx context.Context) error) error {
	lockKey := types.GenerateLockKey(ctx, types.LockScopeAgreement, map[string]interface{}{
		"agreement_id": a.ID,
	})
	return s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.DB.LockKey(txCtx, types.LockRequest{Key: lockKey}); err != nil {
			return err
		}
		return fn(txCtx)
	})
}

// setBrokerActive syncs the linked broker account's active flag. An
// agreement without a linked account is legal; nothing to sync then.
func (s *lifecycleService) setBrokerActive(ctx context.Context, agreementID string, active bool) error {
	broker, err := s.BrokerAccountRepo.GetByAgreementID(ctx, agreementID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil
		}
		return err
	}

	if broker.IsActive == active {
		return nil
	}
	broker.IsActive = active
	broker.UpdatedAt = time.Now().UTC()
	broker.UpdatedBy = types.GetUserID(ctx)
	return s.BrokerAccountRepo.Update(ctx, broker)
}

func (s *lifecycleService) notifyLifecycle(ctx context.Context, a *agreement.ServiceAgreement, template, subject string) {
	if s.Email == nil {
		return
	}
	owner, err := s.UserRepo.Get(ctx, a.UserID)
	if err != nil {
		s.Logger.Warnw("skipping lifecycle email, owner lookup failed",
			"user_id", a.UserID, "error", err)
		return
	}

	def, err := s.CatalogRepo.GetByName(ctx, a.ServiceName)
	displayName := a.ServiceName
	if err == nil {
		displayName = def.DisplayName
	}

	_, err = s.Email.SendEmailWithTemplate(ctx, email.SendEmailWithTemplateRequest{
		ToAddress:    owner.Email,
		Subject:      fmt.Sprintf("%s: %s", subject, displayName),
		TemplatePath: template,
		Data: map[string]interface{}{
			"full_name":            owner.FullName,
			"service_display_name": displayName,
		},
	})
	if err != nil {
		s.Logger.Warnw("failed to send lifecycle email",
			"user_id", a.UserID, "error", err)
	}
}
