package agreement

import (
	"time"

	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// ServiceAgreement is one customer's enrollment in a service. Removal
// is a hard delete; there is no removed status.
type ServiceAgreement struct {
	ID                 string                `json:"id"`
	UserID             string                `json:"user_id"`
	ServiceName        string                `json:"service_name"`
	ServiceVersion     string                `json:"service_version"`
	ConfirmedFields    map[string]bool       `json:"confirmed_fields"`
	AgreedToTerms      bool                  `json:"agreed_to_terms"`
	AgreementHash      string                `json:"agreement_hash"`
	SignedAt           time.Time             `json:"signed_at"`
	ClientIP           string                `json:"client_ip,omitempty"`
	UserAgent          string                `json:"user_agent,omitempty"`
	AgreementStatus    types.AgreementStatus `json:"agreement_status"`
	CancelledAt        *time.Time            `json:"cancelled_at,omitempty"`
	CancellationReason *string               `json:"cancellation_reason,omitempty"`

	// Version guards concurrent mutations; conditional updates fail
	// with a version conflict when it is stale.
	Version int `json:"version"`

	types.BaseModel
}

// Validate validates the agreement.
func (a *ServiceAgreement) Validate() error {
	if a.UserID == "" {
		return ierr.NewError("user_id is required").
			WithHint("User is required").
			Mark(ierr.ErrValidation)
	}
	if a.ServiceName == "" {
		return ierr.NewError("service_name is required").
			WithHint("Service name is required").
			Mark(ierr.ErrValidation)
	}
	if !a.AgreedToTerms {
		return ierr.NewError("terms not accepted").
			WithHint("The service agreement must be accepted").
			Mark(ierr.ErrValidation)
	}
	return a.AgreementStatus.Validate()
}

// CanPause reports whether the agreement can move to paused.
func (a *ServiceAgreement) CanPause() bool {
	return a.AgreementStatus == types.AgreementStatusActive
}

// CanReactivate reports whether the agreement can move back to active.
func (a *ServiceAgreement) CanReactivate() bool {
	return a.AgreementStatus == types.AgreementStatusPaused
}

// CanRemove reports whether the agreement can be hard-deleted.
func (a *ServiceAgreement) CanRemove() bool {
	return a.AgreementStatus == types.AgreementStatusActive ||
		a.AgreementStatus == types.AgreementStatusPaused
}

// CountsTowardLimit reports whether the agreement consumes one of the
// user's allowed instances for its service.
func (a *ServiceAgreement) CountsTowardLimit() bool {
	return a.AgreementStatus == types.AgreementStatusActive ||
		a.AgreementStatus == types.AgreementStatusPaused
}
