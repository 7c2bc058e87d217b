package dto

import (
	"github.com/brokerdesk/brokerdesk/internal/domain/agreement"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// AgreementResponse is the API shape of a service agreement.
type AgreementResponse struct {
	*agreement.ServiceAgreement
}

// ListAgreementsResponse is the paginated agreement listing.
type ListAgreementsResponse = types.ListResponse[*AgreementResponse]

// PauseAgreementRequest pauses an active agreement. Version is the
// version the caller last read; a stale value is rejected.
type PauseAgreementRequest struct {
	Version int    `json:"version"`
	Reason  string `json:"reason,omitempty"`
}

// ReactivateAgreementRequest resumes a paused agreement.
type ReactivateAgreementRequest struct {
	Version int `json:"version"`
}

// RemoveAgreementRequest hard-deletes an agreement and releases its
// broker account link.
type RemoveAgreementRequest struct {
	Version int    `json:"version"`
	Reason  string `json:"reason,omitempty"`
}
