package dto

import "github.com/brokerdesk/brokerdesk/internal/types"

// EntitlementResponse is the computed relationship between one user
// and one catalog service. The UI renders State and Action directly.
type EntitlementResponse struct {
	ServiceName string                 `json:"service_name"`
	DisplayName string                 `json:"display_name"`
	State       types.EntitlementState `json:"state"`

	// AgreementID is the first matching agreement by signing time,
	// then id. Empty when State is available.
	AgreementID string `json:"agreement_id,omitempty"`

	EnrollmentCount int                     `json:"enrollment_count"`
	MaxInstances    int                     `json:"max_instances"`
	AtLimit         bool                    `json:"at_limit"`
	Action          types.EntitlementAction `json:"action"`
}
