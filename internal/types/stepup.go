package types

import (
	"fmt"

	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
)

// StepUpPurpose scopes an elevated grant to a single kind of sensitive
// operation. Grants are keyed by (purpose, resource id) pairs, never a
// blanket "elevated" flag.
type StepUpPurpose string

const (
	// StepUpPurposeRevealBrokerCredentials gates plaintext broker
	// password and API key reads.
	StepUpPurposeRevealBrokerCredentials StepUpPurpose = "reveal_broker_credentials"
	// StepUpPurposeChangeEmail gates email change with identity
	// re-validation.
	StepUpPurposeChangeEmail StepUpPurpose = "change_email"
)

func (p StepUpPurpose) Validate() error {
	switch p {
	case StepUpPurposeRevealBrokerCredentials, StepUpPurposeChangeEmail:
		return nil
	default:
		return ierr.NewErrorf("invalid step-up purpose: %s", p).
			WithHint("Invalid step-up purpose").
			Mark(ierr.ErrValidation)
	}
}

// StepUpGrantKey builds the cache key for an elevated grant.
func StepUpGrantKey(userID string, purpose StepUpPurpose, resourceID string) string {
	return fmt.Sprintf("stepup:%s:%s:%s", userID, purpose, resourceID)
}
