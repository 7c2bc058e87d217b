package types

import ierr "github.com/brokerdesk/brokerdesk/internal/errors"

// EnrollmentStep is a state of the enrollment wizard. The wizard is
// strictly linear: Agreement → Acknowledge → Broker → Confirm.
type EnrollmentStep string

const (
	EnrollmentStepAgreement   EnrollmentStep = "agreement"
	EnrollmentStepAcknowledge EnrollmentStep = "acknowledge"
	EnrollmentStepBroker      EnrollmentStep = "broker"
	EnrollmentStepConfirm     EnrollmentStep = "confirm"
)

// enrollmentStepOrder fixes the linear wizard sequence.
var enrollmentStepOrder = map[EnrollmentStep]int{
	EnrollmentStepAgreement:   0,
	EnrollmentStepAcknowledge: 1,
	EnrollmentStepBroker:      2,
	EnrollmentStepConfirm:     3,
}

func (s EnrollmentStep) Validate() error {
	if _, ok := enrollmentStepOrder[s]; !ok {
		return ierr.NewErrorf("invalid enrollment step: %s", s).
			WithHint("Invalid enrollment step").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Index returns the step's position in the wizard sequence.
func (s EnrollmentStep) Index() int {
	return enrollmentStepOrder[s]
}

// Next returns the following step, or the same step at the end.
func (s EnrollmentStep) Next() EnrollmentStep {
	switch s {
	case EnrollmentStepAgreement:
		return EnrollmentStepAcknowledge
	case EnrollmentStepAcknowledge:
		return EnrollmentStepBroker
	case EnrollmentStepBroker:
		return EnrollmentStepConfirm
	default:
		return s
	}
}

// Prev returns the preceding step, or the same step at the start.
func (s EnrollmentStep) Prev() EnrollmentStep {
	switch s {
	case EnrollmentStepConfirm:
		return EnrollmentStepBroker
	case EnrollmentStepBroker:
		return EnrollmentStepAcknowledge
	case EnrollmentStepAcknowledge:
		return EnrollmentStepAgreement
	default:
		return s
	}
}
