package brokeraccount

import (
	"regexp"

	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

var accountNumberPattern = regexp.MustCompile(`^[0-9]+$`)

// BrokerAccount is a credential set optionally linked 1:1 to a service
// agreement. Password and API key are stored encrypted; plaintext only
// leaves the system through the step-up reveal flow.
type BrokerAccount struct {
	ID                string  `json:"id"`
	UserID            string  `json:"user_id"`
	BrokerName        string  `json:"broker_name"`
	AccountNumber     string  `json:"account_number"`
	EncryptedPassword string  `json:"-"`
	EncryptedAPIKey   *string `json:"-"`
	IsActive          bool    `json:"is_active"`
	AgreementID       *string `json:"agreement_id,omitempty"`
	types.BaseModel
}

// Validate validates the broker account.
func (b *BrokerAccount) Validate() error {
	if b.UserID == "" {
		return ierr.NewError("user_id is required").
			WithHint("User is required").
			Mark(ierr.ErrValidation)
	}
	if b.BrokerName == "" {
		return ierr.NewError("broker_name is required").
			WithHint("Broker selection is required").
			Mark(ierr.ErrValidation)
	}
	if !accountNumberPattern.MatchString(b.AccountNumber) {
		return ierr.NewError("account_number must be digits only").
			WithHint("Account number must contain digits only").
			Mark(ierr.ErrValidation)
	}
	if b.EncryptedPassword == "" {
		return ierr.NewError("password is required").
			WithHint("Account password is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}
