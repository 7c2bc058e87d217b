package user

import (
	"regexp"

	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

var zipPattern = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)

// BillingAddress is the customer's invoicing address.
type BillingAddress struct {
	Line1   string `json:"line1,omitempty"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

// Validate checks address fields that have a fixed shape.
func (a BillingAddress) Validate() error {
	if a.Zip != "" && !zipPattern.MatchString(a.Zip) {
		return ierr.NewError("malformed zip code").
			WithHint("ZIP code must be 5 digits, optionally followed by -XXXX").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// User is an account in either portal. Role decides which surfaces it
// can reach; customers only ever see their own rows.
type User struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	FullName         string            `json:"full_name"`
	Phone            string            `json:"phone,omitempty"`
	Role             types.UserRole    `json:"role"`
	Suspended        bool              `json:"suspended"`
	BillingAddress   BillingAddress    `json:"billing_address"`
	StripeCustomerID *string           `json:"stripe_customer_id,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	types.BaseModel
}

// Validate validates the user.
func (u *User) Validate() error {
	if u.Email == "" {
		return ierr.NewError("email is required").
			WithHint("Email is required").
			Mark(ierr.ErrValidation)
	}
	if err := u.Role.Validate(); err != nil {
		return err
	}
	return u.BillingAddress.Validate()
}
