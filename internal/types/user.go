package types

import ierr "github.com/brokerdesk/brokerdesk/internal/errors"

// UserRole is a user's access level across the portals.
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleSupport  UserRole = "support"
	UserRoleCustomer UserRole = "customer"
)

func (r UserRole) Validate() error {
	switch r {
	case UserRoleAdmin, UserRoleSupport, UserRoleCustomer:
		return nil
	default:
		return ierr.NewErrorf("invalid user role: %s", r).
			WithHint("Role must be admin, support or customer").
			Mark(ierr.ErrValidation)
	}
}

// IsStaff reports whether the role grants admin-portal access.
func (r UserRole) IsStaff() bool {
	return r == UserRoleAdmin || r == UserRoleSupport
}

// UserFilter represents the filter options for user listings.
type UserFilter struct {
	*QueryFilter
	UserIDs   []string   `json:"user_ids,omitempty" form:"user_ids"`
	Email     string     `json:"email,omitempty" form:"email"`
	Search    string     `json:"search,omitempty" form:"search"`
	Roles     []UserRole `json:"roles,omitempty" form:"roles"`
	Suspended *bool      `json:"suspended,omitempty" form:"suspended"`
}

// NewUserFilter creates a filter with default values.
func NewUserFilter() *UserFilter {
	return &UserFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *UserFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	for _, r := range f.Roles {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return f.QueryFilter.Validate()
}
