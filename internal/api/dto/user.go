package dto

import (
	"github.com/brokerdesk/brokerdesk/internal/domain/user"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// SignUpRequest registers a new customer account.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
	Token    string `json:"token"`
	FullName string `json:"full_name"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the session token after sign up or login.
type AuthResponse struct {
	Token  string         `json:"token"`
	UserID string         `json:"user_id"`
	Email  string         `json:"email"`
	Role   types.UserRole `json:"role"`
}

// UpdateUserRequest mutates profile fields.
type UpdateUserRequest struct {
	FullName       *string              `json:"full_name,omitempty"`
	Phone          *string              `json:"phone,omitempty"`
	BillingAddress *user.BillingAddress `json:"billing_address,omitempty"`
	Metadata       map[string]string    `json:"metadata,omitempty"`
}

// AssignRoleRequest changes a user's role. Staff only; admins cannot
// remove their own admin role.
type AssignRoleRequest struct {
	Role types.UserRole `json:"role" binding:"required"`
}

// SuspendUserRequest suspends or restores an account.
type SuspendUserRequest struct {
	Suspended bool `json:"suspended"`
}

// PasswordRecoveryRequest starts the recovery flow.
type PasswordRecoveryRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UserResponse is the API shape of a user.
type UserResponse struct {
	*user.User
}

// ListUsersResponse is the paginated user listing.
type ListUsersResponse = types.ListResponse[*UserResponse]
