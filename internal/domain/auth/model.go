package auth

import (
	"time"

	"github.com/brokerdesk/brokerdesk/internal/types"
)

// Auth holds a user's credential record for the local provider. Token
// is the bcrypt hash of the password; the Supabase provider never
// stores credentials here.
type Auth struct {
	UserID    string             `json:"user_id"`
	Provider  types.AuthProvider `json:"provider"`
	Token     string             `json:"-"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Claims are the validated contents of a session token.
type Claims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
}

// RecoverySession marks a password-recovery token exchange. The UI
// must observe it before allowing a password reset.
type RecoverySession struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StepUpGrant is one elevated authorization, scoped to a purpose and a
// single resource, valid until ExpiresAt.
type StepUpGrant struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	Purpose    types.StepUpPurpose `json:"purpose"`
	ResourceID string              `json:"resource_id"`
	GrantedAt  time.Time           `json:"granted_at"`
	ExpiresAt  time.Time           `json:"expires_at"`
}

// Valid reports whether the grant covers (purpose, resourceID) now.
func (g *StepUpGrant) Valid(purpose types.StepUpPurpose, resourceID string, now time.Time) bool {
	return g.Purpose == purpose &&
		g.ResourceID == resourceID &&
		now.Before(g.ExpiresAt)
}
