package dto

import (
	"time"

	"github.com/brokerdesk/brokerdesk/internal/domain/brokeraccount"
	"github.com/brokerdesk/brokerdesk/internal/types"
)

// BrokerAccountResponse is the safe API shape of a broker account.
// Credentials never appear here; the reveal flow is the only way out.
type BrokerAccountResponse struct {
	ID            string    `json:"id"`
	BrokerName    string    `json:"broker_name"`
	AccountNumber string    `json:"account_number"`
	IsActive      bool      `json:"is_active"`
	AgreementID   *string   `json:"agreement_id,omitempty"`
	HasAPIKey     bool      `json:"has_api_key"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewBrokerAccountResponse maps the domain model to its API shape.
func NewBrokerAccountResponse(b *brokeraccount.BrokerAccount) *BrokerAccountResponse {
	return &BrokerAccountResponse{
		ID:            b.ID,
		BrokerName:    b.BrokerName,
		AccountNumber: b.AccountNumber,
		IsActive:      b.IsActive,
		AgreementID:   b.AgreementID,
		HasAPIKey:     b.EncryptedAPIKey != nil,
		CreatedAt:     b.CreatedAt,
	}
}

// RevealedCredentialsResponse is the step-up protected plaintext view.
type RevealedCredentialsResponse struct {
	BrokerName    string  `json:"broker_name"`
	AccountNumber string  `json:"account_number"`
	Password      string  `json:"password"`
	APIKey        *string `json:"api_key,omitempty"`
}

// StepUpChallengeRequest re-verifies the password to mint a grant for
// one (purpose, resource) pair.
type StepUpChallengeRequest struct {
	Password   string              `json:"password" binding:"required"`
	Purpose    types.StepUpPurpose `json:"purpose" binding:"required"`
	ResourceID string              `json:"resource_id" binding:"required"`
}

// StepUpGrantResponse is the minted elevation grant.
type StepUpGrantResponse struct {
	GrantID    string              `json:"grant_id"`
	Purpose    types.StepUpPurpose `json:"purpose"`
	ResourceID string              `json:"resource_id"`
	ExpiresAt  time.Time           `json:"expires_at"`
}
