package dto

import (
	"time"

	"github.com/brokerdesk/brokerdesk/internal/types"
)

// StartEnrollmentRequest opens a wizard session for one service.
type StartEnrollmentRequest struct {
	ServiceName string `json:"service_name" binding:"required"`
}

// AcknowledgmentState is one checklist entry plus whether the customer
// has checked it in the current session.
type AcknowledgmentState struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Required bool   `json:"required"`
	Checked  bool   `json:"checked"`
}

// EnrollmentSessionResponse is the wizard state returned after every
// step mutation.
type EnrollmentSessionResponse struct {
	SessionID       string                `json:"session_id"`
	ServiceName     string                `json:"service_name"`
	ServiceVersion  string                `json:"service_version"`
	CurrentStep     types.EnrollmentStep  `json:"current_step"`
	AgreementText   string                `json:"agreement_text,omitempty"`
	ScrolledToEnd   bool                  `json:"scrolled_to_end"`
	ReadConfirmed   bool                  `json:"read_confirmed"`
	Acknowledgments []AcknowledgmentState `json:"acknowledgments"`
	BrokerProvided  bool                  `json:"broker_provided"`
	ExpiresAt       time.Time             `json:"expires_at"`
}

// RecordScrollRequest reports the customer's scroll position inside
// the agreement view. The server decides whether it counts as read.
type RecordScrollRequest struct {
	ScrollTop    int `json:"scroll_top" binding:"min=0"`
	ScrollHeight int `json:"scroll_height" binding:"required,min=1"`
	ClientHeight int `json:"client_height" binding:"required,min=1"`
}

// SetReadConfirmationRequest toggles the "I have read" checkbox.
// Unchecking it re-blocks advancement even after a full scroll.
type SetReadConfirmationRequest struct {
	Checked bool `json:"checked"`
}

// SetAcknowledgmentRequest toggles one checklist entry.
type SetAcknowledgmentRequest struct {
	AcknowledgmentID string `json:"acknowledgment_id" binding:"required"`
	Checked          bool   `json:"checked"`
}

// BrokerCredentialsRequest captures the broker link for the session.
type BrokerCredentialsRequest struct {
	BrokerName    string `json:"broker_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	Password      string `json:"password" binding:"required"`
	APIKey        string `json:"api_key,omitempty"`
}

// AdvanceStepRequest moves the wizard forward or back one step.
type AdvanceStepRequest struct {
	Direction string `json:"direction" binding:"required,oneof=next back"`
}

// ConfirmEnrollmentRequest finishes the wizard. AgreedToTerms is the
// final explicit consent on the confirm step.
type ConfirmEnrollmentRequest struct {
	AgreedToTerms bool `json:"agreed_to_terms"`
}

// EnrollmentResultResponse is the committed enrollment.
type EnrollmentResultResponse struct {
	Agreement     *AgreementResponse     `json:"agreement"`
	BrokerAccount *BrokerAccountResponse `json:"broker_account"`
}
