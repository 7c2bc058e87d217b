package email

// SendEmailRequest is a plain-text email request.
type SendEmailRequest struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Subject     string `json:"subject"`
	Text        string `json:"text"`
}

// SendEmailResponse reports the outcome of a plain-text send.
type SendEmailResponse struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// SendEmailWithTemplateRequest is a templated email request.
type SendEmailWithTemplateRequest struct {
	FromAddress  string                 `json:"from_address"`
	ToAddress    string                 `json:"to_address"`
	Subject      string                 `json:"subject"`
	TemplatePath string                 `json:"template_path"`
	Data         map[string]interface{} `json:"data"`
}

// SendEmailWithTemplateResponse reports the outcome of a templated send.
type SendEmailWithTemplateResponse struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}
