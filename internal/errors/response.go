package errors

import (
	"errors"
	"net/http"
)

// ErrorResponse is the JSON body rendered for failed requests.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// ErrorDetail carries the user-safe part of an error.
type ErrorDetail struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewErrorResponse builds the response body for an error. Internal
// messages are never exposed; only the hint and reportable details.
func NewErrorResponse(err error) *ErrorResponse {
	detail := &ErrorDetail{Message: "An unexpected error occurred"}

	var ie *InternalError
	if errors.As(err, &ie) {
		if hint := ie.Hint(); hint != "" {
			detail.Message = hint
		}
		detail.Details = ie.Details()
	}

	return &ErrorResponse{Success: false, Error: detail}
}

// HTTPStatusFromErr maps an error mark to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err), IsVersionConflict(err):
		return http.StatusConflict
	case IsPermissionDenied(err):
		return http.StatusForbidden
	case IsInvalidOperation(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
