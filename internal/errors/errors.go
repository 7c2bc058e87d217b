package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors used as marks. Every error produced by this package
// wraps exactly one of these so callers can classify with errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrPermissionDenied = errors.New("permission denied")
	ErrVersionConflict  = errors.New("version conflict")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrHTTPClient       = errors.New("http client error")
	ErrDatabase         = errors.New("database error")
	ErrSystem           = errors.New("system error")
)

// InternalError is the concrete error type carried through the
// application. It keeps an internal message (logged, never shown),
// a user-facing hint, optional reportable details and the mark used
// for classification.
type InternalError struct {
	mark    error
	err     error
	message string
	hint    string
	details map[string]interface{}
}

func (e *InternalError) Error() string {
	if e.err != nil {
		if e.message != "" {
			return fmt.Sprintf("%s: %s", e.message, e.err.Error())
		}
		return e.err.Error()
	}
	return e.message
}

// Unwrap exposes both the wrapped cause and the mark to errors.Is/As.
func (e *InternalError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.err != nil {
		out = append(out, e.err)
	}
	if e.mark != nil {
		out = append(out, e.mark)
	}
	return out
}

// Hint returns the user-facing hint, falling back to the message.
func (e *InternalError) Hint() string {
	if e.hint != "" {
		return e.hint
	}
	return e.message
}

// Details returns the reportable details attached to the error.
func (e *InternalError) Details() map[string]interface{} {
	return e.details
}

// Mark returns the sentinel this error was marked with.
func (e *InternalError) Mark() error {
	return e.mark
}

// ErrorBuilder accumulates error attributes before Mark seals them.
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts a builder from an internal message.
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{message: message}}
}

// NewErrorf starts a builder from a formatted internal message.
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return NewError(fmt.Sprintf(format, args...))
}

// WithError starts a builder wrapping an existing cause. If the cause
// is already an InternalError its hint, details and mark carry over so
// re-wrapping at call sites does not lose classification.
func WithError(err error) *ErrorBuilder {
	var ie *InternalError
	if errors.As(err, &ie) {
		return &ErrorBuilder{err: &InternalError{
			err:     err,
			hint:    ie.hint,
			details: ie.details,
			mark:    ie.mark,
		}}
	}
	return &ErrorBuilder{err: &InternalError{err: err}}
}

// WithHint sets the user-facing hint.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

// WithHintf sets a formatted user-facing hint.
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.err.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured details safe to return to
// the client alongside the hint.
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.err.details = details
	return b
}

// Mark seals the builder with a sentinel and returns the error.
func (b *ErrorBuilder) Mark(mark error) error {
	b.err.mark = mark
	return b.err
}

// Classification helpers.

func IsValidation(err error) bool       { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool    { return errors.Is(err, ErrAlreadyExists) }
func IsPermissionDenied(err error) bool { return errors.Is(err, ErrPermissionDenied) }
func IsVersionConflict(err error) bool  { return errors.Is(err, ErrVersionConflict) }
func IsInvalidOperation(err error) bool { return errors.Is(err, ErrInvalidOperation) }
func IsDatabase(err error) bool         { return errors.Is(err, ErrDatabase) }
func IsSystem(err error) bool           { return errors.Is(err, ErrSystem) }
