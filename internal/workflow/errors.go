package workflow

import "errors"

// Error codes
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeAlreadyDecided   = "ALREADY_DECIDED"
)

// Error is a user-facing workflow error. It is reported to the acting
// user and never changes stored state.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ErrUnreachable is returned by a Notifier when the recipient cannot be
// delivered to (e.g. the recipient blocked the bot). The state change
// that triggered the notification is already committed and is not rolled
// back; the failure is reported to the acting user instead.
var ErrUnreachable = errors.New("recipient unreachable")

// NewValidationError creates a validation error with custom message.
func NewValidationError(message string) *Error {
	return &Error{Code: CodeValidationFailed, Message: message}
}

// NewNotFound creates a not found error with custom message.
func NewNotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// NewAlreadyDecided creates an already-decided error with custom message.
func NewAlreadyDecided(message string) *Error {
	return &Error{Code: CodeAlreadyDecided, Message: message}
}
