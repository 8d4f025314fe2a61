package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error codes, one per failure class the API distinguishes.
const (
	CodeAuth       = "E401"
	CodeNotFound   = "E404"
	CodeValidation = "E400"
	CodeDatabase   = "E500"
	CodeBroadcast  = "E510"
)

// AppError carries the failure class alongside the underlying cause so the
// HTTP layer can map it to a status code and the error handler can decide
// whether it is worth a Sentry event.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// NewAuthError marks a request whose signature did not check out. Forged
// requests are expected traffic, so the severity stays low.
func NewAuthError(msg string) *AppError {
	return &AppError{
		Code:        CodeAuth,
		Message:     msg,
		UserMessage: "Authentication failed",
		Severity:    SeverityLow,
	}
}

// NewNotFoundError marks a settlement for a user that was never registered.
func NewNotFoundError(msg string) *AppError {
	return &AppError{
		Code:        CodeNotFound,
		Message:     msg,
		UserMessage: "User not found",
		Severity:    SeverityLow,
	}
}

// NewValidationError marks a malformed request body.
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        CodeValidation,
		Message:     msg,
		UserMessage: fmt.Sprintf("Invalid request. %s", msg),
		Severity:    SeverityLow,
	}
}

// NewDatabaseError wraps a storage failure.
func NewDatabaseError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        CodeDatabase,
		Message:     fmt.Sprintf("Database error: %s", underlyingMsg),
		UserMessage: "Temporary problem, try again later",
		Severity:    SeverityHigh,
		cause:       cause,
	}
}

// NewBroadcastError records a delivery failure for one connection. The hub
// handles it locally; it never reaches the round engine or other clients.
func NewBroadcastError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        CodeBroadcast,
		Message:     fmt.Sprintf("Broadcast delivery failed: %s", underlyingMsg),
		Severity:    SeverityMedium,
		cause:       cause,
	}
}
