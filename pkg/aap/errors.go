package aap

import (
	"errors"
	"fmt"
)

// Messages shown verbatim to end users.
const (
	InsufficientPrivilegesMessage = "Insufficient privileges. Please contact your administrator."
	RequestFailureMessage         = "Failed to process request"
	JobFailureFallbackMessage     = "Something went wrong. Please check the job output in the portal for logs."
)

// Static errors for err113 compliance.
var (
	//nolint:staticcheck // user-facing message
	ErrInsufficientPrivileges  = errors.New(InsufficientPrivilegesMessage)
	ErrProjectCreationFailed   = errors.New("Failed to create project") //nolint:staticcheck // user-facing message
	ErrJobExecutionFailed      = errors.New("JobExecutionFailed")
	ErrDuplicateCredentialType = errors.New("cannot assign multiple credentials of the same credential type")
	ErrNoTemplatesFound        = errors.New("no job templates found")
	ErrPollTimeout             = errors.New("timed out waiting for a terminal status")
	ErrInvalidPullPolicy       = errors.New("invalid pull policy, expected one of always, missing, never")
	ErrUnsupportedSCMType      = errors.New("unsupported SCM type, expected Github or Gitlab")
	ErrInvalidResourceName     = errors.New("invalid resource name")
	ErrMissingResourceID       = errors.New("resource id is required")
	ErrMissingTemplateID       = errors.New("job template id is required")
	ErrConfigRequired          = errors.New("config is required")
	ErrBaseURLRequired         = errors.New("AAP base URL is required")
	ErrTokenRequired           = errors.New("AAP token is required")
	ErrNoJobID                 = errors.New("launch response did not contain a job id")
)

// TransportError reports a failure that happened before any HTTP response
// was received (DNS, connection refused, TLS handshake).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteValidationError is an HTTP error whose body could be parsed into a
// message.
type RemoteValidationError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *RemoteValidationError) Error() string {
	return e.Message
}

// RequestFailureError is an HTTP error without a usable body.
type RequestFailureError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *RequestFailureError) Error() string {
	return RequestFailureMessage
}

// IsInsufficientPrivileges checks if the error is a 403 from AAP.
func IsInsufficientPrivileges(err error) bool {
	return errors.Is(err, ErrInsufficientPrivileges)
}

// IsTransportError checks if the error happened before a response was received.
func IsTransportError(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}

// StatusCode returns the HTTP status carried by err, or 0 when there is none.
func StatusCode(err error) int {
	if IsInsufficientPrivileges(err) {
		return 403
	}

	validationErr := &RemoteValidationError{}
	if errors.As(err, &validationErr) {
		return validationErr.StatusCode
	}

	failureErr := &RequestFailureError{}
	if errors.As(err, &failureErr) {
		return failureErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a 404 from AAP.
func IsNotFound(err error) bool {
	return StatusCode(err) == 404
}
