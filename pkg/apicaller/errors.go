package apicaller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Static errors for err113 compliance.
var (
	// ErrCallFailed matches every *CallError.
	ErrCallFailed = errors.New("API call failed")
	// ErrTransport wraps failures where no HTTP response was received.
	ErrTransport = errors.New("transport failure")
	// ErrUnsupportedMethod is returned for verbs other than GET, POST, PUT, PATCH and DELETE.
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
	// ErrUnknownField matches every *AttributeError.
	ErrUnknownField = errors.New("unknown field")
	// ErrFieldNotReturned is returned when a retrieve did not include a recognized field.
	ErrFieldNotReturned = errors.New("field not returned by the API")
	// ErrUnexpectedPayload is returned when a record retrieve does not yield a JSON object.
	ErrUnexpectedPayload = errors.New("unexpected response payload")
	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("invalid endpoint configuration")
	// ErrMissingItem is returned when a detail operation has no item endpoint.
	ErrMissingItem = errors.New("no item endpoint declared")
	// ErrWrongKind is returned when an endpoint is used as a kind it was not declared as.
	ErrWrongKind = errors.New("wrong endpoint kind")
	// ErrNodeNotFound is returned when a child name is not declared.
	ErrNodeNotFound = errors.New("node not found")
	// ErrUnknownKind is returned for an unrecognized kind name.
	ErrUnknownKind = errors.New("unknown endpoint kind")
	// ErrUnknownTemplate is returned when a declaration extends an undeclared template.
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrTemplateCycle is returned when templates extend each other in a loop.
	ErrTemplateCycle = errors.New("template inheritance cycle")
	// ErrNoRoot is returned for a declaration document without a root endpoint.
	ErrNoRoot = errors.New("declaration has no root endpoint")
	// ErrMalformedPage matches every *PageError.
	ErrMalformedPage = errors.New("malformed page")
	// ErrDone signals the end of a collection pass.
	ErrDone = errors.New("no more items")
)

// CallError is returned when a call gets a non-2xx status, or a body that
// cannot be decoded as JSON in JSON mode.
type CallError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	// Err is the decode error, if decoding caused the failure.
	Err error
}

// Error implements the error interface.
func (e *CallError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d (%d bytes)", e.Method, e.URL, e.StatusCode, len(e.Body))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap exposes ErrCallFailed and the decode error.
func (e *CallError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCallFailed}
	}

	return []error{ErrCallFailed, e.Err}
}

// Decoded returns the body decoded as JSON, or as text if it is not JSON.
func (e *CallError) Decoded() any {
	var decoded any

	err := json.Unmarshal(e.Body, &decoded)
	if err != nil {
		return string(e.Body)
	}

	return decoded
}

// IsNotFound reports a 404 response.
func (e *CallError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports a 401 or 403 response.
func (e *CallError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// AttributeError is returned when reading a field a record does not recognize.
type AttributeError struct {
	Endpoint string
	Field    string
}

// Error implements the error interface.
func (e *AttributeError) Error() string {
	return fmt.Sprintf("%s has no field %q", e.Endpoint, e.Field)
}

// Unwrap returns ErrUnknownField.
func (e *AttributeError) Unwrap() error {
	return ErrUnknownField
}

// ConfigurationError is returned when an endpoint declaration cannot serve
// the requested use.
type ConfigurationError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("endpoint %s: %v", e.Endpoint, e.Err)
}

// Unwrap exposes ErrConfiguration and the specific cause.
func (e *ConfigurationError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}

// PageError is returned when a collection page does not have the declared shape.
type PageError struct {
	URL    string
	Key    string
	Reason string
}

// Error implements the error interface.
func (e *PageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("page %s: %s", e.URL, e.Reason)
	}

	return fmt.Sprintf("page %s: key %q: %s", e.URL, e.Key, e.Reason)
}

// Unwrap returns ErrMalformedPage.
func (e *PageError) Unwrap() error {
	return ErrMalformedPage
}

// IsNotFound checks if the error is a 404 call failure.
func IsNotFound(err error) bool {
	callErr := &CallError{}
	if errors.As(err, &callErr) {
		return callErr.IsNotFound()
	}

	return false
}

// IsUnauthorized checks if the error is a 401 or 403 call failure.
func IsUnauthorized(err error) bool {
	callErr := &CallError{}
	if errors.As(err, &callErr) {
		return callErr.IsUnauthorized()
	}

	return false
}

// StatusCode returns the HTTP status of a call failure, or 0.
func StatusCode(err error) int {
	callErr := &CallError{}
	if errors.As(err, &callErr) {
		return callErr.StatusCode
	}

	return 0
}
