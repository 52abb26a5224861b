package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

var ErrDriver = fmt.Errorf("driver error")
var ErrAuthentication = fmt.Errorf("authentication failed")
var ErrConnection = fmt.Errorf("connection error")
var ErrObjectNotFound = fmt.Errorf("object not found")
var ErrFieldNotFound = fmt.Errorf("field not found")
var ErrQuerySyntax = fmt.Errorf("query syntax error")
var ErrRateLimit = fmt.Errorf("rate limit exceeded")
var ErrValidation = fmt.Errorf("validation error")
var ErrTimeout = fmt.Errorf("request timed out")
var ErrPayloadTooLarge = fmt.Errorf("payload too large")

type driverError struct {
	msg     string
	target  error
	details map[string]any
}

func (e *driverError) Error() string { return e.msg }
func (e *driverError) Is(target error) bool {
	return target == e.target || target == ErrDriver
}

func NewDriverError(msg string, details map[string]any) error {
	return &driverError{msg: msg, target: ErrDriver, details: details}
}

func NewAuthenticationError(msg string, details map[string]any) error {
	return &driverError{msg: msg, target: ErrAuthentication, details: details}
}

func NewConnectionError(msg string, details map[string]any) error {
	return &driverError{msg: msg, target: ErrConnection, details: details}
}

func NewObjectNotFoundError(msg string, details map[string]any) error {
	return &driverError{msg: msg, target: ErrObjectNotFound, details: details}
}

func NewFieldNotFoundError(msg string, details map[string]any) error {
	return &driverError{msg: msg, target: ErrFieldNotFound, details: details}
}

func NewQuerySyntaxError(msg string, details map[string]any) error {
	return &driverError{msg: msg, target: ErrQuerySyntax, details: details}
}

func NewRateLimitError(msg string, details map[string]any) error {
	return &driverError{msg: msg, target: ErrRateLimit, details: details}
}

func NewValidationError(msg string, details map[string]any) error {
	return &driverError{msg: msg, target: ErrValidation, details: details}
}

func NewTimeoutError(msg string, details map[string]any) error {
	return &driverError{msg: msg, target: ErrTimeout, details: details}
}

func NewPayloadTooLargeError(msg string, details map[string]any) error {
	return &driverError{msg: msg, target: ErrPayloadTooLarge, details: details}
}

// Details returns the structured details attached to a driver error,
// or nil if the error does not carry any.
func Details(err error) map[string]any {
	de := &driverError{}
	if errors.As(err, &de) {
		return de.details
	}
	return nil
}

// NewErrorFromResponse maps a non-2xx response from any of the API
// endpoints to the matching driver error. The retryAfter argument is the
// value of the Retry-After header, if any, and operation is a short
// description of what the client was doing at the time.
func NewErrorFromResponse(code int, retryAfter, operation string, body []byte) error {
	msg := messageFromBody(body)

	details := map[string]any{
		"status_code":  code,
		"context":      operation,
		"api_response": msg,
	}

	if code == http.StatusUnauthorized {
		details["suggestion"] = "Check your API key and secret key"
		return NewAuthenticationError(
			fmt.Sprintf("Authentication failed: %s", msg), details,
		)
	}

	if code == http.StatusBadRequest {
		return NewValidationError(
			fmt.Sprintf("Validation failed: %s", msg), details,
		)
	}

	if code == http.StatusRequestEntityTooLarge {
		return NewPayloadTooLargeError(
			fmt.Sprintf("Request payload too large: %s", msg), details,
		)
	}

	if code == http.StatusTooManyRequests {
		seconds, err := strconv.Atoi(retryAfter)
		if err != nil || seconds < 0 {
			seconds = 60
		}
		details["retry_after"] = seconds
		return NewRateLimitError(
			fmt.Sprintf("API rate limit exceeded: %s. Retry after %d seconds.", msg, seconds),
			details,
		)
	}

	if code >= http.StatusInternalServerError {
		return NewConnectionError(
			fmt.Sprintf("API server error: %s", msg), details,
		)
	}

	return NewDriverError(
		fmt.Sprintf("API request failed: %s", msg), details,
	)
}

func messageFromBody(body []byte) string {
	report := &struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}{}

	if err := json.Unmarshal(body, report); err != nil {
		excerpt := string(body)
		if len(excerpt) > 500 {
			excerpt = excerpt[:500]
		}
		return excerpt
	}

	if report.Error != "" {
		return report.Error
	}

	if report.Message != "" {
		return report.Message
	}

	return "Unknown error"
}
