package errors

import (
	"encoding/json"
	"net/http"
)

// APIError is the error body every endpoint shares: a code echoing the HTTP
// status and a human readable message under the error key, which is where
// client side error mapping looks for it.
type APIError struct {
	code    int
	message string
}

func NewInvalidAPIKey() *APIError {
	return &APIError{
		code:    http.StatusUnauthorized,
		message: "Invalid API key",
	}
}

// ReportInvalidAPIKey rejects the request the way the hosted endpoints do
// when the presented credentials are not accepted.
func ReportInvalidAPIKey(w http.ResponseWriter) {
	NewInvalidAPIKey().WriteResponse(w)
}

func NewInvalidRequest(message string) *APIError {
	return &APIError{
		code:    http.StatusBadRequest,
		message: message,
	}
}

func ReportInvalidRequest(w http.ResponseWriter, message string) {
	NewInvalidRequest(message).WriteResponse(w)
}

func NewPayloadTooLarge(message string) *APIError {
	return &APIError{
		code:    http.StatusRequestEntityTooLarge,
		message: message,
	}
}

func ReportPayloadTooLarge(w http.ResponseWriter, message string) {
	NewPayloadTooLarge(message).WriteResponse(w)
}

func NewNotFound(message string) *APIError {
	return &APIError{
		code:    http.StatusNotFound,
		message: message,
	}
}

func ReportNotFound(w http.ResponseWriter, message string) {
	NewNotFound(message).WriteResponse(w)
}

func NewInternalError(message string) *APIError {
	return &APIError{
		code:    http.StatusInternalServerError,
		message: message,
	}
}

func ReportInternalError(w http.ResponseWriter, message string) {
	NewInternalError(message).WriteResponse(w)
}

func (e *APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code  int    `json:"code"`
		Error string `json:"error"`
	}{
		Code:  e.code,
		Error: e.message,
	})
}

// WriteResponse writes the contents of this instance to a http.ResponseWriter
func (e *APIError) WriteResponse(w http.ResponseWriter) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(e.code)

	body, err := json.Marshal(e)
	if err == nil {
		w.Write(body)
	}
}
