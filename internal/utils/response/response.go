// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Success responses carry whatever shape the route returns (a student, a
// list, a message). Error responses always look like:
//
//	{ "detail": "Student not found" }
package response

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/aanand-mishra/student-management-api/internal/validation"
)

// Error is the body returned for every 4xx and 5xx response.
type Error struct {
	Detail string `json:"detail"`
}

// Message is the body returned by the health check and by delete.
type Message struct {
	Message string `json:"message"`
}

// WriteJSON writes data as JSON with the given HTTP status code.
//
// Order matters: Header() → WriteHeader() → body. Once WriteHeader is
// called, headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Detail builds an error body from a client-facing message.
func Detail(msg string) Error {
	return Error{Detail: msg}
}

// GeneralError wraps any Go error into the error body. Only use it for
// errors whose text is safe to show to clients, such as decode errors.
func GeneralError(err error) Error {
	return Error{Detail: err.Error()}
}

// ValidationError joins the per-field validation messages into one detail
// string:
//
//	{ "detail": "field name is required, field age must be less than or equal to 100" }
func ValidationError(errs validator.ValidationErrors) Error {
	return Error{Detail: strings.Join(validation.Messages(errs), ", ")}
}

// InternalError is the body for unexpected server failures. The cause is
// logged by the caller, never sent to the client.
func InternalError() Error {
	return Error{Detail: http.StatusText(http.StatusInternalServerError)}
}
