package server

import (
	"encoding/json"
	"net/http"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound      = "https://brewdeck.io/problems/not-found"
	ProblemTypeBadRequest    = "https://brewdeck.io/problems/bad-request"
	ProblemTypeValidation    = "https://brewdeck.io/problems/validation-error"
	ProblemTypeInternal      = "https://brewdeck.io/problems/internal-error"
	ProblemTypeConflict      = "https://brewdeck.io/problems/conflict"
	ProblemTypeUnprocessable = "https://brewdeck.io/problems/unprocessable"
	ProblemTypeRateLimited   = "https://brewdeck.io/problems/rate-limited"
)

// Problem represents an RFC 7807 Problem Details response. Errors carries
// per-field validation messages when the problem is a validation failure.
type Problem struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// WriteProblem writes an RFC 7807 Problem Details JSON response.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: instance,
	})
}

// BadRequest writes a 400 problem response.
func BadRequest(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeBadRequest,
		Title:    "Bad Request",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: instance,
	})
}

// ValidationFailed writes a 400 problem response carrying field violations.
func ValidationFailed(w http.ResponseWriter, instance string, errors map[string]string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeValidation,
		Title:    "Validation failed",
		Status:   http.StatusBadRequest,
		Detail:   "one or more fields failed validation",
		Instance: instance,
		Errors:   errors,
	})
}

// Conflict writes a 409 problem response for optimistic-locking failures.
func Conflict(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeConflict,
		Title:    "Optimistic lock conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: instance,
	})
}

// Unprocessable writes a 422 problem response.
func Unprocessable(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeUnprocessable,
		Title:    "Unprocessable Entity",
		Status:   http.StatusUnprocessableEntity,
		Detail:   detail,
		Instance: instance,
	})
}

// InternalError writes a 500 problem response.
func InternalError(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: instance,
	})
}

// RateLimited writes a 429 problem response.
func RateLimited(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeRateLimited,
		Title:    "Too Many Requests",
		Status:   http.StatusTooManyRequests,
		Detail:   detail,
		Instance: instance,
	})
}
