// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Success bodies vary per route (a list of students, a message, a uuid),
// but every error body has the same envelope:
//
//	{ "status": "error", "error": "field Name is required" }
package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Status string constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Message is the body of most student responses.
type Message struct {
	Message string `json:"message"`
}

// Changes reports the outcome of an update or delete. Changes is the
// affected-row count and is always present, including on 404.
type Changes struct {
	Message string `json:"message"`
	Changes int64  `json:"changes"`
}

// WriteJSON writes v as JSON with the given HTTP status code.
//
// Order matters: Header() → WriteHeader() → body. Once WriteHeader is
// called the headers are locked.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// GeneralError wraps any Go error into the standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError converts validator field errors into a single
// human-readable Response, e.g.
//
//	{ "status": "error", "error": "field Name is required, field Timestamp is required" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}
