// Package apperr defines the error taxonomy shared by the HTTP handlers and
// the realtime delivery path, and its mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrNotFound - the appointment or message does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized - the acting identity is not a participant of the
	// appointment, or its declared role does not match the side it occupies.
	ErrUnauthorized = errors.New("not authorized")
	// ErrInvalidState - the appointment's status does not accept new messages.
	ErrInvalidState = errors.New("invalid appointment state")
	// ErrBroadcastMiss - the delivery path failed to locate the persisted
	// message within its retry budget. Logged server-side only.
	ErrBroadcastMiss = errors.New("message not found for broadcast")
)

// ValidationError reports malformed input with per-field detail.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validation builds a ValidationError for a single field.
func Validation(field, detail string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: detail}}
}

// HTTPStatus maps a taxonomy error to its HTTP status code. Unknown errors
// map to 500.
func HTTPStatus(err error) int {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	case errors.As(err, &ve):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
