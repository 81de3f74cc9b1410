// Package apierror defines the error taxonomy shared by the session
// manager and the entity stores: local validation failures, absence,
// the three transport failure classes, parse failures on embedded
// documents, and concurrent-mutation conflicts.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for policy decisions (what to show, whether
// to propagate).
type Kind int

const (
	// KindValidation is a local, pre-network structural validation failure.
	KindValidation Kind = iota + 1
	// KindNotFound is absence, not a failure.
	KindNotFound
	// KindConflict is a rejected concurrent mutation on the same key.
	KindConflict
	// KindHTTP is an error response received from the server.
	KindHTTP
	// KindNoResponse is a request that was sent but got no response.
	KindNoResponse
	// KindRequest is a request that could not be constructed or issued.
	KindRequest
	// KindParse is a malformed embedded document or response body.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindHTTP:
		return "http"
	case KindNoResponse:
		return "no_response"
	case KindRequest:
		return "request"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// APIError is the single error shape surfaced to callers. Message is
// human-readable and safe to show to the operator.
type APIError struct {
	Kind    Kind
	Message string
	Status  int      // HTTP status, only for KindHTTP
	Fields  []string // field-level messages, only for KindValidation
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Validation builds a field-level validation error. The joined field
// list is the message shown to the operator.
func Validation(fields []string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: strings.Join(fields, "; "),
		Fields:  fields,
	}
}

// NotFound marks absence of a resource.
func NotFound(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// Conflict marks a mutation rejected because another mutation on the
// same key is still in flight.
func Conflict(key string) *APIError {
	return &APIError{
		Kind:    KindConflict,
		Message: fmt.Sprintf("another operation on %q is in progress", key),
	}
}

// HTTP builds an error from a server error response. The message is
// taken from the body's message/error field when present, otherwise
// the per-operation fallback.
func HTTP(status int, body []byte, fallback string) *APIError {
	msg := MessageFromBody(body)
	if msg == "" {
		msg = fallback
	}
	return &APIError{
		Kind:    KindHTTP,
		Message: msg,
		Status:  status,
	}
}

// NoResponse marks a request that never produced a response.
func NoResponse(err error, fallback string) *APIError {
	return &APIError{Kind: KindNoResponse, Message: fallback, Err: err}
}

// Request marks a request that could not be constructed or issued.
func Request(err error, fallback string) *APIError {
	return &APIError{Kind: KindRequest, Message: fallback, Err: err}
}

// Parse marks a malformed embedded document or response body.
func Parse(err error, fallback string) *APIError {
	return &APIError{Kind: KindParse, Message: fallback, Err: err}
}

// KindOf returns the kind of err, or 0 when err is not an APIError.
func KindOf(err error) Kind {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// IsNotFound reports whether err represents absence.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// MessageFromBody extracts the server's message or error field from a
// JSON error body. Returns "" when the body carries neither.
func MessageFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
