package utils

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorKind classifies failures crossing the repository boundary.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindValidation        ErrorKind = "validation_failure"
	KindIllegalTransition ErrorKind = "illegal_transition"
	KindStorage           ErrorKind = "storage_failure"
	KindConflict          ErrorKind = "conflict"
	KindUnauthorized      ErrorKind = "unauthorized"
)

// AppError is the only error type handlers need to understand. Fields carries
// per-field messages for validation failures.
type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		msg = msg + " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on kind alone, e.g. errors.Is(err, &AppError{Kind: KindNotFound}).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

func NotFound(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func FieldError(field, message string) *AppError {
	return Validation(map[string]string{field: message})
}

func IllegalTransition(from, to string) *AppError {
	return &AppError{
		Kind:    KindIllegalTransition,
		Message: fmt.Sprintf("cannot move order from %s to %s", from, to),
	}
}

func Storage(op string, err error) *AppError {
	return &AppError{Kind: KindStorage, Message: op, Err: err}
}

func Conflict(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

// KindOf returns the kind of the first AppError in err's chain, or "" for
// errors that never passed through a repository.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindIllegalTransition, KindConflict:
		return http.StatusConflict
	case KindStorage:
		return http.StatusServiceUnavailable
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage is the text shown to the owner for each kind.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindNotFound:
		return "The requested record does not exist"
	case KindValidation:
		return "Some fields are invalid"
	case KindIllegalTransition:
		return "This order cannot be moved to that status"
	case KindStorage:
		return "Storage is unavailable, please try again"
	case KindConflict:
		return "The record was changed by someone else"
	case KindUnauthorized:
		return "Please sign in again"
	default:
		return "Something went wrong"
	}
}
