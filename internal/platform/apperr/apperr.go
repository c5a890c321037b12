// Package apperr defines the error kinds surfaced by the clinic engine and
// their mapping onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies an engine failure.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindInvalidInput      Kind = "invalid_input"
	KindDuplicate         Kind = "duplicate"
)

// Sentinels for errors.Is checks against a kind.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrDuplicate         = &Error{Kind: KindDuplicate}
)

// Error is a classified engine error. ID names the entity the failure is
// about; Field names the offending input for KindInvalidInput.
type Error struct {
	Kind    Kind
	ID      string
	Field   string
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Message == "":
		return string(e.Kind)
	case e.ID != "":
		return fmt.Sprintf("%s: %s", e.Message, e.ID)
	default:
		return e.Message
	}
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of the id or message carried.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NotFound(id, msg string) *Error {
	return &Error{Kind: KindNotFound, ID: id, Message: msg}
}

func InvalidTransition(id, msg string) *Error {
	return &Error{Kind: KindInvalidTransition, ID: id, Message: msg}
}

// InvalidInput reports a field whose value failed validation.
func InvalidInput(field, value string) *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Field:   field,
		Message: fmt.Sprintf("invalid value for field: %s = %s", field, value),
	}
}

func Duplicate(id string) *Error {
	return &Error{Kind: KindDuplicate, ID: id, Message: "entity already exists"}
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps err onto a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindDuplicate:
		return http.StatusConflict
	case KindInvalidInput:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ToHTTP converts err into an echo.HTTPError with the mapped status.
func ToHTTP(err error) *echo.HTTPError {
	return echo.NewHTTPError(HTTPStatus(err), err.Error())
}
