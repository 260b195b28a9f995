// Package apperr defines the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies a failure independently of the transport
type Kind string

// Error kinds
const (
	KindNotFound       Kind = "NotFound"
	KindForbidden      Kind = "Forbidden"
	KindUnauthorized   Kind = "Unauthorized"
	KindInvalidRequest Kind = "InvalidRequest"
	KindConflict       Kind = "Conflict"
	KindInternal       Kind = "Internal"
)

// Error carries a kind, a user-safe message and an optional cause
type Error struct {
	Kind    Kind   // Taxonomy label
	Message string // Safe to show to clients
	Err     error  // Underlying cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing resource
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports an authenticated principal acting outside its rights
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports missing or invalid credentials
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Invalid reports malformed input
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a unique or referential constraint violation
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure
func Internal(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, Internal for anything unclassified
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries kind k
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// FromStorage translates a storage error into the taxonomy. notFound is the
// message used when the record does not exist.
func FromStorage(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Message: notFound, Err: err}
	case IsDuplicate(err):
		return &Error{Kind: KindConflict, Message: "resource already exists", Err: err}
	case IsForeignKey(err):
		return &Error{Kind: KindConflict, Message: "resource is still referenced", Err: err}
	}
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// IsDuplicate reports a unique constraint violation. gorm only maps it to
// ErrDuplicatedKey when TranslateError is enabled, so driver text is checked too.
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "unique constraint")
}

// IsForeignKey reports a foreign key violation
func IsForeignKey(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint")
}

// HTTPStatus maps a kind to the response status code
func HTTPStatus(k Kind) int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Message returns the client-safe message of err
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}
