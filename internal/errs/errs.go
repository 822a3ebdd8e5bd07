// Package errs defines the error taxonomy shared by services and the HTTP
// boundary. Every constructor returns a go-errors envelope carrying a
// category, an HTTP status and a stable text code so the boundary can map
// failures without inspecting message strings.
package errs

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to every envelope.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeAuth        = "AUTH_ERROR"
	CodeForbidden   = "FORBIDDEN"
	CodeNotFound    = "NOT_FOUND"
	CodeConflict    = "CONFLICT"
	CodeRateLimited = "RATE_LIMITED"
	CodeInternal    = "INTERNAL_ERROR"
)

// Client-facing messages.
const (
	MsgUserExists         = "User with this email already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgContactNotFound    = "Contact not found"
	MsgUserNotFound       = "User not found"
	MsgNoPermission       = "You do not have permission to access this resource"
	MsgUnauthorized       = "Unauthorized access"
	MsgInternal           = "Internal server error"
)

// Validation reports malformed input (400).
func Validation(message string) error {
	return newError(message, goerrors.CategoryValidation, http.StatusBadRequest, CodeValidation)
}

// Auth reports bad or missing credentials or token (401).
func Auth(message string) error {
	return newError(message, goerrors.CategoryAuth, http.StatusUnauthorized, CodeAuth)
}

// Forbidden reports an authenticated caller that may not touch the resource (403).
func Forbidden(message string) error {
	return newError(message, goerrors.CategoryAuthz, http.StatusForbidden, CodeForbidden)
}

// NotFound reports a missing entity (404).
func NotFound(message string) error {
	return newError(message, goerrors.CategoryNotFound, http.StatusNotFound, CodeNotFound)
}

// Conflict reports a duplicate unique field (409).
func Conflict(message string) error {
	return newError(message, goerrors.CategoryConflict, http.StatusConflict, CodeConflict)
}

// RateLimited reports a throttled caller (429).
func RateLimited(message string) error {
	return newError(message, goerrors.CategoryRateLimit, http.StatusTooManyRequests, CodeRateLimited)
}

// Internal wraps an unexpected failure (500). The cause is kept for logging
// but the client only ever sees MsgInternal.
func Internal(cause error) error {
	if cause == nil {
		return newError(MsgInternal, goerrors.CategoryInternal, http.StatusInternalServerError, CodeInternal)
	}
	return goerrors.Wrap(cause, goerrors.CategoryInternal, MsgInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(CodeInternal)
}

func newError(message string, category goerrors.Category, code int, textCode string) error {
	return goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
}

// As extracts the envelope from err, if any.
func As(err error) (*goerrors.Error, bool) {
	var rich *goerrors.Error
	if err == nil || !goerrors.As(err, &rich) {
		return nil, false
	}
	return rich, true
}

// StatusOf returns the HTTP status declared by err, or 500 when err carries
// no envelope.
func StatusOf(err error) int {
	if rich, ok := As(err); ok && rich.Code != 0 {
		return rich.Code
	}
	return http.StatusInternalServerError
}

// Is reports whether err is an envelope of the given text code.
func Is(err error, textCode string) bool {
	rich, ok := As(err)
	return ok && rich.TextCode == textCode
}
