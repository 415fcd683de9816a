package errprocess

import (
	"errors"

	"team_portal_service/pkg/logger"

	"go.uber.org/zap"
)

// Kind classifies an error for the HTTP boundary.
type Kind string

const (
	// KindUnauthenticated no identity resolved; rejected before chat logic
	KindUnauthenticated Kind = "unauthenticated"
	// KindForbidden caller is currently banned
	KindForbidden Kind = "forbidden"
	// KindRateLimited caller exceeded the trailing send window
	KindRateLimited Kind = "rate_limited"
	// KindInvalid content empty or over length after trimming
	KindInvalid Kind = "invalid"
	// KindStorage persistence unavailable; surfaced opaque to callers
	KindStorage Kind = "storage"
)

// Error carries a kind plus render-ready detail. Forbidden errors also carry
// the ban reason so the client can show it.
type Error struct {
	Kind   Kind
	Msg    string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Unauthenticated builds an unauthenticated error.
func Unauthenticated(msg string) error {
	return &Error{Kind: KindUnauthenticated, Msg: msg}
}

// Forbidden builds a banned-caller error carrying the ban reason.
func Forbidden(msg, reason string) error {
	return &Error{Kind: KindForbidden, Msg: msg, Reason: reason}
}

// RateLimited builds a rate-limit rejection. Not a caller bug.
func RateLimited(msg string) error {
	return &Error{Kind: KindRateLimited, Msg: msg}
}

// Invalid builds a content validation rejection.
func Invalid(msg string) error {
	return &Error{Kind: KindInvalid, Msg: msg}
}

// Storage logs the cause with full context and returns an error that the
// HTTP boundary renders as an opaque failure.
func Storage(msg string, cause error) error {
	logger.Log.Error(msg, zap.Error(cause))
	return &Error{Kind: KindStorage, Msg: msg, Err: cause}
}

// KindOf extracts the kind, or KindStorage for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// ReasonOf extracts the ban reason from a Forbidden error.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
