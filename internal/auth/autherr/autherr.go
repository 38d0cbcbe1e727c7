// Package autherr defines the closed error taxonomy of the auth service.
// Services return *Error values tagged with a Kind; the HTTP layer branches
// on the Kind rather than on message text.
package autherr

import (
	"errors"
	"fmt"
)

// Kind enumerates every failure class the service can produce.
type Kind int

const (
	// KindInternal covers store/cache failures and anything unexpected.
	// Details are logged with context but never exposed to the caller
	// outside of dev mode.
	KindInternal Kind = iota

	// KindConfiguration is fatal: a signing secret is unset. Never treated
	// as a client error.
	KindConfiguration

	// KindDuplicateEmail: registration against an existing non-deleted email.
	KindDuplicateEmail

	// KindInvalidCredentials is deliberately shared by "no such user" and
	// "wrong password" so responses cannot be used for user enumeration.
	KindInvalidCredentials

	// KindTokenInvalid: signature mismatch, malformed token, or a token that
	// fails the cache cross-check.
	KindTokenInvalid

	// KindTokenExpired: a structurally valid token past its expiry. Same
	// external status as KindTokenInvalid, logged differently.
	KindTokenExpired

	// KindOneTimeToken: a verification/reset token that is wrong, consumed,
	// or expired.
	KindOneTimeToken

	// KindNotFound: user/session lookups after authentication succeeded.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration_error"
	case KindDuplicateEmail:
		return "duplicate_email"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindTokenInvalid:
		return "token_invalid"
	case KindTokenExpired:
		return "token_expired"
	case KindOneTimeToken:
		return "invalid_or_expired_token"
	case KindNotFound:
		return "not_found"
	default:
		return "internal_error"
	}
}

// Error is a tagged failure. Message is safe to show to clients; Err is the
// wrapped cause and stays server-side.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error with the given kind and client-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an Error carrying a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Internal wraps an unexpected failure (store unavailable, marshalling, ...).
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf extracts the Kind from err, defaulting to KindInternal for
// untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf extracts the client-safe message from err. Untagged errors get
// a generic message so internals never leak to the caller.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
