package jwtx

import "errors"

var (
	// ErrNoSecret is returned when a signing secret has not been configured.
	// Callers must treat this as a fatal configuration problem, never as a
	// client error.
	ErrNoSecret = errors.New("jwtx: signing secret not configured")

	// ErrExpired is returned when a token's exp claim has passed. It is kept
	// distinct from ErrInvalid so callers can log the two cases differently,
	// even though both map to an unauthorized response.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrInvalid is returned for any token that fails signature or structural
	// validation.
	ErrInvalid = errors.New("jwtx: token invalid")
)
