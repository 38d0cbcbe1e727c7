package domain

// TokenPair is what login/register/refresh return: a short-lived access JWT
// and a long-lived refresh JWT.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenPurpose partitions the one-shot token key space in the cache. The
// values double as key prefixes and must stay stable across deployments.
type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "verify_email"
	PurposeResetPassword TokenPurpose = "reset_password"
)

// ConsumeStatus is the outcome of attempting to consume a one-shot token.
// An explicit enum (rather than presence/absence of a cache key) keeps
// "wrong token" and "expired or never issued" distinguishable in tests and
// logs, even though both surface to clients as the same error.
type ConsumeStatus int

const (
	// ConsumeMissing: no token is outstanding (expired, already consumed,
	// or never issued).
	ConsumeMissing ConsumeStatus = iota
	// ConsumeMismatch: a token is outstanding but the presented value does
	// not match it. The outstanding token stays valid.
	ConsumeMismatch
	// Consumed: the presented token matched and has been atomically retired.
	Consumed
)

func (s ConsumeStatus) String() string {
	switch s {
	case ConsumeMissing:
		return "missing"
	case ConsumeMismatch:
		return "mismatch"
	case Consumed:
		return "consumed"
	default:
		return "unknown"
	}
}
