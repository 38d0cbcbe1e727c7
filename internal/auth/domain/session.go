package domain

import "time"

// Session is one row of the session ledger: a durable record of an issued
// refresh token plus its originating device context. The ledger stores only
// the SHA-256 fingerprint of the token, never the signed token itself.
//
// Invariant: a row exists if and only if its refresh token is (or recently
// was) redeemable. Rows are deleted on logout, rotation, explicit revocation,
// or the expiry sweep. Multiple concurrent rows per user are allowed
// (multi-device).
type Session struct {
	ID         string
	UserID     string
	TokenHash  string // fingerprint of the refresh token (base64url SHA-256)
	DeviceInfo map[string]any
	IPAddress  *string
	UserAgent  *string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// PublicSession is the projection returned by the session-listing endpoint.
// Token material is redacted by construction.
type PublicSession struct {
	ID         string         `json:"id"`
	DeviceInfo map[string]any `json:"device_info,omitempty"`
	IPAddress  *string        `json:"ip_address,omitempty"`
	UserAgent  *string        `json:"user_agent,omitempty"`
	ExpiresAt  time.Time      `json:"expires_at"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Public returns the sanitized projection of s.
func (s Session) Public() PublicSession {
	return PublicSession{
		ID:         s.ID,
		DeviceInfo: s.DeviceInfo,
		IPAddress:  s.IPAddress,
		UserAgent:  s.UserAgent,
		ExpiresAt:  s.ExpiresAt,
		CreatedAt:  s.CreatedAt,
	}
}
