package domain

import "time"

// Subscription tiers. New registrations always start on TierFree; upgrades
// arrive from the billing service.
const (
	TierFree    = "free"
	TierPro     = "pro"
	TierPremium = "premium"
)

// User is the credential-store record for one identity. Users are never
// physically deleted; DeletedAt gates every lookup.
type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2id, PHC encoded
	FirstName    string
	LastName     string
	Phone        *string
	AvatarURL    *string

	EmailVerified          bool
	EmailVerificationToken *string

	PasswordResetToken   *string
	PasswordResetExpires *time.Time

	LastLogin           *time.Time
	SubscriptionTier    string
	SubscriptionExpires *time.Time
	Preferences         map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// PublicUser is the externally visible projection of a User. It never carries
// the password hash or any outstanding one-shot token.
type PublicUser struct {
	ID                  string         `json:"id"`
	Email               string         `json:"email"`
	FirstName           string         `json:"first_name"`
	LastName            string         `json:"last_name"`
	Phone               *string        `json:"phone,omitempty"`
	AvatarURL           *string        `json:"avatar_url,omitempty"`
	EmailVerified       bool           `json:"email_verified"`
	LastLogin           *time.Time     `json:"last_login,omitempty"`
	SubscriptionTier    string         `json:"subscription_tier"`
	SubscriptionExpires *time.Time     `json:"subscription_expires,omitempty"`
	Preferences         map[string]any `json:"preferences"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// Public returns the sanitized projection of u.
func (u User) Public() PublicUser {
	prefs := u.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	return PublicUser{
		ID:                  u.ID,
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Phone:               u.Phone,
		AvatarURL:           u.AvatarURL,
		EmailVerified:       u.EmailVerified,
		LastLogin:           u.LastLogin,
		SubscriptionTier:    u.SubscriptionTier,
		SubscriptionExpires: u.SubscriptionExpires,
		Preferences:         prefs,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

// ProfileUpdate carries a partial profile mutation. Nil fields are left
// untouched.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	AvatarURL   *string
	Preferences map[string]any
}

// IsEmpty reports whether the update would change nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil &&
		p.AvatarURL == nil && p.Preferences == nil
}
