package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ch1pu/agentinvest/internal/auth/autherr"
	"github.com/ch1pu/agentinvest/internal/auth/cache"
	"github.com/ch1pu/agentinvest/internal/auth/domain"
	"github.com/ch1pu/agentinvest/internal/auth/store"
	"github.com/ch1pu/agentinvest/pkg/cryptox"
	"github.com/ch1pu/agentinvest/pkg/idx"
	"github.com/ch1pu/agentinvest/pkg/jwtx"
	"github.com/ch1pu/agentinvest/pkg/slogx"
)

const DefaultOneTimeTokenTTL = time.Hour

// DeviceContext is the request-side session metadata recorded on the ledger
// row at issuance.
type DeviceContext struct {
	IPAddress  *string
	UserAgent  *string
	DeviceInfo map[string]any
}

type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
	Device    DeviceContext
}

type LoginParams struct {
	Email    string
	Password string
	Device   DeviceContext
}

// AuthResult is the outcome of register/login: the user plus a fresh token
// pair.
type AuthResult struct {
	User   domain.User
	Tokens domain.TokenPair
}

// AuthService coordinates registration, login, refresh rotation, logout, and
// the one-shot email-verification and password-reset flows across the
// credential store, the session ledger, and the token cache.
//
// The cache holds the single active refresh token per user; the ledger keeps
// one row per issued token. The two can transiently disagree, and that is
// tolerated: the cache is authoritative for refresh, the ledger for session
// listing.
type AuthService struct {
	Store      store.Store
	Cache      cache.TokenCache
	Tokens     *jwtx.Issuer
	RefreshTTL time.Duration
	OneTimeTTL time.Duration
	Notifier   Notifier
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

func (s *AuthService) oneTimeTTL() time.Duration {
	if s.OneTimeTTL > 0 {
		return s.OneTimeTTL
	}
	return DefaultOneTimeTokenTTL
}

// issuePair mints a fresh access+refresh pair for the user, records the
// refresh token in the cache slot, and writes the ledger row.
func (s *AuthService) issuePair(ctx context.Context, tx store.Store, user domain.User, device DeviceContext) (domain.TokenPair, error) {
	access, err := s.Tokens.IssueAccessToken(user.ID, user.Email, user.SubscriptionTier)
	if err != nil {
		return domain.TokenPair{}, mapIssuerError(err)
	}

	refresh, _, err := s.Tokens.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		return domain.TokenPair{}, mapIssuerError(err)
	}

	now := time.Now().UTC()
	session := domain.Session{
		ID:         idx.New().String(),
		UserID:     user.ID,
		TokenHash:  cryptox.FingerprintToken(refresh),
		DeviceInfo: device.DeviceInfo,
		IPAddress:  device.IPAddress,
		UserAgent:  device.UserAgent,
		ExpiresAt:  now.Add(s.refreshTTL()),
		CreatedAt:  now,
	}
	if err := tx.Sessions().CreateSession(ctx, session); err != nil {
		return domain.TokenPair{}, autherr.Internal(err)
	}

	if err := s.Cache.StoreRefreshToken(ctx, user.ID, refresh, s.refreshTTL()); err != nil {
		return domain.TokenPair{}, autherr.Internal(err)
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func mapIssuerError(err error) error {
	if errors.Is(err, jwtx.ErrNoSecret) {
		return autherr.Wrap(autherr.KindConfiguration, "token signing secret is not configured", err)
	}
	return autherr.Internal(err)
}

// Register creates a new account and signs it in. The fresh user starts on
// the free tier, unverified; a one-shot verification token is stored on the
// user row and cached, then handed to the notifier.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (AuthResult, error) {
	now := time.Now().UTC()

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return AuthResult{}, autherr.Internal(err)
	}

	verificationToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return AuthResult{}, autherr.Internal(err)
	}
	user := domain.User{
		ID:                     idx.New().String(),
		Email:                  p.Email,
		PasswordHash:           hash,
		FirstName:              p.FirstName,
		LastName:               p.LastName,
		Phone:                  p.Phone,
		EmailVerificationToken: &verificationToken,
		SubscriptionTier:       domain.TierFree,
		Preferences:            map[string]any{},
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return AuthResult{}, autherr.New(autherr.KindDuplicateEmail, "an account with this email already exists")
		}
		return AuthResult{}, autherr.Internal(err)
	}

	tokens, err := s.issuePair(ctx, s.Store, user, p.Device)
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.Cache.StoreOneTimeToken(ctx, domain.PurposeVerifyEmail, user.Email, verificationToken, s.oneTimeTTL()); err != nil {
		return AuthResult{}, autherr.Internal(err)
	}

	if err := s.Notifier.SendVerificationEmail(ctx, user.Email, verificationToken); err != nil {
		slogx.FromContext(ctx).Error("failed to send verification email",
			slog.String("email", user.Email), slog.Any("error", err))
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", user.ID))
	return AuthResult{User: user, Tokens: tokens}, nil
}

// Login authenticates by email+password and opens a new session. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, p LoginParams) (AuthResult, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// burn a hash comparison so the miss is not observably faster
			_ = cryptox.VerifyPassword(p.Password, cryptox.DummyHash)
			return AuthResult{}, autherr.New(autherr.KindInvalidCredentials, "invalid email or password")
		}
		return AuthResult{}, autherr.Internal(err)
	}

	if err := cryptox.VerifyPassword(p.Password, user.PasswordHash); err != nil {
		return AuthResult{}, autherr.New(autherr.KindInvalidCredentials, "invalid email or password")
	}

	if err := s.Store.Users().UpdateLastLogin(ctx, user.ID); err != nil {
		return AuthResult{}, autherr.Internal(err)
	}

	tokens, err := s.issuePair(ctx, s.Store, user, p.Device)
	if err != nil {
		return AuthResult{}, err
	}

	slogx.FromContext(ctx).Info("user logged in", slog.String("user_id", user.ID))
	return AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh rotates a refresh token: the presented token must carry a valid
// signature, be unexpired, and exactly match the user's cache slot. The
// cache compare-and-delete is the serialization point, so two concurrent
// calls with the same token yield at most one winner.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, device DeviceContext) (domain.TokenPair, error) {
	claims, err := s.Tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return domain.TokenPair{}, mapVerifyError(err)
	}

	ok, err := s.Cache.TakeRefreshToken(ctx, claims.UserID, refreshToken)
	if err != nil {
		return domain.TokenPair{}, autherr.Internal(err)
	}
	if !ok {
		return domain.TokenPair{}, autherr.New(autherr.KindTokenInvalid, "refresh token is no longer active")
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, autherr.New(autherr.KindTokenInvalid, "refresh token is no longer active")
		}
		return domain.TokenPair{}, autherr.Internal(err)
	}

	oldHash := cryptox.FingerprintToken(refreshToken)

	var tokens domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Sessions().DeleteSessionByTokenHash(ctx, oldHash); err != nil {
			return err
		}
		tokens, err = s.issuePair(ctx, tx, user, device)
		return err
	})
	if err != nil {
		var ae *autherr.Error
		if errors.As(err, &ae) {
			return domain.TokenPair{}, err
		}
		return domain.TokenPair{}, autherr.Internal(err)
	}

	slogx.FromContext(ctx).Debug("refresh token rotated", slog.String("user_id", user.ID))
	return tokens, nil
}

func mapVerifyError(err error) error {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return autherr.Wrap(autherr.KindTokenExpired, "refresh token has expired", err)
	case errors.Is(err, jwtx.ErrNoSecret):
		return autherr.Wrap(autherr.KindConfiguration, "token signing secret is not configured", err)
	default:
		return autherr.Wrap(autherr.KindTokenInvalid, "refresh token is invalid", err)
	}
}

// Logout closes the session behind a refresh token. It is idempotent: a
// second logout with the same token verifies fine and the deletions become
// no-ops.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.Tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return mapVerifyError(err)
	}

	if err := s.Store.Sessions().DeleteSessionByTokenHash(ctx, cryptox.FingerprintToken(refreshToken)); err != nil {
		return autherr.Internal(err)
	}
	if err := s.Cache.DeleteRefreshToken(ctx, claims.UserID); err != nil {
		return autherr.Internal(err)
	}

	slogx.FromContext(ctx).Info("user logged out", slog.String("user_id", claims.UserID))
	return nil
}

// VerifyEmail consumes the cached one-shot verification token and flips the
// user to verified.
func (s *AuthService) VerifyEmail(ctx context.Context, email, token string) error {
	status, err := s.Cache.ConsumeOneTimeToken(ctx, domain.PurposeVerifyEmail, email, token)
	if err != nil {
		return autherr.Internal(err)
	}
	if status != domain.Consumed {
		return autherr.New(autherr.KindOneTimeToken, "verification token is invalid or has expired")
	}

	if err := s.Store.Users().MarkEmailVerified(ctx, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return autherr.New(autherr.KindOneTimeToken, "verification token is invalid or has expired")
		}
		return autherr.Internal(err)
	}

	slogx.FromContext(ctx).Info("email verified", slog.String("email", email))
	return nil
}

// RequestPasswordReset issues a one-shot reset token for the account. An
// unknown email returns success with no observable difference, so the
// endpoint cannot be used to probe which addresses exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return autherr.Internal(err)
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return autherr.Internal(err)
	}
	expiresAt := time.Now().UTC().Add(s.oneTimeTTL())

	if err := s.Store.Users().SetPasswordResetToken(ctx, user.Email, token, expiresAt); err != nil {
		return autherr.Internal(err)
	}
	if err := s.Cache.StoreOneTimeToken(ctx, domain.PurposeResetPassword, user.Email, token, s.oneTimeTTL()); err != nil {
		return autherr.Internal(err)
	}

	if err := s.Notifier.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
		slogx.FromContext(ctx).Error("failed to send password reset email",
			slog.String("email", user.Email), slog.Any("error", err))
	}

	return nil
}

// ResetPassword consumes the one-shot reset token, stores the new password
// hash, and revokes every session for the user. A reset invalidates all
// existing logins, not just the reset flow's own token.
func (s *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	status, err := s.Cache.ConsumeOneTimeToken(ctx, domain.PurposeResetPassword, email, token)
	if err != nil {
		return autherr.Internal(err)
	}
	if status != domain.Consumed {
		return autherr.New(autherr.KindOneTimeToken, "reset token is invalid or has expired")
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return autherr.New(autherr.KindOneTimeToken, "reset token is invalid or has expired")
		}
		return autherr.Internal(err)
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return autherr.Internal(err)
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, user.Email, hash); err != nil {
		return autherr.Internal(err)
	}
	if err := s.Store.Sessions().DeleteUserSessions(ctx, user.ID); err != nil {
		return autherr.Internal(err)
	}
	if err := s.Cache.DeleteRefreshToken(ctx, user.ID); err != nil {
		return autherr.Internal(err)
	}

	slogx.FromContext(ctx).Info("password reset completed", slog.String("user_id", user.ID))
	return nil
}
