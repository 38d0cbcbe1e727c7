package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ch1pu/agentinvest/internal/auth/autherr"
	"github.com/ch1pu/agentinvest/internal/auth/cache"
	"github.com/ch1pu/agentinvest/internal/auth/domain"
	"github.com/ch1pu/agentinvest/internal/auth/store"
	"github.com/ch1pu/agentinvest/pkg/slogx"
)

// UserService serves the authenticated self-service surface: profile reads
// and updates, account deletion, and session management.
type UserService struct {
	Store store.Store
	Cache cache.TokenCache
}

func (s *UserService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, autherr.New(autherr.KindNotFound, "user not found")
		}
		return domain.User{}, autherr.Internal(err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, p domain.ProfileUpdate) (domain.User, error) {
	user, err := s.Store.Users().UpdateProfile(ctx, userID, p)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, autherr.New(autherr.KindNotFound, "user not found")
		}
		return domain.User{}, autherr.Internal(err)
	}
	return user, nil
}

// DeleteAccount revokes every session, clears the cache slot, and
// soft-deletes the user row. The email becomes available again.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.Store.Sessions().DeleteUserSessions(ctx, userID); err != nil {
		return autherr.Internal(err)
	}
	if err := s.Cache.DeleteRefreshToken(ctx, userID); err != nil {
		return autherr.Internal(err)
	}

	if err := s.Store.Users().SoftDeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return autherr.New(autherr.KindNotFound, "user not found")
		}
		return autherr.Internal(err)
	}

	slogx.FromContext(ctx).Info("account deleted", slog.String("user_id", userID))
	return nil
}

// ListSessions returns the user's active sessions, newest first, with token
// material redacted.
func (s *UserService) ListSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	sessions, err := s.Store.Sessions().ListUserSessions(ctx, userID)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	return sessions, nil
}

// RevokeSession deletes one of the user's own sessions. A session id owned
// by another user is indistinguishable from an unknown one.
func (s *UserService) RevokeSession(ctx context.Context, userID, sessionID string) error {
	if err := s.Store.Sessions().DeleteUserSession(ctx, userID, sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return autherr.New(autherr.KindNotFound, "session not found")
		}
		return autherr.Internal(err)
	}

	slogx.FromContext(ctx).Info("session revoked",
		slog.String("user_id", userID), slog.String("session_id", sessionID))
	return nil
}
