package service

import (
	"context"
	"log/slog"

	"github.com/ch1pu/agentinvest/pkg/slogx"
)

// Notifier delivers one-shot tokens to the user. The real deployment fronts a
// mailer; until then LogNotifier emits them to the service log.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}

// LogNotifier writes outbound notifications to the request logger.
type LogNotifier struct{}

func (LogNotifier) SendVerificationEmail(ctx context.Context, email, token string) error {
	slogx.FromContext(ctx).Info("email verification token issued",
		slog.String("email", email),
		slog.String("token", token),
	)
	return nil
}

func (LogNotifier) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	slogx.FromContext(ctx).Info("password reset token issued",
		slog.String("email", email),
		slog.String("token", token),
	)
	return nil
}
