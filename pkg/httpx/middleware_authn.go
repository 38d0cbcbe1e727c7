package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/ch1pu/agentinvest/pkg/jwtx"
	"github.com/ch1pu/agentinvest/pkg/slogx"
)

// AccessTokenVerifier validates a bearer access token and returns its claims.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (jwtx.AccessClaims, error)
}

// AuthnMiddleware enforces a valid `Authorization: Bearer <jwt>` access token
// and injects the authenticated identity into the request context.
func AuthnMiddleware(v AccessTokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.VerifyAccessToken(raw)
			if err != nil {
				log.Warn("access token rejected", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.AccessClaims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.UserID)
	ctx = context.WithValue(ctx, CtxKeyEmail, c.Email)
	ctx = context.WithValue(ctx, CtxKeyTier, c.SubscriptionTier)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":   "Unauthorized",
		"message": desc,
	})
}
