package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ch1pu/agentinvest/internal/auth/cache"
	"github.com/ch1pu/agentinvest/internal/auth/service"
	"github.com/ch1pu/agentinvest/internal/auth/store"
	"github.com/ch1pu/agentinvest/pkg/httpx"
	"github.com/ch1pu/agentinvest/pkg/jwtx"
	"github.com/ch1pu/agentinvest/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     httpx.AccessTokenVerifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	devMode      bool

	store store.Store
	cache cache.TokenCache

	AuthService *service.AuthService
	UserService *service.UserService
}

func NewRouter(
	verifier *jwtx.Issuer,
	buildVersion string,
	devMode bool,
	st store.Store,
	tc cache.TokenCache,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		devMode:      devMode,
		startTime:    time.Now(),
		store:        st,
		cache:        tc,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// credential attempts get the strict limit, keyed by IP
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(r.handleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(r.handleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// token lifecycle is chattier than credential entry
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(http.HandlerFunc(r.handleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(r.handleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/verify-email",
		httpx.Chain(http.HandlerFunc(r.handleVerifyEmail),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/request-password-reset",
		httpx.Chain(http.HandlerFunc(r.handleRequestPasswordReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/reset-password",
		httpx.Chain(http.HandlerFunc(r.handleResetPassword),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	authn := httpx.AuthnMiddleware(r.verifier)

	r.Mux.Handle("GET /api/users/me",
		httpx.Chain(http.HandlerFunc(r.handleGetMe),
			authn, httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /api/users/me",
		httpx.Chain(http.HandlerFunc(r.handleUpdateMe),
			authn, httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/users/me",
		httpx.Chain(http.HandlerFunc(r.handleDeleteMe),
			authn, httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /api/users/me/sessions",
		httpx.Chain(http.HandlerFunc(r.handleListSessions),
			authn, httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("DELETE /api/users/me/sessions/{id}",
		httpx.Chain(http.HandlerFunc(r.handleRevokeSession),
			authn, httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /health", r.handleHealth)
	r.Mux.HandleFunc("GET /readyz", r.handleReadyz)
}
