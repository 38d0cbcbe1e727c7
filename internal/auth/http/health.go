package http

import (
	"net/http"
	"time"

	"github.com/ch1pu/agentinvest/pkg/httpx"
)

type healthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

type healthResponse struct {
	Service   string        `json:"service"`
	Status    string        `json:"status"`
	Uptime    string        `json:"uptime"`
	Version   string        `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    *healthChecks `json:"checks,omitempty"`
}

// handleHealth is the liveness probe: it answers 200 whenever the process is
// up, regardless of dependency state.
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, healthResponse{
		Service:   "auth",
		Status:    "ok",
		Uptime:    time.Since(r.startTime).String(),
		Version:   r.buildVersion,
		Timestamp: time.Now().UTC(),
	})
}

// handleReadyz is the readiness probe: it pings the session ledger and the
// token cache and degrades to 503 when either is unreachable.
func (r *Router) handleReadyz(w http.ResponseWriter, req *http.Request) {
	checks := &healthChecks{
		Database: "ok",
		Cache:    "ok",
	}
	overallStatus := "ok"
	statusCode := http.StatusOK

	if err := r.store.Ping(req.Context()); err != nil {
		checks.Database = "error: " + err.Error()
		overallStatus = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	if err := r.cache.Ping(req.Context()); err != nil {
		checks.Cache = "error: " + err.Error()
		overallStatus = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	httpx.WriteJSON(w, statusCode, healthResponse{
		Service:   "auth",
		Status:    overallStatus,
		Uptime:    time.Since(r.startTime).String(),
		Version:   r.buildVersion,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}
