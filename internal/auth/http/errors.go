package http

import (
	"log/slog"
	"net/http"

	"github.com/ch1pu/agentinvest/internal/auth/autherr"
	"github.com/ch1pu/agentinvest/pkg/httpx"
	"github.com/ch1pu/agentinvest/pkg/slogx"
)

// errorResponse is the uniform failure body: a stable machine-readable
// category plus a human-readable message. Detail carries the underlying
// cause only when the service runs in development mode.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func statusForKind(kind autherr.Kind) int {
	switch kind {
	case autherr.KindDuplicateEmail, autherr.KindOneTimeToken:
		return http.StatusBadRequest
	case autherr.KindInvalidCredentials, autherr.KindTokenInvalid, autherr.KindTokenExpired:
		return http.StatusUnauthorized
	case autherr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a service error onto the wire. Internal causes are logged
// with context and never exposed to the caller outside development mode.
func (r *Router) writeError(w http.ResponseWriter, req *http.Request, err error) {
	kind := autherr.KindOf(err)
	status := statusForKind(kind)

	body := errorResponse{
		Error:   kind.String(),
		Message: autherr.MessageOf(err),
	}

	if status == http.StatusInternalServerError {
		slogx.FromContext(req.Context()).Error("request failed",
			slog.String("path", req.URL.Path),
			slog.Any("error", err),
		)
		body.Message = "something went wrong"
	}
	if r.devMode {
		body.Detail = err.Error()
	}

	httpx.WriteJSON(w, status, body)
}

func (r *Router) writeValidationError(w http.ResponseWriter, message string) {
	httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
		Error:   "validation_error",
		Message: message,
	})
}
