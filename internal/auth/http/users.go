package http

import (
	"net/http"

	"github.com/ch1pu/agentinvest/internal/auth/domain"
	"github.com/ch1pu/agentinvest/pkg/httpx"
)

func (r *Router) handleGetMe(w http.ResponseWriter, req *http.Request) {
	userID := httpx.UserIDFromContext(req.Context())

	user, err := r.UserService.GetUser(req.Context(), userID)
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"user": user.Public()})
}

type updateProfileRequest struct {
	FirstName   *string        `json:"first_name,omitempty"`
	LastName    *string        `json:"last_name,omitempty"`
	Phone       *string        `json:"phone,omitempty"`
	AvatarURL   *string        `json:"avatar_url,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

func (r *Router) handleUpdateMe(w http.ResponseWriter, req *http.Request) {
	userID := httpx.UserIDFromContext(req.Context())

	var body updateProfileRequest
	if err := decodeJSON(w, req, &body); err != nil {
		r.writeValidationError(w, err.Error())
		return
	}

	update := domain.ProfileUpdate{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Phone:       body.Phone,
		AvatarURL:   body.AvatarURL,
		Preferences: body.Preferences,
	}
	if update.IsEmpty() {
		r.writeValidationError(w, "no updatable fields provided")
		return
	}

	user, err := r.UserService.UpdateProfile(req.Context(), userID, update)
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "profile updated",
		"user":    user.Public(),
	})
}

func (r *Router) handleDeleteMe(w http.ResponseWriter, req *http.Request) {
	userID := httpx.UserIDFromContext(req.Context())

	if err := r.UserService.DeleteAccount(req.Context(), userID); err != nil {
		r.writeError(w, req, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

func (r *Router) handleListSessions(w http.ResponseWriter, req *http.Request) {
	userID := httpx.UserIDFromContext(req.Context())

	sessions, err := r.UserService.ListSessions(req.Context(), userID)
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	public := make([]domain.PublicSession, 0, len(sessions))
	for _, s := range sessions {
		public = append(public, s.Public())
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"sessions": public})
}

func (r *Router) handleRevokeSession(w http.ResponseWriter, req *http.Request) {
	userID := httpx.UserIDFromContext(req.Context())
	sessionID := req.PathValue("id")

	if err := r.UserService.RevokeSession(req.Context(), userID, sessionID); err != nil {
		r.writeError(w, req, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "session revoked"})
}
