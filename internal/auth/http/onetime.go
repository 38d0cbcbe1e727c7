package http

import (
	"net/http"

	"github.com/ch1pu/agentinvest/pkg/httpx"
)

type verifyEmailRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (r *Router) handleVerifyEmail(w http.ResponseWriter, req *http.Request) {
	var body verifyEmailRequest
	if err := decodeJSON(w, req, &body); err != nil {
		r.writeValidationError(w, err.Error())
		return
	}
	if body.Email == "" || body.Token == "" {
		r.writeValidationError(w, "email and token are required")
		return
	}

	if err := r.AuthService.VerifyEmail(req.Context(), body.Email, body.Token); err != nil {
		r.writeError(w, req, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}

type requestPasswordResetRequest struct {
	Email string `json:"email"`
}

func (r *Router) handleRequestPasswordReset(w http.ResponseWriter, req *http.Request) {
	var body requestPasswordResetRequest
	if err := decodeJSON(w, req, &body); err != nil {
		r.writeValidationError(w, err.Error())
		return
	}
	if body.Email == "" {
		r.writeValidationError(w, "email is required")
		return
	}

	if err := r.AuthService.RequestPasswordReset(req.Context(), body.Email); err != nil {
		r.writeError(w, req, err)
		return
	}

	// same body whether or not the account exists
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "if the account exists, a reset link has been sent",
	})
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (r *Router) handleResetPassword(w http.ResponseWriter, req *http.Request) {
	var body resetPasswordRequest
	if err := decodeJSON(w, req, &body); err != nil {
		r.writeValidationError(w, err.Error())
		return
	}
	switch {
	case body.Email == "" || body.Token == "":
		r.writeValidationError(w, "email and token are required")
		return
	case len(body.NewPassword) < minPasswordLength:
		r.writeValidationError(w, "password must be at least 8 characters")
		return
	}

	if err := r.AuthService.ResetPassword(req.Context(), body.Email, body.Token, body.NewPassword); err != nil {
		r.writeError(w, req, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "password reset successful"})
}
