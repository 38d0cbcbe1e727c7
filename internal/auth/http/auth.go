package http

import (
	"net/http"

	"github.com/ch1pu/agentinvest/internal/auth/autherr"
	"github.com/ch1pu/agentinvest/internal/auth/domain"
	"github.com/ch1pu/agentinvest/internal/auth/service"
	"github.com/ch1pu/agentinvest/pkg/httpx"
)

type registerRequest struct {
	Email      string         `json:"email"`
	Password   string         `json:"password"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Phone      *string        `json:"phone,omitempty"`
	DeviceInfo map[string]any `json:"deviceInfo,omitempty"`
}

type authResponse struct {
	Message      string            `json:"message"`
	User         domain.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	var body registerRequest
	if err := decodeJSON(w, req, &body); err != nil {
		r.writeValidationError(w, err.Error())
		return
	}

	switch {
	case !validEmail(body.Email):
		r.writeValidationError(w, "a valid email is required")
		return
	case len(body.Password) < minPasswordLength:
		r.writeValidationError(w, "password must be at least 8 characters")
		return
	case body.FirstName == "" || body.LastName == "":
		r.writeValidationError(w, "first_name and last_name are required")
		return
	}

	res, err := r.AuthService.Register(req.Context(), service.RegisterParams{
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
		Device:    deviceContext(req, body.DeviceInfo),
	})
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authResponse{
		Message:      "registration successful",
		User:         res.User.Public(),
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	})
}

type loginRequest struct {
	Email      string         `json:"email"`
	Password   string         `json:"password"`
	DeviceInfo map[string]any `json:"deviceInfo,omitempty"`
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if err := decodeJSON(w, req, &body); err != nil {
		r.writeValidationError(w, err.Error())
		return
	}
	if body.Email == "" || body.Password == "" {
		r.writeValidationError(w, "email and password are required")
		return
	}

	res, err := r.AuthService.Login(req.Context(), service.LoginParams{
		Email:    body.Email,
		Password: body.Password,
		Device:   deviceContext(req, body.DeviceInfo),
	})
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authResponse{
		Message:      "login successful",
		User:         res.User.Public(),
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (r *Router) handleRefresh(w http.ResponseWriter, req *http.Request) {
	var body refreshRequest
	if err := decodeJSON(w, req, &body); err != nil {
		r.writeValidationError(w, err.Error())
		return
	}
	if body.RefreshToken == "" {
		r.writeValidationError(w, "refreshToken is required")
		return
	}

	pair, err := r.AuthService.Refresh(req.Context(), body.RefreshToken, deviceContext(req, nil))
	if err != nil {
		r.writeError(w, req, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, refreshResponse{
		Message:      "token refreshed",
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	var body refreshRequest
	if err := decodeJSON(w, req, &body); err != nil {
		r.writeValidationError(w, err.Error())
		return
	}
	if body.RefreshToken == "" {
		r.writeValidationError(w, "refreshToken is required")
		return
	}

	if err := r.AuthService.Logout(req.Context(), body.RefreshToken); err != nil {
		// an unverifiable token on logout is a malformed request, not an
		// authentication challenge
		switch autherr.KindOf(err) {
		case autherr.KindTokenInvalid, autherr.KindTokenExpired:
			httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{
				Error:   autherr.KindOf(err).String(),
				Message: autherr.MessageOf(err),
			})
		default:
			r.writeError(w, req, err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}
