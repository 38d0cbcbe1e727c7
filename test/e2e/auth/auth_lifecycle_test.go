package auth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterScenario(t *testing.T) {
	baseURL, _ := setupServer(t)

	body := registerUser(t, baseURL, "alice@x.com", "P@ssw0rd1")

	user := body["user"].(map[string]any)
	assert.Equal(t, "alice@x.com", user["email"])
	assert.Equal(t, "free", user["subscription_tier"])
	assert.Equal(t, false, user["email_verified"])
	assert.NotContains(t, user, "password_hash", "hash must never reach the wire")
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	baseURL, _ := setupServer(t)

	registerUser(t, baseURL, "alice@x.com", "P@ssw0rd1")

	status, body := doJSON(t, http.MethodPost, baseURL+"/api/auth/register", map[string]any{
		"email":      "alice@x.com",
		"password":   "Different1!",
		"first_name": "Other",
		"last_name":  "Person",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "duplicate_email", body["error"])
}

func TestRegisterValidation(t *testing.T) {
	baseURL, _ := setupServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing email", map[string]any{"password": "P@ssw0rd1", "first_name": "A", "last_name": "B"}},
		{"bad email", map[string]any{"email": "not-an-email", "password": "P@ssw0rd1", "first_name": "A", "last_name": "B"}},
		{"short password", map[string]any{"email": "a@x.com", "password": "short", "first_name": "A", "last_name": "B"}},
		{"missing names", map[string]any{"email": "a@x.com", "password": "P@ssw0rd1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, http.MethodPost, baseURL+"/api/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "validation_error", body["error"])
		})
	}
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	baseURL, _ := setupServer(t)

	registerUser(t, baseURL, "alice@x.com", "P@ssw0rd1")

	statusWrong, bodyWrong := doJSON(t, http.MethodPost, baseURL+"/api/auth/login", map[string]any{
		"email": "alice@x.com", "password": "wrong-pass",
	}, "")
	statusNone, bodyNone := doJSON(t, http.MethodPost, baseURL+"/api/auth/login", map[string]any{
		"email": "nobody@x.com", "password": "wrong-pass",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, statusWrong)
	assert.Equal(t, statusWrong, statusNone)
	assert.Equal(t, bodyWrong, bodyNone, "payloads must not reveal which factor failed")
}

func TestRefreshRotation(t *testing.T) {
	baseURL, _ := setupServer(t)

	reg := registerUser(t, baseURL, "alice@x.com", "P@ssw0rd1")
	tokenA := reg["refreshToken"].(string)

	status, body := doJSON(t, http.MethodPost, baseURL+"/api/auth/refresh", map[string]any{
		"refreshToken": tokenA,
	}, "")
	require.Equal(t, http.StatusOK, status, "%v", body)
	tokenB := body["refreshToken"].(string)
	require.NotEqual(t, tokenA, tokenB)

	// the spent token is dead
	status, body = doJSON(t, http.MethodPost, baseURL+"/api/auth/refresh", map[string]any{
		"refreshToken": tokenA,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "token_invalid", body["error"])

	// the replacement still works
	status, _ = doJSON(t, http.MethodPost, baseURL+"/api/auth/refresh", map[string]any{
		"refreshToken": tokenB,
	}, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestLogoutIsIdempotent(t *testing.T) {
	baseURL, _ := setupServer(t)

	reg := registerUser(t, baseURL, "alice@x.com", "P@ssw0rd1")
	token := reg["refreshToken"].(string)

	for i := 0; i < 2; i++ {
		status, body := doJSON(t, http.MethodPost, baseURL+"/api/auth/logout", map[string]any{
			"refreshToken": token,
		}, "")
		assert.Equal(t, http.StatusOK, status, "logout #%d: %v", i+1, body)
	}

	status, _ := doJSON(t, http.MethodPost, baseURL+"/api/auth/refresh", map[string]any{
		"refreshToken": token,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogoutWithGarbageToken(t *testing.T) {
	baseURL, _ := setupServer(t)

	status, body := doJSON(t, http.MethodPost, baseURL+"/api/auth/logout", map[string]any{
		"refreshToken": "not-a-jwt",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "token_invalid", body["error"])
}
