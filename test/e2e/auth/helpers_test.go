package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ch1pu/agentinvest/internal/auth/cache"
	authhttp "github.com/ch1pu/agentinvest/internal/auth/http"
	"github.com/ch1pu/agentinvest/internal/auth/service"
	"github.com/ch1pu/agentinvest/internal/auth/store/drivers/sqlite"
	"github.com/ch1pu/agentinvest/pkg/jwtx"
)

// setupServer wires the full HTTP stack against an in-memory store and a
// miniredis-backed cache, mirroring production wiring minus the network.
func setupServer(t *testing.T) (string, *miniredis.Miniredis) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	mr := miniredis.RunT(t)
	tc := cache.NewRedisWithClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = tc.Close() })

	issuer := &jwtx.Issuer{
		AccessSecret:  []byte("e2e-access-secret"),
		RefreshSecret: []byte("e2e-refresh-secret"),
		Issuer:        "agentinvest-e2e",
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := authhttp.NewRouter(issuer, "e2e", false, st, tc, logger)
	router.AuthService = &service.AuthService{
		Store:    st,
		Cache:    tc,
		Tokens:   issuer,
		Notifier: service.LogNotifier{},
	}
	router.UserService = &service.UserService{Store: st, Cache: tc}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv.URL, mr
}

// doJSON fires a JSON request and decodes the JSON response body into a map.
func doJSON(t *testing.T, method, url string, body any, bearer string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

// registerUser registers an account and returns the response payload.
func registerUser(t *testing.T, baseURL, email, password string) map[string]any {
	t.Helper()

	status, body := doJSON(t, http.MethodPost, baseURL+"/api/auth/register", map[string]any{
		"email":      email,
		"password":   password,
		"first_name": "Test",
		"last_name":  "User",
	}, "")
	require.Equal(t, http.StatusCreated, status, "register: %v", body)
	return body
}
