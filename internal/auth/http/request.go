package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/ch1pu/agentinvest/internal/auth/service"
)

const maxBodyBytes = 1 << 20 // 1 MiB

var errBadBody = errors.New("request body must be valid JSON")

func decodeJSON(w http.ResponseWriter, req *http.Request, dst any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)

	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errBadBody
	}
	return nil
}

// validEmail is a shape check, not RFC validation. Real deliverability is
// proven by the verification flow.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

const minPasswordLength = 8

// deviceContext collects the session metadata recorded on the ledger row.
func deviceContext(req *http.Request, deviceInfo map[string]any) service.DeviceContext {
	d := service.DeviceContext{DeviceInfo: deviceInfo}

	if ip := clientIP(req); ip != "" {
		d.IPAddress = &ip
	}
	if ua := req.UserAgent(); ua != "" {
		d.UserAgent = &ua
	}
	return d
}

func clientIP(req *http.Request) string {
	if fwd := req.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.Index(fwd, ","); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if real := req.Header.Get("X-Real-IP"); real != "" {
		return real
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
