// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/coursehub/internal/core"
)

func TestRateLimiterLocalFallback(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit:    PerWindow(2, 2, time.Hour),
		FailOpen: true,
	})
	handler := rl.Handler(okHandler)

	before := testutil.ToFloat64(metricRateLimited)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
		req.RemoteAddr = ip + ":51000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	rec := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code, "budgets are per client")
	assert.Equal(t, before+1, testutil.ToFloat64(metricRateLimited))
}

func TestUserRateLimiter(t *testing.T) {
	rl := NewUserRateLimiter(nil, PerWindow(1, 1, time.Hour))
	handler := rl.Handler(okHandler)

	send := func(id *core.Identity, path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req = req.WithContext(WithIdentity(req.Context(), id))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	student := &core.Identity{UserID: "s1", Role: core.RoleStudent}
	admin := &core.Identity{UserID: "a1", Role: core.RoleAdmin}

	assert.Equal(t, http.StatusOK, send(student, "/api/purchase/3f2504e0-4f89-41d3-9a0c-0305e82c3301"))
	assert.Equal(t, http.StatusTooManyRequests,
		send(student, "/api/purchase/9a0c2504-4f89-41d3-9a0c-0305e82c3301"),
		"course ids collapse into one endpoint key")
	assert.Equal(t, http.StatusOK, send(student, "/api/my-courses"))

	for range 3 {
		assert.Equal(t, http.StatusOK, send(admin, "/api/my-courses"))
	}
}

func TestKeyFuncs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/course/3f2504e0-4f89-41d3-9a0c-0305e82c3301", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "ratelimit:ip:192.0.2.7", KeyByIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.1, 203.0.113.9")
	assert.Equal(t, "ratelimit:ip:192.0.2.7", KeyByIP(req),
		"forwarding headers from an untrusted peer are ignored")

	req = req.WithContext(WithIdentity(req.Context(), &core.Identity{UserID: "u9"}))
	assert.Equal(t, "ratelimit:user:u9", KeyByUser(req))
	assert.Equal(t, "ratelimit:user:u9:endpoint:/api/course/{id}", KeyByUserAndEndpoint(req))
}

func TestTrustedProxiesClientIP(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"192.0.2.0/24, 2001:db8::1", "10.1.2.3"})
	require.NoError(t, err)
	require.Len(t, proxies, 3)

	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"trusted cidr uses rightmost hop", "192.0.2.7:1234", "198.51.100.1, 203.0.113.9", "", "203.0.113.9"},
		{"trusted bare address", "10.1.2.3:80", "203.0.113.5", "", "203.0.113.5"},
		{"trusted ipv6 proxy", "[2001:db8::1]:443", "203.0.113.6", "", "203.0.113.6"},
		{"real ip when no xff", "192.0.2.9:1234", "", "203.0.113.7", "203.0.113.7"},
		{"trusted without headers", "192.0.2.9:1234", "", "", "192.0.2.9"},
		{"untrusted peer", "198.51.100.20:5555", "203.0.113.9", "203.0.113.8", "198.51.100.20"},
		{"neighbour of bare address", "10.1.2.4:80", "203.0.113.5", "", "10.1.2.4"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xri != "" {
				req.Header.Set("X-Real-IP", tc.xri)
			}
			assert.Equal(t, tc.want, proxies.ClientIP(req))
			assert.Equal(t, "ratelimit:ip:"+tc.want, proxies.KeyByIP(req))
		})
	}

	_, err = ParseTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)

	none, err := ParseTrustedProxies([]string{""})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAuthRateLimiterIgnoresSpoofedForwarding(t *testing.T) {
	rl := NewAuthRateLimiter(nil, PerWindow(2, 2, time.Hour), nil)
	handler := rl.Handler(okHandler)

	send := func(spoofed string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "198.51.100.20:40000"
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.3"),
		"rotating X-Forwarded-For must not open a new bucket")
}
