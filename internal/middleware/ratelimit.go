// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/coursehub/internal/core"
)

type RateLimitConfig struct {
	Limit      redis_rate.Limit
	KeyFunc    func(*http.Request) string
	FailOpen   bool
	BypassFunc func(*http.Request) bool
	OnLimited  func(http.ResponseWriter, *http.Request, *redis_rate.Result)
}

type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	config   RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	rl := &RateLimiter{
		fallback: newLocalLimiter(),
		config:   cfg,
	}
	if rdb != nil {
		rl.limiter = redis_rate.NewLimiter(rdb)
	}

	return rl
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.BypassFunc != nil && rl.config.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.config.KeyFunc(r)
		res, err := rl.allow(r.Context(), key)
		if err != nil {
			if rl.config.FailOpen {
				slog.Warn("rate limiter error, failing open",
					"error", err,
					"key", key,
				)
				next.ServeHTTP(w, r)
				return
			}
			core.JSONError(w, core.NewAppError(
				err,
				"rate limiter unavailable",
				http.StatusServiceUnavailable,
				"SERVICE_UNAVAILABLE",
			))
			return
		}

		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			metricRateLimited.Inc()
			if rl.config.OnLimited != nil {
				rl.config.OnLimited(w, r, res)
				return
			}
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(
	ctx context.Context,
	key string,
) (*redis_rate.Result, error) {
	if rl.limiter == nil {
		return rl.fallback.allow(key, rl.config.Limit)
	}

	res, err := rl.limiter.Allow(ctx, key, rl.config.Limit)
	if err != nil {
		metricRateLimitFallbacks.Inc()
		return rl.fallback.allow(key, rl.config.Limit)
	}
	return res, nil
}

const (
	ipKeyPrefix   = "ratelimit:ip:"
	userKeyPrefix = "ratelimit:user:"
)

// TrustedProxies lists the networks allowed to report the client address
// through X-Forwarded-For or X-Real-IP. Requests from anywhere else are
// keyed on the socket peer, so a direct client cannot pick its own bucket.
type TrustedProxies []netip.Prefix

// ParseTrustedProxies accepts CIDRs or bare addresses. Entries may also be
// comma-separated lists, as they arrive from a single environment variable.
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	var out TrustedProxies
	for _, entry := range entries {
		for _, raw := range strings.Split(entry, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			if prefix, err := netip.ParsePrefix(raw); err == nil {
				out = append(out, prefix.Masked())
				continue
			}
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
			}
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return out, nil
}

func (tp TrustedProxies) trusts(peer string) bool {
	addr, err := netip.ParseAddr(peer)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range tp {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the socket peer, or the address a trusted proxy
// forwarded: the rightmost X-Forwarded-For hop, then X-Real-IP.
func (tp TrustedProxies) ClientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !tp.trusts(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		if last := strings.TrimSpace(hops[len(hops)-1]); last != "" {
			return last
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func (tp TrustedProxies) KeyByIP(r *http.Request) string {
	return ipKeyPrefix + tp.ClientIP(r)
}

// KeyByIP keys on the socket peer and ignores forwarding headers.
func KeyByIP(r *http.Request) string {
	return TrustedProxies(nil).KeyByIP(r)
}

func KeyByUser(r *http.Request) string {
	id := GetUserID(r.Context())
	if id == "" {
		return KeyByIP(r)
	}
	return userKeyPrefix + id
}

func KeyByUserAndEndpoint(r *http.Request) string {
	return KeyByUser(r) + ":endpoint:" + normalizeEndpoint(r.URL.Path)
}

// normalizeEndpoint folds path identifiers into {id} so that one caller
// shares a bucket across every course it touches.
func normalizeEndpoint(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if core.IsUUID(seg) || isDigits(seg) {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(c rune) bool {
		return c < '0' || c > '9'
	}) < 0
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	reset := time.Now().Add(res.ResetAfter).Unix()
	window := int(limit.Period / time.Second)

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, window))
	h.Set("RateLimit", fmt.Sprintf("%d;t=%d",
		res.Remaining, int(res.ResetAfter/time.Second)))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter/time.Second), 1)
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	core.JSONError(w, core.NewAppError(
		nil,
		fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfter),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
}

const (
	localSweepEvery = 5 * time.Minute
	localIdleTTL    = 10 * time.Minute
)

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiter is the in-process token bucket used when Redis is absent
// or erroring. Counts are per instance only.
type localLimiter struct {
	mu      sync.Mutex
	buckets map[string]*localBucket
}

func newLocalLimiter() *localLimiter {
	l := &localLimiter{buckets: make(map[string]*localBucket)}
	go l.sweep()
	return l
}

func (l *localLimiter) sweep() {
	ticker := time.NewTicker(localSweepEvery)
	defer ticker.Stop()

	for now := range ticker.C {
		l.mu.Lock()
		for key, b := range l.buckets {
			if now.Sub(b.lastSeen) > localIdleTTL {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

func (l *localLimiter) allow(
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	if limit.Rate <= 0 || limit.Period <= 0 {
		return nil, fmt.Errorf("invalid limit %+v", limit)
	}
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	interval := time.Duration(float64(time.Second) / perSecond)

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{
			limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst),
		}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	allowed := b.limiter.Allow()
	remaining := max(int(b.limiter.Tokens()), 0)
	l.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	return res, nil
}

// NewAuthRateLimiter returns the stricter per-IP limiter used on the
// credential endpoints.
func NewAuthRateLimiter(
	rdb *redis.Client,
	limit redis_rate.Limit,
	proxies TrustedProxies,
) *RateLimiter {
	return NewRateLimiter(rdb, RateLimitConfig{
		Limit:    limit,
		FailOpen: true,
		KeyFunc: func(r *http.Request) string {
			return proxies.KeyByIP(r) + ":auth"
		},
	})
}

// NewUserRateLimiter limits authenticated callers per user and endpoint.
// Mount it after Authenticator so the identity is visible.
func NewUserRateLimiter(rdb *redis.Client, limit redis_rate.Limit) *RateLimiter {
	return NewRateLimiter(rdb, RateLimitConfig{
		Limit:      limit,
		FailOpen:   true,
		KeyFunc:    KeyByUserAndEndpoint,
		BypassFunc: BypassAdmins,
	})
}

// BypassAdmins skips limiting for authenticated admins. It only sees an
// identity when mounted after Authenticator or OptionalAuth.
func BypassAdmins(r *http.Request) bool {
	return IsAdmin(r.Context())
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return PerWindow(rate, burst, time.Minute)
}

func PerWindow(rate, burst int, window time.Duration) redis_rate.Limit {
	if window <= 0 {
		window = time.Minute
	}

	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: window,
	}
}
