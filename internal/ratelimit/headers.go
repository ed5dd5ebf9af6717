// internal/ratelimit/headers.go
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// KeyFunc derives the client key of a request.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by the first X-Forwarded-For hop or the remote
// address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware wraps an HTTP handler with per-client rate limiting
func (cl *ClientLimiter) Middleware(key KeyFunc) func(http.Handler) http.Handler {
	if key == nil {
		key = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining := cl.Allow(key(r))

			SetHeaders(w, RateLimitInfo{
				Limit:     cl.burst,
				Remaining: remaining,
				Reset:     time.Now().Add(time.Duration(cl.RetryAfter()) * time.Second).Unix(),
			})

			if !allowed {
				FormatRateLimitError(w, cl.RetryAfter())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitInfo contains rate limit information
type RateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

// SetHeaders adds rate limit headers to a response
func SetHeaders(w http.ResponseWriter, info RateLimitInfo) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.Reset, 10))
}

// FormatRateLimitError formats a rate limit error response
func FormatRateLimitError(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	errorMsg := fmt.Sprintf(`{"error":"Rate limit exceeded","retry_after":%d}`, retryAfter)
	_, _ = w.Write([]byte(errorMsg))
}
