package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/ratelimit"
)

// RateLimit caps requests per client IP within window. A nil limiter or a
// non-positive limit disables it.
func RateLimit(limiter ratelimit.Limiter, scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(r.Context(), scope+":"+clientIP(r), limit, window) {
				response.HandleError(w, auth.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
