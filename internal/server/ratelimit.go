package server

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Admin-console traffic is bursty but light; this bound exists to keep a
// misbehaving client from saturating the single SQLite write connection.
const (
	rateLimitPerSecond = 50
	rateLimitBurst     = 100
)

// rateLimit applies a process-wide token-bucket limit to API requests.
// The /metrics endpoint is exempt so scrapes never compete with traffic.
func rateLimit(next http.Handler, logger *zap.Logger) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rateLimitPerSecond), rateLimitBurst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		if !limiter.Allow() {
			logger.Warn("request rate limited",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			RateLimited(w, "request rate exceeded, slow down", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}
