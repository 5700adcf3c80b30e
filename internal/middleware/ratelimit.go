package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"centavo/internal/logger"
)

// RateLimit returns a Gin middleware that rejects requests beyond the given
// sustained rate and burst with 429. The limiter is shared across all
// clients; per-user fairness is left to the reverse proxy.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			logger.Get().Warnw("rate limit exceeded",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"error": gin.H{"code": "RATE_LIMITED", "message": "Too many requests"}})
			return
		}
		c.Next()
	}
}
