package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadcrm/internal/metrics"
	"leadcrm/pkg/logger"
	"leadcrm/pkg/response"
)

// Middleware limits requests per client IP. A nil limiter disables limiting.
// Redis outages fail open so public forms keep accepting leads.
func Middleware(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		ok, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.FromGin(c).Warn("rate limiter unavailable", "err", err)
		}
		if !ok {
			metrics.RecordRateLimited(c.FullPath())
			response.Abort(c, http.StatusTooManyRequests, "too many requests, please try again later")
			return
		}
		c.Next()
	}
}
