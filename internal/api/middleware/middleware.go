package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wedshare/media-service/internal/api/apierr"
	"github.com/wedshare/media-service/internal/ratelimit"
)

// CORS allows the static site (served from a different origin during
// development) to call the API.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Admin-Password")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// RateLimit gates upload requests per client IP. The limiter counts
// requests, not files. A limiter backend failure (e.g. Redis down)
// fails open: guests keep uploading, the incident goes to the log.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Printf("[RATELIMIT] check failed for %s: %v", c.ClientIP(), err)
			c.Next()
			return
		}
		if !decision.Allowed {
			retryAfter := int(decision.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			apierr.Abort(c, http.StatusTooManyRequests, apierr.CodeRateLimited,
				"too many upload requests, try again shortly")
			return
		}
		c.Next()
	}
}

// BodyLimit caps the aggregate request size before multipart parsing
// starts reading it.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// RequireAdmin checks the shared admin password. A single-event site
// has one operator; there are no accounts or sessions.
func RequireAdmin(password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := c.GetHeader("X-Admin-Password")
		if supplied == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(password)) != 1 {
			apierr.Abort(c, http.StatusUnauthorized, apierr.CodeUnauthorized, "admin password required")
			return
		}
		c.Next()
	}
}
