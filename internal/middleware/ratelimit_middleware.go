package middleware

import (
	"context"
	"net/http"
	"strconv"

	"editor-web/internal/csrf"
	"editor-web/internal/redis"
	"editor-web/internal/transport/httpdto"
	editor_errors "editor-web/pkg/errors"
	"editor-web/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthLimiter is the part of redis.RateLimiter the middleware needs.
type AuthLimiter interface {
	AllowAuth(ctx context.Context, ip string) (*redis.RateLimitResult, error)
}

// RateLimitMiddleware limits credential submissions per client IP. Other
// requests are not counted. A limiter failure lets the request through.
func RateLimitMiddleware(limiter AuthLimiter, l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || !isAuthEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		result, err := limiter.AllowAuth(c.Request.Context(), c.ClientIP())
		if err != nil {
			if l != nil {
				l.Error(c.Request.Context(), "rate limit check failed", zap.Error(err))
			}
			c.Next()
			return
		}

		// Set rate limit headers
		setRateLimitHeaders(c, result)

		if !result.Allowed {
			token, _ := csrf.Token(c)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, httpdto.NewAuthFailure(editor_errors.MessageRateLimited, token))
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}

func isAuthEndpoint(path string) bool {
	switch path {
	case "/login", "/register":
		return true
	}
	return false
}
