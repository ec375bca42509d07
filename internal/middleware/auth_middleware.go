package middleware

import (
	"editor-web/internal/session"
	"editor-web/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SessionUserMiddleware copies the signed-in user's id into the request
// context so log lines carry it. Anonymous requests pass through untouched.
func SessionUserMiddleware(m session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := m.Current(c); ok {
			ctx := logger.WithUserID(c.Request.Context(), id.UserID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
