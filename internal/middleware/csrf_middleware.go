package middleware

import (
	"net/http"

	"editor-web/internal/csrf"
	"editor-web/internal/transport/httpdto"
	editor_errors "editor-web/pkg/errors"
	"editor-web/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CSRFMiddleware rejects unsafe requests whose token does not match the
// session's. It must run after the session middleware.
func CSRFMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := csrf.Verify(c); err != nil {
			if l != nil {
				l.Warn(c.Request.Context(), "csrf verification failed",
					zap.String("path", c.Request.URL.Path), zap.String("client_ip", c.ClientIP()))
			}
			token, _ := csrf.Token(c)
			c.AbortWithStatusJSON(http.StatusForbidden, httpdto.NewAuthFailure(editor_errors.MessageCSRFFailed, token))
			return
		}
		c.Next()
	}
}
