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

// ErrorHandler logs errors handlers attached with c.Error and, if nothing
// was written yet, answers with the generic failure envelope.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.Error(c.Request.Context(), "request error",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
		}
		if c.Writer.Written() {
			return
		}
		token, _ := csrf.Token(c)
		c.JSON(http.StatusInternalServerError, httpdto.NewAuthFailure(editor_errors.MessageInternal, token))
	}
}
