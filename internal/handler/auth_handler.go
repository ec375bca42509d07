// Package handler provides HTTP handlers for API endpoints.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"editor-web/internal/csrf"
	"editor-web/internal/domain/user"
	"editor-web/internal/metrics"
	"editor-web/internal/services"
	"editor-web/internal/session"
	"editor-web/internal/transport/httpdto"
	"editor-web/internal/web"
	editor_errors "editor-web/pkg/errors"
	"editor-web/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthService is what the handlers need from services.AuthService.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (user.User, error)
	Login(ctx context.Context, in services.LoginInput) (user.User, error)
}

// AuthHandler handles registration, login, logout and the landing page.
type AuthHandler struct {
	service  AuthService
	sessions session.Manager
	metrics  *metrics.AuthMetrics
	log      *logger.Logger
}

// NewAuthHandler creates an auth handler. m may be nil.
func NewAuthHandler(service AuthService, sessions session.Manager, m *metrics.AuthMetrics, l *logger.Logger) *AuthHandler {
	return &AuthHandler{service: service, sessions: sessions, metrics: m, log: l}
}

// Dispatch routes on method and the first path segment. POSTs to anything
// but register and login fall through to the GET behaviour.
func (h *AuthHandler) Dispatch(c *gin.Context) {
	path := strings.Trim(c.Param("path"), "/")

	if c.Request.Method == http.MethodPost {
		switch path {
		case "register":
			h.Register(c)
			return
		case "login":
			h.Login(c)
			return
		}
	}

	if path == "logout" {
		h.Logout(c)
		return
	}

	h.Index(c)
}

// Register handles user registration and logs the new user in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req httpdto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, metrics.ActionRegister, err)
		return
	}

	_, err := h.service.Register(c.Request.Context(), services.RegisterInput{
		Username:        req.Username,
		Password:        req.Password,
		PasswordConfirm: req.PwConfirm,
	})
	if err != nil {
		h.fail(c, metrics.ActionRegister, err)
		return
	}

	h.login(c, metrics.ActionRegister, services.LoginInput{Username: req.Username, Password: req.Password})
}

// Login handles user authentication.
func (h *AuthHandler) Login(c *gin.Context) {
	var req httpdto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, metrics.ActionLogin, err)
		return
	}

	h.login(c, metrics.ActionLogin, services.LoginInput{Username: req.Username, Password: req.Password})
}

// Logout ends the session and always redirects home.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c); err != nil {
		_ = c.Error(fmt.Errorf("destroy session: %w", err))
		h.metrics.Observe(metrics.ActionLogout, metrics.OutcomeError)
	} else {
		h.metrics.Observe(metrics.ActionLogout, metrics.OutcomeSuccess)
	}
	c.Redirect(http.StatusFound, "/")
}

// Index renders the landing page with a CSRF token for the forms.
func (h *AuthHandler) Index(c *gin.Context) {
	token, err := csrf.Token(c)
	if err != nil {
		_ = c.Error(fmt.Errorf("issue csrf token: %w", err))
		return
	}

	data := web.IndexData{
		CSRFField: csrf.FormField,
		CSRFToken: token,
		Path:      c.Request.URL.Path,
	}
	if id, ok := h.sessions.Current(c); ok {
		data.Username = id.Username
	}
	c.HTML(http.StatusOK, web.IndexTemplate, data)
}

func (h *AuthHandler) login(c *gin.Context, action string, in services.LoginInput) {
	u, err := h.service.Login(c.Request.Context(), in)
	if err != nil {
		h.fail(c, action, err)
		return
	}

	token, err := h.sessions.Establish(c, u)
	if err != nil {
		h.fail(c, action, fmt.Errorf("establish session: %w", err))
		return
	}

	h.metrics.Observe(action, metrics.OutcomeSuccess)
	h.log.Info(c.Request.Context(), "user signed in",
		zap.String("action", action), zap.String("user_id", u.ID.String()))
	c.JSON(http.StatusOK, httpdto.NewAuthSuccess(token))
}

// fail answers expected failures with 200 and the user-facing message, and
// anything else with 500 and a generic one.
func (h *AuthHandler) fail(c *gin.Context, action string, err error) {
	token := h.token(c)
	msg, expected := editor_errors.UserMessage(err)
	if expected {
		h.metrics.Observe(action, metrics.OutcomeRejected)
		c.JSON(http.StatusOK, httpdto.NewAuthFailure(msg, token))
		return
	}

	h.metrics.Observe(action, metrics.OutcomeError)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, httpdto.NewAuthFailure(msg, token))
}

func (h *AuthHandler) badRequest(c *gin.Context, action string, err error) {
	h.metrics.Observe(action, metrics.OutcomeRejected)
	h.log.Warn(c.Request.Context(), "unreadable form", zap.String("action", action), zap.Error(err))
	c.JSON(http.StatusBadRequest, httpdto.NewAuthFailure(editor_errors.MessageBadRequest, h.token(c)))
}

func (h *AuthHandler) token(c *gin.Context) string {
	token, err := csrf.Token(c)
	if err != nil {
		h.log.Error(c.Request.Context(), "failed to issue csrf token", zap.Error(err))
	}
	return token
}
