package handler

import (
	"context"
	"net/http"
	"time"

	"editor-web/internal/transport/httpdto"
	"editor-web/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
	log   *logger.Logger
}

func NewHealthHandler(store Pinger, l *logger.Logger) *HealthHandler {
	return &HealthHandler{store: store, log: l}
}

// Health pings the store. Driver errors are logged, never returned.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Error(c.Request.Context(), "health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, httpdto.HealthResponse{Status: "unhealthy", Database: "unreachable"})
		return
	}
	c.JSON(http.StatusOK, httpdto.HealthResponse{Status: "ok"})
}
