// Package metrics exposes Prometheus counters for the auth endpoints.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ActionRegister = "register"
	ActionLogin    = "login"
	ActionLogout   = "logout"

	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type AuthMetrics struct {
	registry *prometheus.Registry
	attempts *prometheus.CounterVec
}

func NewAuthMetrics() *AuthMetrics {
	reg := prometheus.NewRegistry()
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "editor",
		Subsystem: "auth",
		Name:      "attempts_total",
		Help:      "Authentication requests by action and outcome.",
	}, []string{"action", "outcome"})
	reg.MustRegister(attempts)
	return &AuthMetrics{registry: reg, attempts: attempts}
}

// Observe counts one request. A nil receiver does nothing.
func (m *AuthMetrics) Observe(action, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(action, outcome).Inc()
}

func (m *AuthMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
