package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/userbase/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeSuccess            = "success"
	outcomeRejected           = "rejected"
	outcomeDuplicate          = "duplicate"
	outcomeInvalidCredentials = "invalid_credentials"
	outcomeStorageError       = "storage_error"
	outcomeError              = "error"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	logins          *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	guardRejections *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userbase_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "userbase_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userbase_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userbase_registration_attempts_total",
			Help: "Registration attempts by outcome.",
		}, []string{"outcome"}),
		guardRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userbase_auth_rejections_total",
			Help: "Requests rejected by the identity guard, by reason.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(m.requests, m.requestDuration, m.logins, m.registrations, m.guardRejections)
	return m
}

// Instrument records count and latency of every request by route template.
func (m *Metrics) Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) login(outcome string) {
	if m != nil {
		m.logins.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) registration(outcome string) {
	if m != nil {
		m.registrations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) rejection(reason string) {
	if m != nil {
		m.guardRejections.WithLabelValues(reason).Inc()
	}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, common.ErrValidation):
		return outcomeRejected
	case errors.Is(err, common.ErrDuplicateEmail):
		return outcomeDuplicate
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrInvalidCredentials):
		return outcomeInvalidCredentials
	case errors.Is(err, common.ErrStorageUnavailable):
		return outcomeStorageError
	default:
		return outcomeError
	}
}
