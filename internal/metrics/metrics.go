// Package metrics records in-process MCP tool invocation counters and
// durations on a private Prometheus registry. No HTTP endpoint is
// exposed; metrics are queryable only through Recorder's accessors.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

// Recorder holds the MCP tool metrics.
type Recorder struct {
	registry    *prometheus.Registry
	logger      *zap.Logger
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	errors      *prometheus.CounterVec
}

// New builds a Recorder on a fresh, private registry.
func New(logger *zap.Logger) *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		logger:   logger,
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "modegate_tool_invocations_total",
			Help: "Total number of MCP tool invocations.",
		}, []string{"tool"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "modegate_tool_duration_seconds",
			Help:    "Duration of MCP tool invocations.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"tool"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "modegate_tool_errors_total",
			Help: "Total number of MCP tool errors.",
		}, []string{"tool", "reason"}),
	}

	registry.MustRegister(r.invocations, r.duration, r.errors)
	return r
}

// RecordInvocation records one tool call's outcome and duration.
func (r *Recorder) RecordInvocation(tool string, d time.Duration, err error) {
	r.invocations.WithLabelValues(tool).Inc()
	r.duration.WithLabelValues(tool).Observe(d.Seconds())
	if err != nil {
		r.errors.WithLabelValues(tool, categorizeError(err)).Inc()
	}
}

// Gather returns the current metric families, for a periodic log
// snapshot or for tests.
func (r *Recorder) Gather() ([]*dto.MetricFamily, error) {
	return r.registry.Gather()
}

func categorizeError(err error) string {
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "validation") || strings.Contains(s, "invalid"):
		return "validation_error"
	case strings.Contains(s, "not found"):
		return "not_found"
	case strings.Contains(s, "conflict"):
		return "conflict"
	case strings.Contains(s, "restriction"):
		return "restriction_error"
	default:
		return "internal_error"
	}
}
