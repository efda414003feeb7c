package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records commit outcomes for the POS terminal.
type CheckoutMetrics struct {
	commitDuration *prometheus.HistogramVec
	commitSuccess  *prometheus.CounterVec
	commitFailure  *prometheus.CounterVec
	openSessions   prometheus.Gauge
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_commit_duration_seconds",
		Help:    "Duration of checkout commits in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"terminal"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_commit_success",
		Help: "Successful checkout commits.",
	}, []string{"terminal"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_commit_failure",
		Help: "Failed checkout commits by error code.",
	}, []string{"terminal", "code"})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "checkout_open_sessions",
		Help: "Number of currently open POS sessions.",
	})
	reg.MustRegister(duration, success, failure, sessions)
	return &CheckoutMetrics{
		commitDuration: duration,
		commitSuccess:  success,
		commitFailure:  failure,
		openSessions:   sessions,
	}
}

// ObserveCommitDuration records how long a commit took on the named terminal.
func (c *CheckoutMetrics) ObserveCommitDuration(terminal string, duration time.Duration) {
	if c == nil || c.commitDuration == nil {
		return
	}
	c.commitDuration.WithLabelValues(normalizeLabel(terminal)).Observe(duration.Seconds())
}

// IncCommitSuccess increments the success counter for the named terminal.
func (c *CheckoutMetrics) IncCommitSuccess(terminal string) {
	if c == nil || c.commitSuccess == nil {
		return
	}
	c.commitSuccess.WithLabelValues(normalizeLabel(terminal)).Inc()
}

// IncCommitFailure increments the failure counter for the named terminal and code.
func (c *CheckoutMetrics) IncCommitFailure(terminal, code string) {
	if c == nil || c.commitFailure == nil {
		return
	}
	c.commitFailure.WithLabelValues(normalizeLabel(terminal), normalizeLabel(code)).Inc()
}

// SessionOpened bumps the open session gauge.
func (c *CheckoutMetrics) SessionOpened() {
	if c == nil || c.openSessions == nil {
		return
	}
	c.openSessions.Inc()
}

// SessionClosed drops the open session gauge.
func (c *CheckoutMetrics) SessionClosed() {
	if c == nil || c.openSessions == nil {
		return
	}
	c.openSessions.Dec()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
