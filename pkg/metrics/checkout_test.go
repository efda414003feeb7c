package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckoutMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.SessionOpened()
	m.ObserveCommitDuration("terminal-1", 120*time.Millisecond)
	m.IncCommitSuccess("terminal-1")
	m.IncCommitFailure("terminal-1", "INSUFFICIENT_STOCK")
	m.SessionClosed()

	if got := testutil.ToFloat64(m.commitSuccess.WithLabelValues("terminal-1")); got != 1 {
		t.Fatalf("commit success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.commitFailure.WithLabelValues("terminal-1", "INSUFFICIENT_STOCK")); got != 1 {
		t.Fatalf("commit failure = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.openSessions); got != 0 {
		t.Fatalf("open sessions = %v, want 0", got)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var m *CheckoutMetrics
	m.ObserveCommitDuration("t", time.Second)
	m.IncCommitSuccess("t")
	m.IncCommitFailure("t", "x")
	m.SessionOpened()
	m.SessionClosed()

	empty := NewCheckoutMetrics(nil)
	empty.IncCommitSuccess("")
}
