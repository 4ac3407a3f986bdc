package watch

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes Prometheus metrics for watch mode.
type Recorder struct {
	registry      *prom.Registry
	checksTotal   *prom.CounterVec
	checkDuration prom.Histogram
	issues        *prom.GaugeVec
	entries       prom.Gauge
}

// NewRecorder constructs and registers the watch metrics.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{registry: reg}
	r.checksTotal = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "bibcheck",
		Name:      "checks_total",
		Help:      "Check runs by trigger (file, schedule, startup)",
	}, []string{"trigger"})
	r.checkDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "bibcheck",
		Name:      "check_duration_seconds",
		Help:      "Duration of a full bibliography check",
		Buckets:   prom.DefBuckets,
	})
	r.issues = prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "bibcheck",
		Name:      "issues",
		Help:      "Issues found by the most recent check, by severity",
	}, []string{"severity"})
	r.entries = prom.NewGauge(prom.GaugeOpts{
		Namespace: "bibcheck",
		Name:      "entries",
		Help:      "Entries in the bibliography at the most recent check",
	})
	reg.MustRegister(r.checksTotal, r.checkDuration, r.issues, r.entries)
	return r
}

// IncCheck counts one check run.
func (r *Recorder) IncCheck(trigger string) {
	if r == nil {
		return
	}
	r.checksTotal.WithLabelValues(trigger).Inc()
}

// ObserveCheckDuration records how long a check took.
func (r *Recorder) ObserveCheckDuration(d time.Duration) {
	if r == nil {
		return
	}
	r.checkDuration.Observe(d.Seconds())
}

// SetIssueCounts publishes the latest per-severity issue counts.
func (r *Recorder) SetIssueCounts(errors, warnings, infos int) {
	if r == nil {
		return
	}
	r.issues.WithLabelValues("error").Set(float64(errors))
	r.issues.WithLabelValues("warning").Set(float64(warnings))
	r.issues.WithLabelValues("info").Set(float64(infos))
}

// SetEntries publishes the entry count of the last check.
func (r *Recorder) SetEntries(n int) {
	if r == nil {
		return
	}
	r.entries.Set(float64(n))
}

// Handler serves the registry in Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
