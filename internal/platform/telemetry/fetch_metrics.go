package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FetchMetrics counts quote fetch outcomes per show.
// A nil *FetchMetrics is valid and records nothing.
type FetchMetrics struct {
	outcomes   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	superseded *prometheus.CounterVec
}

// NewFetchMetrics creates the fetch collectors and registers them with reg.
func NewFetchMetrics(reg prometheus.Registerer) (*FetchMetrics, error) {
	m := &FetchMetrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bbquotes",
			Name:      "fetch_total",
			Help:      "Completed quote fetches by show and terminal state.",
		}, []string{"show", "state"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bbquotes",
			Name:      "fetch_duration_seconds",
			Help:      "Time from trigger to terminal state.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"show"}),
		superseded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bbquotes",
			Name:      "fetch_superseded_total",
			Help:      "Fetch results discarded because a newer fetch was triggered.",
		}, []string{"show"}),
	}

	for _, c := range []prometheus.Collector{m.outcomes, m.duration, m.superseded} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Observe records one fetch that reached a terminal state.
func (m *FetchMetrics) Observe(show, state string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.outcomes.WithLabelValues(show, state).Inc()
	m.duration.WithLabelValues(show).Observe(elapsed.Seconds())
}

// Superseded records a fetch result dropped in favour of a newer request.
func (m *FetchMetrics) Superseded(show string) {
	if m == nil {
		return
	}

	m.superseded.WithLabelValues(show).Inc()
}
