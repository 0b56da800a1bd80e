package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "forecastview"

// Metrics holds the Prometheus collectors for the query client, the renderer and the dashboard.
type Metrics struct {
	// Query service metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint={forecasts,months,query,health}, outcome={success,error,status}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint

	// Render metrics.
	RenderDuration *prometheus.HistogramVec // labels: format={results,html,svg,png}
	RenderedRows   prometheus.Histogram

	// Dashboard metrics.
	SupersededRuns prometheus.Counter
	DashboardState *prometheus.GaugeVec // labels: state, 1 for the current state
}

func newMetrics(help bool) *Metrics {
	h := func(s string) string {
		if help {
			return s
		}
		return ""
	}
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      h("Query service requests by endpoint and outcome."),
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      h("Query service request duration in seconds."),
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      h("Duration of turning rows into panels or an output format."),
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"format"}),
		RenderedRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rendered_rows",
			Help:      h("Number of aligned rows per render."),
			Buckets:   []float64{31, 38, 62, 69, 92, 99},
		}),
		SupersededRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "superseded_runs_total",
			Help:      h("Query responses discarded because a newer run started."),
		}),
		DashboardState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dashboard_state",
			Help:      h("1 for the current dashboard state, 0 otherwise."),
		}, []string{"state"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.RenderDuration,
		m.RenderedRows,
		m.SupersededRuns,
		m.DashboardState,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere so tests can create as
// many as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

// SetState marks state as the current dashboard state among all states.
func (m *Metrics) SetState(state string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == state {
			v = 1
		}
		m.DashboardState.WithLabelValues(s).Set(v)
	}
}
