package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// animation engine and its adapters.
type Metrics struct {
	SessionsStarted *prometheus.CounterVec // labels: mode
	StartsRejected  *prometheus.CounterVec // labels: reason={validation,renderer_not_found,empty_timeline}
	SessionActive   prometheus.Gauge
	FramesRendered  *prometheus.CounterVec // labels: mode
	WaveTicks       prometheus.Counter
	ComputeDuration prometheus.Histogram

	// Lifecycle filter metrics.
	FilterDropped  prometheus.Counter
	FilterFailOpen prometheus.Counter

	// Feed and transport metrics.
	FeedEventsConsumed prometheus.Counter
	FeedParseErrors    prometheus.Counter
	StreamClients      prometheus.Gauge
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SessionsStarted,
		m.StartsRejected,
		m.SessionActive,
		m.FramesRendered,
		m.WaveTicks,
		m.ComputeDuration,
		m.FilterDropped,
		m.FilterFailOpen,
		m.FeedEventsConsumed,
		m.FeedParseErrors,
		m.StreamClients,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_anim",
			Name:      "sessions_started_total",
			Help:      "Animation sessions successfully started, by mode.",
		}, []string{"mode"}),
		StartsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_anim",
			Name:      "starts_rejected_total",
			Help:      "Session start attempts rejected, by reason.",
		}, []string{"reason"}),
		SessionActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_anim",
			Name:      "session_active",
			Help:      "1 while an animation session is active.",
		}),
		FramesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_anim",
			Name:      "frames_rendered_total",
			Help:      "Full display-state renders, by mode.",
		}, []string{"mode"}),
		WaveTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_anim",
			Name:      "wave_ticks_total",
			Help:      "Continuous wave-clock radius updates.",
		}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazard_anim",
			Name:      "compute_duration_seconds",
			Help:      "Time to compute a display state for one timestamp.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		FilterDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_anim",
			Name:      "filter_dropped_total",
			Help:      "Events outside their lifecycle at the requested time.",
		}),
		FilterFailOpen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_anim",
			Name:      "filter_fail_open_total",
			Help:      "Events rendered fully visible due to unparseable timestamps.",
		}),
		FeedEventsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_anim",
			Name:      "feed_events_consumed_total",
			Help:      "Hazard events ingested from the live feed.",
		}),
		FeedParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_anim",
			Name:      "feed_parse_errors_total",
			Help:      "Feed messages that failed to parse.",
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_anim",
			Name:      "stream_clients",
			Help:      "Connected websocket frame-stream clients.",
		}),
	}
}
