package hub

import "github.com/prometheus/client_golang/prometheus"

var (
	// sessionsGauge tracks the number of currently registered sessions.
	sessionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_sessions",
			Help: "Number of currently registered channel sessions.",
		},
	)

	// publishedEvents counts events accepted for fan-out, by kind.
	publishedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_events_published_total",
			Help: "Total number of events published through the hub.",
		},
		[]string{"kind"},
	)

	// droppedEvents counts per-session deliveries skipped because the
	// session's outbound buffer was saturated or its transport closed.
	// Drops are expected under the at-most-once delivery policy.
	droppedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_events_dropped_total",
			Help: "Total number of per-session event deliveries dropped.",
		},
		[]string{"kind"},
	)

	// evictedSessions counts prior sessions closed by a reconnect for the
	// same partner (last-connect-wins).
	evictedSessions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_sessions_evicted_total",
			Help: "Total number of sessions evicted by a newer connection.",
		},
	)
)

func init() {
	prometheus.MustRegister(sessionsGauge, publishedEvents, droppedEvents, evictedSessions)
}
