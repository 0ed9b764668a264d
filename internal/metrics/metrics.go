// Package metrics defines Prometheus metrics for the studio server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "studio_active_sessions",
			Help: "Query sessions currently held by the server",
		},
	)

	VerticesStreamed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_vertices_streamed_total",
			Help: "Vertices drained from query streams into layouts",
		},
	)

	EdgesStreamed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_edges_streamed_total",
			Help: "Edges drained from query streams into layouts",
		},
	)

	Drains = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_stream_drains_total",
			Help: "Stream drain operations performed by render loops",
		},
	)

	StreamErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_stream_errors_total",
			Help: "Query streams that terminated with an error",
		},
	)

	SimulationTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_simulation_ticks_total",
			Help: "Force simulation ticks across all sessions",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "studio_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	HistoryQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "studio_history_queue_depth",
			Help: "Current query history queue depth",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		ActiveSessions, VerticesStreamed, EdgesStreamed,
		Drains, StreamErrors, SimulationTicks,
		WSConnections, HistoryQueueDepth,
	)
}
