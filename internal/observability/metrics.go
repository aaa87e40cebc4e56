package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Relay metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_connections_active",
			Help: "Number of live WebSocket connections",
		},
	)

	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_events_received_total",
			Help: "Total inbound client events by type",
		},
		[]string{"event"},
	)

	BroadcastsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_broadcasts_sent_total",
			Help: "Total outbound deliveries by audience tier",
		},
		[]string{"audience"},
	)

	MessagesPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_posted_total",
			Help: "Total persisted chat messages",
		},
	)

	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	ReportsFiled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_reports_filed_total",
			Help: "Total message reports persisted",
		},
	)

	AdminCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_admin_commands_total",
			Help: "Total admin commands dispatched by command",
		},
		[]string{"command"},
	)
)
