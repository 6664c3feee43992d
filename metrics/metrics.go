package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "league_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// Broadcast hub
	WSSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "league_ws_sessions",
			Help: "Currently connected websocket sessions",
		},
	)

	BroadcastDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_broadcast_delivered_total",
			Help: "Messages queued to a session, per channel",
		},
		[]string{"channel"},
	)

	BroadcastDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_broadcast_dropped_total",
			Help: "Messages not delivered, per channel and reason",
		},
		[]string{"channel", "reason"}, // "stale", "hub_busy", "slow_session"
	)

	// Mutation gateway
	Mutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_mutations_total",
			Help: "Mutation gateway operations by kind, operation and result",
		},
		[]string{"kind", "op", "result"},
	)

	// Client replica
	ReplicaFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_replica_fetches_total",
			Help: "Replica fetches by resource and result",
		},
		[]string{"resource", "result"},
	)
)
