// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	BoardMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_mutations_total",
		Help: "Successful room and board mutations by event type.",
	}, []string{"op"})

	RoomPurges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "room_purges_total",
		Help: "Room purge attempts by result.",
	}, []string{"result"})
)
