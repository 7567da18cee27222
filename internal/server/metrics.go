package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type serverMetrics struct {
	connectionsAcceptedTotal prometheus.Counter
	requestsTotal            *prometheus.CounterVec
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)
	return &serverMetrics{
		connectionsAcceptedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "kvd",
			Subsystem: "server",
			Name:      "connections_accepted_total",
			Help:      "Total TCP connections accepted.",
		}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kvd",
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Total requests dispatched, by operation.",
		}, []string{"op"}),
	}
}
