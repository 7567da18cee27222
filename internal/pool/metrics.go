package pool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type poolMetrics struct {
	jobsSubmittedTotal prometheus.Counter
	panicsTotal        prometheus.Counter
}

func newPoolMetrics(reg prometheus.Registerer, variant string) *poolMetrics {
	factory := promauto.With(reg)
	return &poolMetrics{
		jobsSubmittedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "kvd",
			Subsystem:   "pool",
			Name:        "jobs_submitted_total",
			Help:        "Total jobs submitted to the pool.",
			ConstLabels: prometheus.Labels{"variant": variant},
		}),
		panicsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "kvd",
			Subsystem:   "pool",
			Name:        "worker_panics_total",
			Help:        "Total job panics recovered by the pool.",
			ConstLabels: prometheus.Labels{"variant": variant},
		}),
	}
}
