package pool

import (
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
)

type config struct {
	logger     log.Logger
	registerer prometheus.Registerer
}

func defaultConfig() *config {
	return &config{
		logger:     log.NewNopLogger(),
		registerer: prometheus.NewRegistry(),
	}
}

// Option configures a pool constructor.
type Option func(*config)

// WithLogger sets the logger used for panic and lifecycle messages.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithRegisterer sets the Prometheus registerer the pool's metrics are
// registered against.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) { c.registerer = reg }
}
