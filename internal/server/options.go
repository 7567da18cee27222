package server

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

// Option configures a Server.
type Option func(*config)

func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) { c.registerer = reg }
}
