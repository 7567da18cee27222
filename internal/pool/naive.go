package pool

import (
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// NaivePool spawns one goroutine per job with no shared queue and no
// bound on concurrency - the simplest possible Pool (spec §4.I).
type NaivePool struct {
	wg      sync.WaitGroup
	logger  log.Logger
	metrics *poolMetrics
}

var _ Pool = (*NaivePool)(nil)

func NewNaivePool(opts ...Option) *NaivePool {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &NaivePool{
		logger:  cfg.logger,
		metrics: newPoolMetrics(cfg.registerer, "naive"),
	}
}

func (p *NaivePool) Spawn(job func()) {
	p.metrics.jobsSubmittedTotal.Inc()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.metrics.panicsTotal.Inc()
				level.Error(p.logger).Log("msg", "naive pool job panicked", "panic", r)
			}
		}()
		job()
	}()
}

// Shutdown waits for every goroutine spawned so far to finish. There is
// no queue to drain and no sentinel protocol - a job spawned after
// Shutdown has already returned simply runs unsupervised.
func (p *NaivePool) Shutdown() {
	p.wg.Wait()
}
