// Package pool implements the thread pool variants from spec §4.I: a
// fixed-size shared-queue pool with panic-resilient worker replacement
// (the server's default), a naive thread-per-job pool, and an adapter
// over an external work-stealing pool.
package pool

import (
	"runtime"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Pool is the capability every variant satisfies: enqueue a job, and
// shut down. SharedQueuePool and NaivePool wait for in-flight work to
// finish on Shutdown; AntsPool does not.
type Pool interface {
	Spawn(job func())
	Shutdown()
}

type poisonPill struct{}

// SharedQueuePool is a fixed-size pool of workers pulling from one
// shared job queue. On worker panic, a replacement worker is launched
// automatically so the pool size never shrinks - panic resilience is a
// contract, not an optimization (spec §4.I).
type SharedQueuePool struct {
	jobs chan interface{}
	size int
	wg   sync.WaitGroup

	logger       log.Logger
	metrics      *poolMetrics
	shutdownOnce sync.Once
}

// NewSharedQueuePool starts size workers (or runtime.NumCPU() if size is
// 0, per spec §4.I) sharing one job queue.
func NewSharedQueuePool(size int, opts ...Option) *SharedQueuePool {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if size <= 0 {
		size = runtime.NumCPU()
	}

	p := &SharedQueuePool{
		jobs:    make(chan interface{}, size*4),
		size:    size,
		logger:  cfg.logger,
		metrics: newPoolMetrics(cfg.registerer, "shared_queue"),
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.runWorker()
	}
	return p
}

// Spawn enqueues job for a worker to run. It may block if the job queue
// is full.
func (p *SharedQueuePool) Spawn(job func()) {
	p.metrics.jobsSubmittedTotal.Inc()
	p.jobs <- job
}

// Shutdown sends size termination sentinels and waits until every
// worker - including any panic-spawned replacement still running - has
// exited. Jobs already enqueued before the sentinels are sent still run
// to completion; jobs submitted concurrently with Shutdown have no
// ordering guarantee relative to the sentinels (spec §4.I).
func (p *SharedQueuePool) Shutdown() {
	p.shutdownOnce.Do(func() {
		for i := 0; i < p.size; i++ {
			p.jobs <- poisonPill{}
		}
	})
	p.wg.Wait()
}

func (p *SharedQueuePool) runWorker() {
	for raw := range p.jobs {
		if _, isPill := raw.(poisonPill); isPill {
			p.wg.Done()
			return
		}

		job := raw.(func())
		if p.runJob(job) {
			// The job panicked: this worker is done, but the pool's
			// size contract isn't - start its replacement before this
			// goroutine exits so the live worker count never dips.
			p.metrics.panicsTotal.Inc()
			p.wg.Add(1)
			go p.runWorker()
			p.wg.Done()
			return
		}
	}
}

// runJob runs job, recovering from a panic so it can never take down
// the whole process. It reports whether a panic occurred.
func (p *SharedQueuePool) runJob(job func()) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			level.Error(p.logger).Log("msg", "pool worker panicked, launching replacement", "panic", r)
		}
	}()
	job()
	return false
}
