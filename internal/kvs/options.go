package kvs

import (
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
)

// defaultCompactThreshold is the reclaimable-bytes watermark (spec §4.D
// step 6 / §9) that triggers an inline compaction on the writer path.
const defaultCompactThreshold = 1 << 20 // 1 MiB

type config struct {
	logger           log.Logger
	registerer       prometheus.Registerer
	syncEvery        int
	compactThreshold uint64
}

func defaultConfig() *config {
	return &config{
		logger:           log.NewNopLogger(),
		registerer:       prometheus.NewRegistry(),
		syncEvery:        0,
		compactThreshold: defaultCompactThreshold,
	}
}

// Option configures Open, following the teacher's walOpt functional
// option pattern.
type Option func(*config)

// WithLogger sets the go-kit logger used for lifecycle and error events
// (compaction, segment rotation, replay truncation).
func WithLogger(l log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithRegisterer sets the prometheus registerer metrics are registered
// against. Defaults to a private registry so multiple Stores opened in
// the same process (e.g. in tests) never collide on metric names.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) { c.registerer = reg }
}

// WithSyncEvery makes the writer fsync the active segment every n
// mutating calls instead of relying on the OS buffer alone (spec §9
// Open Question: fsync discipline made explicit and configurable). 0
// (the default) means never fsync except at compaction commit, where an
// fsync is always mandatory regardless of this setting.
func WithSyncEvery(n int) Option {
	return func(c *config) { c.syncEvery = n }
}

// WithCompactThreshold overrides the reclaimable-bytes watermark that
// triggers inline compaction (default 1 MiB, spec §9).
func WithCompactThreshold(n uint64) Option {
	return func(c *config) { c.compactThreshold = n }
}
