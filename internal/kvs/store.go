// Package kvs implements the append-only log-structured storage engine
// from spec §4 (components A-G, kind "kvs"): operation record codec,
// concurrent index, log segment manager, writer, reader, and compactor,
// presented behind the Store façade.
package kvs

import (
	"github.com/go-kit/log"

	"kvd/internal/engine"
)

// Store is the "kvs" engine façade (spec §4.G). It is cheap to Clone:
// clones share the same index, writer (and its mutex), segment manager,
// and metrics - this is what lets a server hand one clone to every pool
// worker, mirroring the teacher's *WAL being shared across goroutines.
type Store struct {
	dir     string
	sm      *segmentManager
	idx     *index
	w       *writer
	logger  log.Logger
	metrics *storeMetrics
}

var _ engine.Engine = (*Store)(nil)

// Open opens (or initializes) a kvs engine directory at dir, replaying
// the active segment to rebuild the index (spec §4.D "Open/recovery").
func Open(dir string, opts ...Option) (*Store, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	metrics := newStoreMetrics(cfg.registerer)
	w, idx, err := openWriter(dir, cfg.logger, metrics, cfg.syncEvery, cfg.compactThreshold)
	if err != nil {
		return nil, err
	}

	return &Store{
		dir:     dir,
		sm:      w.sm,
		idx:     idx,
		w:       w,
		logger:  cfg.logger,
		metrics: metrics,
	}, nil
}

// Clone returns a handle sharing this Store's index, writer, and
// segment manager - safe to hand to a different goroutine.
func (s *Store) Clone() *Store {
	clone := *s
	return &clone
}

func (s *Store) Set(key, value string) error { return s.w.set(key, value) }

func (s *Store) Get(key string) (string, bool, error) { return s.get(key) }

func (s *Store) Remove(key string) error { return s.w.remove(key) }

func (s *Store) Kind() engine.Kind { return engine.KindKVS }

func (s *Store) Close() error { return s.w.close() }
