package kvs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// storeMetrics mirrors the teacher's walMetrics: one struct of
// promauto-registered counters/gauges built once per Store and shared
// across its clones.
type storeMetrics struct {
	setsTotal           prometheus.Counter
	removesTotal        prometheus.Counter
	getsTotal           prometheus.Counter
	getHitsTotal        prometheus.Counter
	bytesWrittenTotal   prometheus.Counter
	bytesReadTotal      prometheus.Counter
	reclaimableBytes    prometheus.Gauge
	compactionsTotal    prometheus.Counter
	compactionErrors    prometheus.Counter
	readerRetriesTotal  prometheus.Counter
	activeSegmentBytes  prometheus.Gauge
}

func newStoreMetrics(reg prometheus.Registerer) *storeMetrics {
	return &storeMetrics{
		setsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvd_kvs_sets_total",
			Help: "kvd_kvs_sets_total counts successfully completed Set calls.",
		}),
		removesTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvd_kvs_removes_total",
			Help: "kvd_kvs_removes_total counts successfully completed Remove calls.",
		}),
		getsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvd_kvs_gets_total",
			Help: "kvd_kvs_gets_total counts Get calls, hit or miss.",
		}),
		getHitsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvd_kvs_get_hits_total",
			Help: "kvd_kvs_get_hits_total counts Get calls that found a value.",
		}),
		bytesWrittenTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvd_kvs_bytes_written_total",
			Help: "kvd_kvs_bytes_written_total counts bytes appended to segment files.",
		}),
		bytesReadTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvd_kvs_bytes_read_total",
			Help: "kvd_kvs_bytes_read_total counts record bytes read back from segment files.",
		}),
		reclaimableBytes: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "kvd_kvs_reclaimable_bytes",
			Help: "kvd_kvs_reclaimable_bytes is the writer's current reclaimable byte count.",
		}),
		compactionsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvd_kvs_compactions_total",
			Help: "kvd_kvs_compactions_total counts completed compaction runs.",
		}),
		compactionErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvd_kvs_compaction_errors_total",
			Help: "kvd_kvs_compaction_errors_total counts compaction runs that failed.",
		}),
		readerRetriesTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvd_kvs_reader_retries_total",
			Help: "kvd_kvs_reader_retries_total counts Get calls that retried after a concurrent compaction swap.",
		}),
		activeSegmentBytes: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "kvd_kvs_active_segment_bytes",
			Help: "kvd_kvs_active_segment_bytes is the size in bytes of the active segment file.",
		}),
	}
}
