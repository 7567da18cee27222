package kvs

import (
	"io"
	"os"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"kvd/internal/engine"
)

// writer serializes every mutation (set, remove, compact) the way the
// teacher's WAL serializes StoreLogs/rotate under writeMu: one mutex
// guards the active segment file handle, the running file length, and
// the reclaimable-byte counter. Readers never take this lock (spec §5).
type writer struct {
	mu sync.Mutex

	sm      *segmentManager
	idx     *index
	logger  log.Logger
	metrics *storeMetrics

	activeID    uint64
	activeFile  *os.File
	fileLen     uint64
	reclaimable uint64

	syncEvery       int
	writesSinceSync int

	compactThreshold uint64
}

// openWriter opens (or initializes) the engine directory at dir,
// replays the active segment to rebuild the index and reclaimable
// counter, and returns a writer ready for Set/Remove.
func openWriter(dir string, logger log.Logger, metrics *storeMetrics, syncEvery int, compactThreshold uint64) (*writer, *index, error) {
	sm, err := newSegmentManager(dir)
	if err != nil {
		return nil, nil, err
	}

	id, err := sm.loadStatus()
	if err != nil {
		return nil, nil, err
	}

	f, size, err := sm.openActive(id)
	if err != nil {
		return nil, nil, err
	}

	w := &writer{
		sm:               sm,
		idx:              newIndex(),
		logger:           logger,
		metrics:          metrics,
		activeID:         id,
		activeFile:       f,
		fileLen:          uint64(size),
		syncEvery:        syncEvery,
		compactThreshold: compactThreshold,
	}

	if err := w.replay(); err != nil {
		f.Close()
		return nil, nil, err
	}
	w.metrics.activeSegmentBytes.Set(float64(w.fileLen))
	w.metrics.reclaimableBytes.Set(float64(w.reclaimable))

	return w, w.idx, nil
}

// replay rebuilds the index and reclaimable counter by reading every
// record in the active segment in file order (spec §3 invariant 3,
// §4.D "Open/recovery"). A partial trailing frame - a decode error
// right at EOF, the signature of a torn write from a crash mid-append -
// is treated as absent and the file is truncated back to the last good
// frame boundary rather than treated as a fatal error.
func (w *writer) replay() error {
	rf, err := os.Open(w.sm.pathFor(w.activeID))
	if err != nil {
		return engine.IoError("open active segment for replay", err)
	}
	defer rf.Close()

	stream := newRecordStream(rf)
	var lastGood int64
	for {
		rec, offset, err := stream.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Partial trailing frame: stop here, truncate below.
			level.Error(w.logger).Log("msg", "truncating partial trailing record on replay", "segment", w.activeID, "offset", lastGood, "err", err)
			break
		}

		length := uint64(offset - lastGood)
		switch rec.Kind {
		case kindSet:
			prior, had := w.idx.insert(rec.Key, Locator{SegmentID: w.activeID, Offset: uint64(lastGood), Length: length})
			if had {
				w.reclaimable += prior.Length
			}
		case kindRm:
			prior, had := w.idx.remove(rec.Key)
			if had {
				w.reclaimable += prior.Length
			}
			w.reclaimable += length
		}
		lastGood = offset
	}

	if uint64(lastGood) != w.fileLen {
		if err := w.activeFile.Truncate(lastGood); err != nil {
			return engine.IoError("truncate partial trailing record", err)
		}
		w.fileLen = uint64(lastGood)
	}
	return nil
}

// flush implements the fsync discipline from spec §4.D/§9: every
// mutating call already reaches the OS on Write (this engine never
// buffers writes in user space), and an explicit fsync additionally
// happens every syncEvery calls when configured, and always at
// compaction commit (compactor.go).
func (w *writer) flush() error {
	if w.syncEvery <= 0 {
		return nil
	}
	w.writesSinceSync++
	if w.writesSinceSync < w.syncEvery {
		return nil
	}
	w.writesSinceSync = 0
	if err := w.activeFile.Sync(); err != nil {
		return engine.IoError("fsync active segment", err)
	}
	return nil
}

// set implements spec §4.D set(k, v).
func (w *writer) set(key, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := encodeSet(w.activeFile, key, value)
	if err != nil {
		// Write-before-publish ordering: the index is untouched on Io/Serde.
		return err
	}
	if err := w.flush(); err != nil {
		return err
	}

	length := uint64(n)
	loc := Locator{SegmentID: w.activeID, Offset: w.fileLen, Length: length}
	prior, had := w.idx.insert(key, loc)
	if had {
		w.reclaimable += prior.Length
	}
	w.fileLen += length

	w.metrics.setsTotal.Inc()
	w.metrics.bytesWrittenTotal.Add(float64(length))
	w.metrics.reclaimableBytes.Set(float64(w.reclaimable))
	w.metrics.activeSegmentBytes.Set(float64(w.fileLen))

	w.maybeCompact()
	return nil
}

// remove implements spec §4.D remove(k).
func (w *writer) remove(key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	prior, had := w.idx.get(key)
	if !had {
		return engine.KeyNotFound(key)
	}

	n, err := encodeRemove(w.activeFile, key)
	if err != nil {
		return err
	}
	if err := w.flush(); err != nil {
		return err
	}

	length := uint64(n)
	w.idx.remove(key)
	w.reclaimable += prior.Length + length
	w.fileLen += length

	w.metrics.removesTotal.Inc()
	w.metrics.bytesWrittenTotal.Add(float64(length))
	w.metrics.reclaimableBytes.Set(float64(w.reclaimable))
	w.metrics.activeSegmentBytes.Set(float64(w.fileLen))

	w.maybeCompact()
	return nil
}

// maybeCompact runs compaction inline on the writer path once
// reclaimable bytes cross compactThreshold (spec §4.D step 6). A
// compaction failure is logged, not propagated: the set/remove that
// triggered it already completed successfully.
func (w *writer) maybeCompact() {
	if w.reclaimable <= w.compactThreshold {
		return
	}
	if err := w.compact(); err != nil {
		level.Error(w.logger).Log("msg", "compaction failed", "err", err)
		w.metrics.compactionErrors.Inc()
	}
}

func (w *writer) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeFile.Close()
}
