package kvs

import (
	"github.com/benbjohnson/immutable"
	"github.com/go-kit/log/level"

	"kvd/internal/engine"
)

// compact implements spec §4.F. The caller (maybeCompact) already holds
// w.mu, giving compaction exclusive use of the active segment for its
// duration while readers proceed throughout via the index's lock-free
// snapshot (spec §4.F: "Compaction holds the writer lock for its
// duration; readers proceed throughout").
func (w *writer) compact() error {
	newID := w.activeID + 1
	oldID := w.activeID

	// Plan: open the new segment for append.
	newFile, err := w.sm.createNext(newID)
	if err != nil {
		return err
	}

	src, err := w.sm.openForRead(oldID)
	if err != nil {
		newFile.Close()
		w.sm.delete(newID)
		return err
	}
	defer src.Close()

	// Rewrite: copy every live record into the new segment, building a
	// full replacement index snapshot in memory as we go. The snapshot
	// is only published (below, after Flush) once every byte it
	// references is durably in the new file - never before.
	newIdx := &immutable.SortedMap[string, Locator]{}
	var newOffset uint64
	var buf []byte

	it := w.idx.iter()
	for !it.Done() {
		key, loc, ok := it.Next()
		if !ok {
			break
		}
		if cap(buf) < int(loc.Length) {
			buf = make([]byte, loc.Length)
		}
		buf = buf[:loc.Length]

		if _, err := src.ReadAt(buf, int64(loc.Offset)); err != nil {
			newFile.Close()
			w.sm.delete(newID)
			return engine.IoError("read live record during compaction", err)
		}
		if _, err := newFile.Write(buf); err != nil {
			newFile.Close()
			w.sm.delete(newID)
			return engine.IoError("write compacted record", err)
		}

		newIdx = newIdx.Set(key, Locator{SegmentID: newID, Offset: newOffset, Length: loc.Length})
		newOffset += loc.Length
	}

	// Flush: the new segment must be durable before it is referenced by
	// any published locator or by the on-disk state file.
	if err := newFile.Sync(); err != nil {
		newFile.Close()
		w.sm.delete(newID)
		return engine.IoError("fsync compacted segment", err)
	}

	// Commit: persist the new active segment id, then swap the writer's
	// in-memory state and publish the new index, exactly in that order -
	// a crash between Flush and here leaves the old state file and old
	// segment in force (spec §4.F recovery).
	if err := w.sm.persistState(newID); err != nil {
		newFile.Close()
		w.sm.delete(newID)
		return err
	}

	oldFile := w.activeFile
	w.idx.v.Store(newIdx)
	w.activeID = newID
	w.activeFile = newFile
	w.fileLen = newOffset
	w.reclaimable = 0

	oldFile.Close()

	// GC: the old segment is only ever deleted after the new state is
	// already in force, so a crash here just leaves an orphan file that
	// a later cleanup pass (or the operator) may remove.
	if err := w.sm.delete(oldID); err != nil {
		level.Error(w.logger).Log("msg", "failed to delete old segment after compaction", "segment", oldID, "err", err)
	}

	w.metrics.compactionsTotal.Inc()
	w.metrics.reclaimableBytes.Set(0)
	w.metrics.activeSegmentBytes.Set(float64(newOffset))
	level.Info(w.logger).Log("msg", "compaction complete", "old_segment", oldID, "new_segment", newID, "live_bytes", newOffset)

	return nil
}
