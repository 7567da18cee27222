package kvs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"kvd/internal/engine"
)

// get implements spec §4.E: a lock-free point read that never takes the
// writer's mutex. If the segment a locator points at has just been
// deleted by a concurrent compaction, it retries the index lookup
// exactly once - correct because compaction publishes the new locator
// before deleting the old segment (spec §4.F step 4/5).
func (s *Store) get(key string) (string, bool, error) {
	s.metrics.getsTotal.Inc()

	loc, ok := s.idx.get(key)
	if !ok {
		return "", false, nil
	}

	val, err := s.readLocator(loc)
	if err == nil {
		s.metrics.getHitsTotal.Inc()
		return val, true, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", false, err
	}

	s.metrics.readerRetriesTotal.Inc()
	loc, ok = s.idx.get(key)
	if !ok {
		return "", false, nil
	}

	val, err = s.readLocator(loc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if _, stillThere := s.idx.get(key); !stillThere {
				return "", false, nil
			}
		}
		return "", false, err
	}
	s.metrics.getHitsTotal.Inc()
	return val, true, nil
}

// readLocator opens its own handle on the segment identified by loc
// (spec §5: "readers open their own file handles"), seeks to its
// offset, and decodes exactly loc.Length bytes as a Set record.
func (s *Store) readLocator(loc Locator) (string, error) {
	f, err := s.sm.openForRead(loc.SegmentID)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, loc.Length)
	if _, err := f.ReadAt(buf, int64(loc.Offset)); err != nil {
		return "", engine.IoError("read record at locator", err)
	}

	var rec record
	if err := json.Unmarshal(buf, &rec); err != nil {
		return "", engine.SerdeError("decode record at locator", err)
	}
	if rec.Kind != kindSet {
		return "", engine.SerdeError("unexpected record kind at locator", fmt.Errorf("want %s, got %s", kindSet, rec.Kind))
	}

	s.metrics.bytesReadTotal.Add(float64(loc.Length))
	return rec.Value, nil
}
