package kvs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"kvd/internal/engine"
)

// statusFileName names the engine state file described in spec §6:
// <dir>/status.json holding the current active segment id.
const statusFileName = "status.json"

type status struct {
	CurFileID uint64 `json:"cur_file_id"`
}

// segmentManager owns segment file naming, creation, and deletion inside
// a single engine directory, plus persistence of the active segment id.
// It mirrors the teacher's segment-file bookkeeping in wal.go (Open's
// recovery loop, newSegment, deleteSegments) collapsed to the spec's
// single-active-segment model: there is always exactly one appendable
// segment, never a list of sealed ones to scan.
type segmentManager struct {
	dir string
}

func newSegmentManager(dir string) (*segmentManager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, engine.IoError("create engine directory", err)
	}
	return &segmentManager{dir: dir}, nil
}

func (m *segmentManager) statusPath() string {
	return filepath.Join(m.dir, statusFileName)
}

func (m *segmentManager) pathFor(id uint64) string {
	return filepath.Join(m.dir, fmt.Sprintf("%d.log", id))
}

// loadStatus reads status.json, defaulting to segment id 0 if the file
// is absent (fresh engine directory).
func (m *segmentManager) loadStatus() (uint64, error) {
	f, err := os.Open(m.statusPath())
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, engine.IoError("open status file", err)
	}
	defer f.Close()

	var st status
	if err := json.NewDecoder(f).Decode(&st); err != nil {
		return 0, engine.SerdeError("decode status file", err)
	}
	return st.CurFileID, nil
}

// persistState rewrites status.json to point at id via truncate-then-
// write. Per spec §4.C this need not be atomic: a failed compaction
// leaves the old segment present and the old status file still pointing
// at it until the new status file write completes, so a torn write here
// just surfaces as a parse error (or stale-but-valid id) on the next
// open, never silent data loss.
func (m *segmentManager) persistState(id uint64) error {
	f, err := os.OpenFile(m.statusPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return engine.IoError("open status file for write", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(status{CurFileID: id}); err != nil {
		return engine.IoError("write status file", err)
	}
	return f.Sync()
}

// openActive opens (creating if absent) the segment file for id for
// append, returning the handle and its current size.
func (m *segmentManager) openActive(id uint64) (*os.File, int64, error) {
	f, err := os.OpenFile(m.pathFor(id), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, 0, engine.IoError("open active segment", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, engine.IoError("stat active segment", err)
	}
	return f, info.Size(), nil
}

// createNext creates a brand new, empty segment file for id. Under the
// single-active-segment invariant (spec §3), id can only already exist
// on disk as an orphan left behind by a compaction that crashed between
// its own Flush and Commit steps (spec §4.F) - never as a live segment,
// since the active segment is always activeID, one lower. createNext
// removes that orphan before creating, so a single crash window doesn't
// wedge every later compaction attempt behind a permanent EEXIST.
func (m *segmentManager) createNext(id uint64) (*os.File, error) {
	if err := m.delete(id); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(m.pathFor(id), os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		return nil, engine.IoError("create next segment", err)
	}
	return f, nil
}

// delete removes the segment file for id. It is not an error for the
// file to already be gone (idempotent cleanup after a crash between
// compaction's commit and GC steps).
func (m *segmentManager) delete(id uint64) error {
	if err := os.Remove(m.pathFor(id)); err != nil && !os.IsNotExist(err) {
		return engine.IoError("delete segment", err)
	}
	return nil
}

// openForRead opens the segment file for id as read-only. Readers open
// their own handle per call (spec §5) rather than sharing the writer's.
func (m *segmentManager) openForRead(id uint64) (*os.File, error) {
	f, err := os.Open(m.pathFor(id))
	if err != nil {
		return nil, engine.IoError("open segment for read", err)
	}
	return f, nil
}
