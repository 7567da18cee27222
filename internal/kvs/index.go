package kvs

import (
	"sync/atomic"

	"github.com/benbjohnson/immutable"
)

// Locator identifies a persisted Set record: which segment it lives in,
// its byte offset within that segment, and its frame length. Remove
// records are never located - the index simply has no entry for a
// removed key.
type Locator struct {
	SegmentID uint64
	Offset    uint64
	Length    uint64
}

// index is the concurrent key -> Locator map described in spec §4.B. It
// is backed by a persistent (copy-on-write) sorted map published through
// an atomic.Value, the same technique the teacher uses to publish its
// *state snapshot: many concurrent Get calls load the current snapshot
// without taking any lock, while insert/remove (always called with the
// writer's mutex already held) build a new snapshot and publish it.
//
// Iteration during compaction just loads whatever snapshot is current at
// the time it starts iterating - since SortedMap is immutable, that is
// automatically a consistent point-in-time view, with no separate
// reference-counting/finalizer machinery needed (unlike the teacher's
// state, a Locator owns no file handle that needs to outlive the
// snapshot).
type index struct {
	v atomic.Value // *immutable.SortedMap[string, Locator]
}

func newIndex() *index {
	idx := &index{}
	idx.v.Store(&immutable.SortedMap[string, Locator]{})
	return idx
}

func (x *index) snapshot() *immutable.SortedMap[string, Locator] {
	return x.v.Load().(*immutable.SortedMap[string, Locator])
}

// get looks up key without synchronizing with any writer.
func (x *index) get(key string) (Locator, bool) {
	return x.snapshot().Get(key)
}

// insert installs loc for key, returning the prior locator if any. The
// caller must hold the writer's mutex.
func (x *index) insert(key string, loc Locator) (Locator, bool) {
	m := x.snapshot()
	prior, had := m.Get(key)
	x.v.Store(m.Set(key, loc))
	return prior, had
}

// remove deletes key, returning the prior locator if any. The caller
// must hold the writer's mutex.
func (x *index) remove(key string) (Locator, bool) {
	m := x.snapshot()
	prior, had := m.Get(key)
	if !had {
		return Locator{}, false
	}
	x.v.Store(m.Delete(key))
	return prior, true
}

func (x *index) len() int {
	return x.snapshot().Len()
}

// iter returns an iterator over a stable snapshot of the index as of the
// moment it is called - the caller's view never changes even if
// insert/remove run concurrently afterwards. Used only by the compactor.
func (x *index) iter() *immutable.SortedMapIterator[string, Locator] {
	return x.snapshot().Iterator()
}
