package kvs

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCreateNextCleansOrphanFromCrashedCompaction reproduces the state
// left behind when a process crashes between compaction's Flush and
// Commit steps (§4.F): the new segment file exists on disk but nothing
// ever referenced it. The next compaction attempt computes the same id
// and must be able to create it again rather than fail EEXIST forever.
func TestCreateNextCleansOrphanFromCrashedCompaction(t *testing.T) {
	sm, err := newSegmentManager(tempDir(t))
	require.NoError(t, err)

	orphan, err := os.Create(sm.pathFor(1))
	require.NoError(t, err)
	_, err = orphan.Write([]byte("leftover bytes from a crashed compaction"))
	require.NoError(t, err)
	require.NoError(t, orphan.Close())

	f, err := sm.createNext(1)
	require.NoError(t, err)
	defer f.Close()

	info, err := f.Stat()
	require.NoError(t, err)
	require.Zero(t, info.Size())
}
