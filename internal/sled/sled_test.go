package sled

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"kvd/internal/engine"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "kvd-sled-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestSledSetGetRemove(t *testing.T) {
	s, err := Open(tempDir(t))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("a", "1"))
	v, ok, err := s.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)

	require.NoError(t, s.Remove("a"))
	_, ok, err = s.Get("a")
	require.NoError(t, err)
	require.False(t, ok)

	err = s.Remove("a")
	require.Error(t, err)
	var kerr *engine.Error
	require.ErrorAs(t, err, &kerr)
	require.Equal(t, engine.KindKeyNotFound, kerr.Kind)
}

func TestSledKind(t *testing.T) {
	s, err := Open(tempDir(t))
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, engine.KindSled, s.Kind())
}
