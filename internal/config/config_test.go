package config

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"kvd/internal/engine"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "kvd-config-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestEnsureEngineKindFirstLaunchPersists(t *testing.T) {
	dir := tempDir(t)
	require.NoError(t, EnsureEngineKind(dir, engine.KindKVS))

	data, err := os.ReadFile(dir + "/server.cfg")
	require.NoError(t, err)
	require.Contains(t, string(data), "kvs")
}

func TestEnsureEngineKindMatchingRelaunchOK(t *testing.T) {
	dir := tempDir(t)
	require.NoError(t, EnsureEngineKind(dir, engine.KindSled))
	require.NoError(t, EnsureEngineKind(dir, engine.KindSled))
}

func TestEnsureEngineKindMismatchFails(t *testing.T) {
	dir := tempDir(t)
	require.NoError(t, EnsureEngineKind(dir, engine.KindKVS))

	err := EnsureEngineKind(dir, engine.KindSled)
	require.Error(t, err)
	var mismatch *ErrEngineMismatch
	require.True(t, errors.As(err, &mismatch))
	require.Equal(t, engine.KindKVS, mismatch.Persisted)
	require.Equal(t, engine.KindSled, mismatch.Requested)
}

func TestDefaultEngineKindFallsBackToSledWhenUnset(t *testing.T) {
	dir := tempDir(t)
	kind, err := DefaultEngineKind(dir)
	require.NoError(t, err)
	require.Equal(t, engine.KindSled, kind)
}

func TestDefaultEngineKindUsesPersistedChoice(t *testing.T) {
	dir := tempDir(t)
	require.NoError(t, EnsureEngineKind(dir, engine.KindKVS))

	kind, err := DefaultEngineKind(dir)
	require.NoError(t, err)
	require.Equal(t, engine.KindKVS, kind)
}
