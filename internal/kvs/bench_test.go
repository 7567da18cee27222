package kvs

import (
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"kvd/internal/sled"
)

func openKVSBench(b *testing.B) (*Store, func()) {
	dir, err := os.MkdirTemp("", "kvd-bench-kvs-*")
	require.NoError(b, err)
	st, err := Open(dir)
	require.NoError(b, err)
	return st, func() {
		st.Close()
		os.RemoveAll(dir)
	}
}

func openSledBench(b *testing.B) (*sled.Store, func()) {
	dir, err := os.MkdirTemp("", "kvd-bench-sled-*")
	require.NoError(b, err)
	st, err := sled.Open(dir)
	require.NoError(b, err)
	return st, func() {
		st.Close()
		os.RemoveAll(dir)
	}
}

type engineUnderTest interface {
	Set(key, value string) error
	Get(key string) (string, bool, error)
}

// BenchmarkSet compares Set throughput between the kvs and sled engine
// kinds across a range of value sizes, the way the teacher benchmarks
// its WAL against raftboltdb in bench/bench_test.go.
func BenchmarkSet(b *testing.B) {
	sizes := []int{10, 1024, 100 * 1024}
	for _, size := range sizes {
		value := make([]byte, size)
		for i := range value {
			value[i] = byte('a' + i%26)
		}

		b.Run(fmt.Sprintf("valueSize=%d/v=kvs", size), func(b *testing.B) {
			st, done := openKVSBench(b)
			defer done()
			runSetBench(b, st, value)
		})
		b.Run(fmt.Sprintf("valueSize=%d/v=sled", size), func(b *testing.B) {
			st, done := openSledBench(b)
			defer done()
			runSetBench(b, st, value)
		})
	}
}

func runSetBench(b *testing.B, eng engineUnderTest, value []byte) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := strconv.Itoa(i)
		if err := eng.Set(key, string(value)); err != nil {
			b.Fatalf("set: %s", err)
		}
	}
}

// BenchmarkGet compares point-read throughput once n keys are resident.
func BenchmarkGet(b *testing.B) {
	counts := []int{1000, 100_000}
	for _, n := range counts {
		kvsStore, kvsDone := openKVSBench(b)
		populate(b, kvsStore, n)

		sledStore, sledDone := openSledBench(b)
		populate(b, sledStore, n)

		b.Run(fmt.Sprintf("numKeys=%d/v=kvs", n), func(b *testing.B) {
			runGetBench(b, kvsStore, n)
		})
		b.Run(fmt.Sprintf("numKeys=%d/v=sled", n), func(b *testing.B) {
			runGetBench(b, sledStore, n)
		})

		kvsDone()
		sledDone()
	}
}

func populate(b *testing.B, eng engineUnderTest, n int) {
	for i := 0; i < n; i++ {
		require.NoError(b, eng.Set(strconv.Itoa(i), "fixed-128-byte-value-00000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000"))
	}
}

func runGetBench(b *testing.B, eng engineUnderTest, n int) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, err := eng.Get(strconv.Itoa(i % n))
		require.NoError(b, err)
	}
}
