package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSharedQueuePoolRunsAllJobs(t *testing.T) {
	p := NewSharedQueuePool(4)
	var n int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		p.Spawn(func() {
			defer wg.Done()
			atomic.AddInt64(&n, 1)
		})
	}
	wg.Wait()
	require.EqualValues(t, 100, atomic.LoadInt64(&n))
	p.Shutdown()
}

func TestSharedQueuePoolSurvivesPanic(t *testing.T) {
	p := NewSharedQueuePool(2)

	p.Spawn(func() { panic("boom") })

	var n int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		p.Spawn(func() {
			defer wg.Done()
			atomic.AddInt64(&n, 1)
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("jobs submitted after a panic never completed; pool size did not recover")
	}
	require.EqualValues(t, 20, atomic.LoadInt64(&n))
	p.Shutdown()
}

func TestSharedQueuePoolShutdownWaitsForPending(t *testing.T) {
	p := NewSharedQueuePool(1)
	var ran int32
	p.Spawn(func() {
		time.Sleep(50 * time.Millisecond)
		atomic.StoreInt32(&ran, 1)
	})
	p.Shutdown()
	require.EqualValues(t, 1, atomic.LoadInt32(&ran))
}

func TestNaivePoolRunsAllJobs(t *testing.T) {
	p := NewNaivePool()
	var n int64
	for i := 0; i < 50; i++ {
		p.Spawn(func() { atomic.AddInt64(&n, 1) })
	}
	p.Shutdown()
	require.EqualValues(t, 50, atomic.LoadInt64(&n))
}

func TestNaivePoolSurvivesPanic(t *testing.T) {
	p := NewNaivePool()
	p.Spawn(func() { panic("boom") })
	var n int64
	p.Spawn(func() { atomic.AddInt64(&n, 1) })
	p.Shutdown()
	require.EqualValues(t, 1, atomic.LoadInt64(&n))
}

func TestAntsPoolRunsAllJobs(t *testing.T) {
	p, err := NewAntsPool(4)
	require.NoError(t, err)

	var n int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		p.Spawn(func() {
			defer wg.Done()
			atomic.AddInt64(&n, 1)
		})
	}
	wg.Wait()
	require.EqualValues(t, 50, atomic.LoadInt64(&n))
	p.Shutdown()
}
