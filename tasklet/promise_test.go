package tasklet

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromise_FulfillBeforeAwait(t *testing.T) {
	pr := NewPromise[int](nil)
	pr.Fulfill(42)
	f := pr.Future()
	require.True(t, f.IsComplete())
	require.Equal(t, 42, f.Await())
}

func TestPromise_FulfillAfterAwait(t *testing.T) {
	pr := NewPromise[int](nil)
	f := pr.Future()
	require.False(t, f.IsComplete())

	var wg sync.WaitGroup
	var got int
	wg.Add(1)
	go func() {
		defer wg.Done()
		got = f.Await()
	}()

	pr.Fulfill(7)
	wg.Wait()
	require.Equal(t, 7, got)
}

func TestPromise_DoubleFulfillPanics(t *testing.T) {
	pr := NewPromise[int](nil)
	pr.Fulfill(1)
	require.Panics(t, func() { pr.Fulfill(2) })
}

func TestPromise_ManyWaitersAllResume(t *testing.T) {
	pr := NewPromise[int](nil)
	f := pr.Future()

	const n = 64
	var wg sync.WaitGroup
	results := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.Await()
		}(i)
	}

	pr.Fulfill(99)
	wg.Wait()
	for _, r := range results {
		require.Equal(t, 99, r)
	}
}

func TestFuture_AwaitOnTasklet(t *testing.T) {
	s := New(WithWorkerCount(2))
	out := Run(context.Background(), s, func() int {
		inner := Schedule(s, func() int { return 5 })
		return inner.Await() * 2
	})
	require.Equal(t, 10, out)
}

func TestAndThen_ChainsAfterFulfillment(t *testing.T) {
	s := New(WithWorkerCount(2))
	out := Run(context.Background(), s, func() int {
		base := Schedule(s, func() int { return 3 })
		chained := AndThen(base, func(v int) int { return v + 1 })
		return chained.Await()
	})
	require.Equal(t, 4, out)
}
