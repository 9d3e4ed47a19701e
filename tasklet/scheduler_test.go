package tasklet

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ReturnsCallableResult(t *testing.T) {
	s := New(WithWorkerCount(4))
	got := Run(context.Background(), s, func() string { return "done" })
	require.Equal(t, "done", got)
}

func TestSchedule_FansOutAcrossWorkers(t *testing.T) {
	s := New(WithWorkerCount(4))
	const n = 200

	out := Run(context.Background(), s, func() int64 {
		var total atomic.Int64
		futures := make([]Future[int64], n)
		for i := 0; i < n; i++ {
			i := i
			futures[i] = Schedule(s, func() int64 { return int64(i) })
		}
		for _, f := range futures {
			total.Add(f.Await())
		}
		return total.Load()
	})

	want := int64(n * (n - 1) / 2)
	require.Equal(t, want, out)
}

func TestYield_AllowsOtherTaskletsToRun(t *testing.T) {
	s := New(WithWorkerCount(2))

	out := Run(context.Background(), s, func() []int {
		var mu sync.Mutex
		var order []int

		f1 := Schedule(s, func() int {
			Yield()
			mu.Lock()
			order = append(order, 1)
			mu.Unlock()
			return 1
		})
		f2 := Schedule(s, func() int {
			mu.Lock()
			order = append(order, 2)
			mu.Unlock()
			return 2
		})

		f1.Await()
		f2.Await()
		mu.Lock()
		defer mu.Unlock()
		return append([]int(nil), order...)
	})

	require.Len(t, out, 2)
	require.ElementsMatch(t, []int{1, 2}, out)
}

func TestMutex_AcrossTasklets(t *testing.T) {
	s := New(WithWorkerCount(4))
	m := NewMutex()

	out := Run(context.Background(), s, func() int {
		counter := 0
		const n = 50
		futures := make([]Future[struct{}], n)
		for i := 0; i < n; i++ {
			futures[i] = Schedule(s, func() struct{} {
				m.Lock()
				counter++
				m.Unlock()
				return struct{}{}
			})
		}
		for _, f := range futures {
			f.Await()
		}
		return counter
	})

	require.Equal(t, 50, out)
}
