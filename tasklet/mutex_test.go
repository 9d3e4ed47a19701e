package tasklet

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMutex_TryLockUncontended(t *testing.T) {
	m := NewMutex()
	require.True(t, m.TryLock())
	require.False(t, m.TryLock())
	m.Unlock()
	require.True(t, m.TryLock())
}

func TestMutex_UnlockUnlockedPanics(t *testing.T) {
	m := NewMutex()
	require.Panics(t, func() { m.Unlock() })
}

func TestMutex_SerializesConcurrentIncrements(t *testing.T) {
	m := NewMutex()
	counter := 0

	const goroutines = 32
	const perGoroutine = 500

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, goroutines*perGoroutine, counter)
}
