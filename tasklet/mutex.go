package tasklet

import "sync/atomic"

// mutexWaiter is one node of a Mutex's contended wait list.
type mutexWaiter struct {
	next   *mutexWaiter
	resume func()
}

// mutexUnlocked is the sentinel head value meaning "unlocked". It is
// a distinct, never-dereferenced pointer identity, distinguishable
// from both nil ("locked, no waiters") and any real waiter node
// ("locked, with waiters") — exactly the three states spec §4.4
// describes for the Mutex head.
var mutexUnlocked = &mutexWaiter{}

// Mutex is a tasklet-aware mutual exclusion lock: a contended
// acquirer suspends its tasklet rather than blocking an OS thread.
// There is no thundering-herd avoidance on unlock — every waiter
// queued at the moment of unlock is woken and re-races for the lock —
// which spec §4.4 explicitly accepts as a design tradeoff in favor of
// a simpler wait list (each contended Lock attempt allocates its own
// waiter node); fairness is not guaranteed,
// and starvation is bounded in practice only by LIFO wait ordering
// combined with work-stealing redistributing who gets to race first.
type Mutex struct {
	head atomic.Pointer[mutexWaiter]
}

// NewMutex constructs an unlocked Mutex.
func NewMutex() *Mutex {
	m := &Mutex{}
	m.head.Store(mutexUnlocked)
	return m
}

// TryLock attempts to acquire the lock without suspending. It
// succeeds only on the uncontended fast path (no waiters queued).
func (m *Mutex) TryLock() bool {
	return m.head.CompareAndSwap(mutexUnlocked, nil)
}

// Lock acquires the mutex, suspending the calling tasklet if
// contended. Every wake-up re-races the fast-path CAS, since Unlock
// resets the head straight to mutexUnlocked rather than handing
// ownership to a specific waiter.
func (m *Mutex) Lock() {
	for {
		if m.head.CompareAndSwap(mutexUnlocked, nil) {
			return
		}
		observed := m.head.Load()
		if observed == mutexUnlocked {
			continue // raced with an Unlock; retry the fast path
		}

		t := currentTasklet()
		blockCh := make(chan struct{})
		w := &mutexWaiter{next: observed}
		if t != nil {
			w.resume = func() { t.sched.scheduleResume(t) }
		} else {
			w.resume = func() { close(blockCh) }
		}
		if !m.head.CompareAndSwap(observed, w) {
			continue // head changed under us; retry from the top
		}

		if t != nil {
			t.suspendOnWaitList()
		} else {
			<-blockCh
		}
		// Woken by Unlock; loop back and re-race for the lock.
	}
}

// Unlock releases the mutex and wakes every queued waiter. Unlocking
// an already-unlocked Mutex is a programming error and panics, per
// §7's "invariant violations assert and abort".
func (m *Mutex) Unlock() {
	old := m.head.Swap(mutexUnlocked)
	if old == mutexUnlocked {
		panic("tasklet: unlock of unlocked Mutex")
	}
	for w := old; w != nil; {
		next := w.next
		w.resume()
		w = next
	}
}
