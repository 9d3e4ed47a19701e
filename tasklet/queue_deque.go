package tasklet

import (
	"sync"
	"sync/atomic"
)

// workStealingDeque is a single-owner, multi-stealer double-ended
// queue of runnable tasks. The owning worker pushes and pops at the
// head; other workers steal from the tail. Every operation, the
// owner's included, takes the same mutex: there is no unsynchronized
// owner path and no CAS-based steal, so the deque is not lock-free.
//
// A plain mutex-guarded slice backs this implementation rather than
// the classic growable circular buffer: the spec requires SPSC-at-
// owner/MPSC-at-stealers semantics, not a specific memory layout, and
// a slice lets Go's allocator and GC do the work a hand-rolled ring
// buffer would otherwise need to reimplement. The owner and all
// stealers serialize on this one lock, so the owner's path is cheap
// only while no steal is in progress.
type workStealingDeque struct {
	mu    sync.Mutex
	items []task
	steal atomic.Int64 // approximate count, for scheduler heuristics
}

func newWorkStealingDeque() *workStealingDeque {
	return &workStealingDeque{items: make([]task, 0, 256)}
}

// pushHead is called only by the owning worker.
func (d *workStealingDeque) pushHead(t task) {
	d.mu.Lock()
	d.items = append(d.items, t)
	d.mu.Unlock()
	d.steal.Add(1)
}

// popHead is called only by the owning worker; it takes the most
// recently pushed task (LIFO), favoring cache locality for tasks
// scheduled in quick succession by the same tasklet.
func (d *workStealingDeque) popHead() (t task, ok bool) {
	d.mu.Lock()
	n := len(d.items)
	if n == 0 {
		d.mu.Unlock()
		return task{}, false
	}
	t = d.items[n-1]
	d.items[n-1] = task{}
	d.items = d.items[:n-1]
	d.mu.Unlock()
	d.steal.Add(-1)
	return t, true
}

// stealOne is called by any other worker; it takes the oldest pushed
// task (FIFO-ish from the tail), matching the spec's description of
// steals draining from the opposite end to the owner's pops.
func (d *workStealingDeque) stealOne() (t task, ok bool) {
	d.mu.Lock()
	if len(d.items) == 0 {
		d.mu.Unlock()
		return task{}, false
	}
	t = d.items[0]
	copy(d.items, d.items[1:])
	d.items[len(d.items)-1] = task{}
	d.items = d.items[:len(d.items)-1]
	d.mu.Unlock()
	d.steal.Add(-1)
	return t, true
}

func (d *workStealingDeque) approxLen() int {
	n := d.steal.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}
