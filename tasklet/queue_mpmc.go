package tasklet

import (
	"sync/atomic"
)

// mpmcQueue is a bounded, wait-free multi-producer multi-consumer FIFO.
//
// The implementation follows the classic Vyukov bounded queue: a slot
// array paired with a per-slot turn counter. A slot is ready for
// enqueue when its turn equals 2*(head/capacity), and ready for
// dequeue when its turn equals 2*(tail/capacity)+1. Capacity must be a
// power of two so index masking replaces a division.
//
// Enqueue/dequeue never block: a full queue returns ok=false from
// tryPush, an empty queue returns ok=false from tryPop. There is no
// ABA hazard because head/tail are monotonically increasing counters,
// never reused as values.
type mpmcQueue[T any] struct {
	mask  uint64
	slots []mpmcSlot[T]
	head  atomic.Uint64
	tail  atomic.Uint64
}

type mpmcSlot[T any] struct {
	turn  atomic.Uint64
	value T
}

// newMPMCQueue constructs a queue with the given capacity, rounded up
// to the next power of two (minimum 2).
func newMPMCQueue[T any](capacity int) *mpmcQueue[T] {
	n := nextPow2(capacity)
	q := &mpmcQueue[T]{
		mask:  uint64(n - 1),
		slots: make([]mpmcSlot[T], n),
	}
	// every slot starts ready-for-enqueue at round 0; zero value of
	// atomic.Uint64 already satisfies that, so no init loop is needed.
	return q
}

func nextPow2(n int) int {
	if n < 2 {
		return 2
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// tryPush attempts to enqueue value without blocking. ok is false iff
// the queue was observed full.
func (q *mpmcQueue[T]) tryPush(value T) (ok bool) {
	head := q.head.Load()
	for {
		slot := &q.slots[head&q.mask]
		turn := slot.turn.Load()
		diff := int64(turn) - int64(2*(head/uint64(len(q.slots))))
		switch {
		case diff == 0:
			if q.head.CompareAndSwap(head, head+1) {
				slot.value = value
				slot.turn.Store(turn + 1)
				return true
			}
			head = q.head.Load()
		case diff < 0:
			return false
		default:
			head = q.head.Load()
		}
	}
}

// tryPop attempts to dequeue a value without blocking. ok is false iff
// the queue was observed empty.
func (q *mpmcQueue[T]) tryPop() (value T, ok bool) {
	tail := q.tail.Load()
	for {
		slot := &q.slots[tail&q.mask]
		turn := slot.turn.Load()
		diff := int64(turn) - int64(2*(tail/uint64(len(q.slots)))+1)
		switch {
		case diff == 0:
			if q.tail.CompareAndSwap(tail, tail+1) {
				value = slot.value
				var zero T
				slot.value = zero
				slot.turn.Store(turn + 1)
				return value, true
			}
			tail = q.tail.Load()
		case diff < 0:
			return value, false
		default:
			tail = q.tail.Load()
		}
	}
}

// approxLen returns a racy size estimate: head-tail under concurrent
// access, useful for diagnostics only.
func (q *mpmcQueue[T]) approxLen() int {
	h, t := q.head.Load(), q.tail.Load()
	if h < t {
		return 0
	}
	return int(h - t)
}
