package tasklet

import "github.com/vull-engine/vull/fiber"

// Tasklet is a unit of cooperative work bound to a [fiber.Fiber] for
// the duration of one run. Per spec §3, a Tasklet is heap-allocated
// and reference-counted only when attached to a promise; here every
// Tasklet is a small heap value owned by the Scheduler's dispatch
// loop, and "attached to a promise" corresponds to a promise's waiter
// closure capturing a pointer to it.
type Tasklet struct {
	id     uint64
	fiber  *fiber.Fiber
	sched  *Scheduler
	worker *worker // the worker currently running this tasklet's fiber
}

// ID returns the tasklet's scheduler-assigned identifier, stable for
// its lifetime.
func (t *Tasklet) ID() uint64 { return t.id }

// suspendOnWaitList parks the tasklet's fiber. The caller must have
// already registered a resume callback (e.g. via a promise's
// addWaiter, or a Latch/Mutex wait list) before calling this, since
// the scheduler will not reschedule a suspended tasklet on its own —
// matching §4.3's suspend() contract exactly.
func (t *Tasklet) suspendOnWaitList() { t.fiber.Suspend() }

// Yield cooperatively yields the calling tasklet back to its worker:
// its continuation is re-enqueued on the worker's local deque before
// the fiber parks. The owner pops that deque LIFO, so the worker
// normally resumes this same tasklet next; other work runs first only
// if another worker steals the continuation or it was already queued
// elsewhere. This is the Go realization of §4.3's yield().
//
// Yield panics if called outside a running tasklet.
func Yield() {
	t := currentTasklet()
	if t == nil {
		panic("tasklet: Yield called outside a running tasklet")
	}
	t.sched.scheduleResume(t)
	t.fiber.Yield()
}
