// Package fiber models a stack-switched execution context as the
// teacher's event loop models its fast-path tasks: a goroutine parked
// on a channel handoff rather than a raw register/stack switch. Go's
// runtime owns and grows goroutine stacks itself, so there is no user
// managed guard page to allocate or fault on; [Fiber.IsGuardPage]
// documents that redesign explicitly rather than faking the original
// stack-switching primitive.
package fiber

import (
	"fmt"
	"sync/atomic"
)

// State is the lifecycle state of a Fiber.
type State uint32

const (
	// Runnable means the fiber is pool-allocated but not currently
	// bound to any running goroutine work.
	Runnable State = iota
	// Running means a worker has switched control to this fiber.
	Running
	// Yielding means the fiber voluntarily gave up its turn and
	// expects to be rescheduled.
	Yielding
	// Suspended means the fiber is parked on some wait list and will
	// not run again until explicitly resumed.
	Suspended
)

func (s State) String() string {
	switch s {
	case Runnable:
		return "Runnable"
	case Running:
		return "Running"
	case Yielding:
		return "Yielding"
	case Suspended:
		return "Suspended"
	default:
		return fmt.Sprintf("State(%d)", uint32(s))
	}
}

// EntryPoint is the function a Fiber runs once switched into for the
// first time.
type EntryPoint func()

// Fiber is a reusable execution context. It is pool-allocated by a
// [Pool] and switched to and from via [Fiber.SwitchTo].
//
// The original engine's fiber owns a 1 MiB stack region with a guard
// page at the low end, detected by a SIGSEGV handler for
// stack-overflow diagnostics. This Go port instead wraps a goroutine
// parked on two unbuffered channels: resumeCh wakes it, parkedCh
// confirms it has yielded control back. This trades an explicit guard
// page for the Go runtime's own stack-overflow detection (a growable
// stack that panics with a descriptive "stack overflow" error instead
// of faulting).
type Fiber struct {
	id       uint64
	state    atomic.Uint32
	entry    EntryPoint
	resumeCh chan struct{}
	parkedCh chan struct{}
	started  atomic.Bool
	done     atomic.Bool
}

// New creates a fiber bound to entry, in the Runnable state. The
// backing goroutine is not started until the first [Fiber.SwitchTo].
func New(id uint64, entry EntryPoint) *Fiber {
	f := &Fiber{
		id:       id,
		entry:    entry,
		resumeCh: make(chan struct{}),
		parkedCh: make(chan struct{}),
	}
	f.state.Store(uint32(Runnable))
	return f
}

// ID returns the fiber's pool-assigned identifier.
func (f *Fiber) ID() uint64 { return f.id }

// State atomically reads the fiber's lifecycle state.
func (f *Fiber) State() State { return State(f.state.Load()) }

func (f *Fiber) setState(s State) { f.state.Store(uint32(s)) }

// SwitchTo transfers control to f, blocking the calling goroutine
// until f yields, suspends, or completes. It starts f's backing
// goroutine on first use (the "trampoline" described in the spec).
//
// SwitchTo must only be called by the fiber's owning worker; it is
// not safe to switch to the same Fiber concurrently from two workers.
func (f *Fiber) SwitchTo() {
	f.setState(Running)
	if f.started.CompareAndSwap(false, true) {
		go f.run()
	} else {
		f.resumeCh <- struct{}{}
	}
	<-f.parkedCh
}

// run is the trampoline: it executes the entry point once, then marks
// the fiber done. Calls to yield/suspend inside entry block on
// resumeCh and unblock the switcher via parkedCh.
func (f *Fiber) run() {
	f.entry()
	f.done.Store(true)
	f.setState(Runnable)
	f.parkedCh <- struct{}{}
}

// parkAndWait is used by the exported Yield/Suspend helpers below to
// hand control back to the switcher without completing the fiber.
func (f *Fiber) parkAndWait(s State) {
	f.setState(s)
	f.parkedCh <- struct{}{}
	<-f.resumeCh
}

// Yield parks the currently running fiber in the Yielding state and
// waits to be resumed. Call this only from inside the fiber's own
// goroutine (i.e. from code running as this fiber's entry point).
func (f *Fiber) Yield() { f.parkAndWait(Yielding) }

// Suspend parks the currently running fiber in the Suspended state
// and waits to be resumed. Unlike Yield, the caller is responsible
// for having placed the fiber on some wait list before suspending,
// since the scheduler will not automatically reschedule it.
func (f *Fiber) Suspend() { f.parkAndWait(Suspended) }

// Done reports whether the fiber's entry point has returned.
func (f *Fiber) Done() bool { return f.done.Load() }

// Reset rebinds a completed, Runnable fiber to a new entry point so
// a [Pool] can hand it out again. The Fiber value is reused, but its
// channels are recreated and the next [Fiber.SwitchTo] starts a new
// backing goroutine.
func (f *Fiber) Reset(entry EntryPoint) {
	f.entry = entry
	f.started.Store(false)
	f.done.Store(false)
	f.setState(Runnable)
	f.resumeCh = make(chan struct{})
	f.parkedCh = make(chan struct{})
}

// IsGuardPage always returns false: Go manages its own growable
// goroutine stacks, so there is no fixed guard page for a fault
// address to belong to. Kept as a method so callers migrating from
// the original stack-overflow diagnostic path have a stable, explicit
// no-op to call instead of a compile error.
func (f *Fiber) IsGuardPage(addr uintptr) bool {
	_ = addr
	return false
}

// Pool hands out reusable Fibers, avoiding a fresh Fiber allocation
// per scheduled tasklet; each run of a reused fiber still starts its
// own goroutine (see [Fiber.Reset]). Pool-allocated fibers outlive any single tasklet
// bound to them; a tasklet only ever holds a fiber weakly, for the
// duration of one run.
type Pool struct {
	nextID atomic.Uint64
	free   chan *Fiber
}

// NewPool constructs a pool that will cache up to capacity idle
// fibers; beyond that, Put discards the fiber instead of blocking.
func NewPool(capacity int) *Pool {
	return &Pool{free: make(chan *Fiber, capacity)}
}

// Get returns an idle fiber bound to entry, reusing a pooled one if
// available, otherwise allocating a new one.
func (p *Pool) Get(entry EntryPoint) *Fiber {
	select {
	case f := <-p.free:
		f.Reset(entry)
		return f
	default:
		return New(p.nextID.Add(1), entry)
	}
}

// Put returns a completed fiber to the pool for reuse. Put must only
// be called once a fiber's entry point has returned ([Fiber.Done]).
func (p *Pool) Put(f *Fiber) {
	if !f.Done() {
		panic("fiber: Put called on a fiber that has not completed")
	}
	select {
	case p.free <- f:
	default:
		// pool full: let f and its goroutine's residual state be
		// collected normally.
	}
}
