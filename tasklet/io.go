package tasklet

import (
	"sync"

	"github.com/vull-engine/vull/internal/logx"
)

// IoKind classifies an [IoRequest], per spec §4.3/§6.
type IoKind uint8

const (
	// IoNop completes immediately with a zero result; used for tests
	// and as a scheduling no-op.
	IoNop IoKind = iota
	// IoPollEvent checks an OS-level event source once without
	// blocking past the first readiness notification.
	IoPollEvent
	// IoWaitEvent blocks the request's I/O goroutine until an eventfd-
	// backed counter is posted to, then fulfills with the post-wake
	// counter value.
	IoWaitEvent
	// IoWaitVkFence waits on a file descriptor extracted from an
	// external Vulkan fence object, reported only by descriptor here
	// since the fence object itself is out of this spec's scope (§1).
	IoWaitVkFence
)

// IoResult is the value an [IoRequest]'s future resolves to. Errors
// are reported in-band (Err non-nil) rather than thrown, per §4.3's
// "I/O errors are reported as a signed result in the fulfilled value;
// they are never thrown".
type IoResult struct {
	// Value carries the post-wake counter for IoWaitEvent, or is
	// unused for other kinds.
	Value int64
	Err   error
}

// IoRequest is a handle to a submitted asynchronous I/O operation. It
// is, per §4.3, conceptually "a subclass of the internal shared
// promise": submitting one returns a [Future] that resolves once the
// dedicated I/O worker observes completion.
type IoRequest struct {
	Kind IoKind
	FD   int // eventfd/fence fd for WaitEvent/WaitVkFence kinds
}

// ioRing is the I/O execution path every Scheduler carries alongside
// its compute workers. Submission starts one goroutine for the
// request, off the compute workers; on completion the request's
// promise is fulfilled, scheduling every waiter back onto the compute
// workers.
//
// A full epoll/kqueue/IOCP poller parity with the teacher's per-
// platform eventloop poller files is out of proportion for this
// spec's I/O surface (four request kinds, no general-purpose fd
// multiplexing): ioRing instead runs each submitted request as its
// own goroutine, tracked by a [sync.WaitGroup] that stop waits on.
// Platform-specific eventfd registration for IoWaitEvent is
// layered in by [newEventFD] (see io_linux.go / io_other.go), which is
// where golang.org/x/sys/unix is actually exercised, matching the
// teacher's poller_linux.go use of the same package for its epoll fd.
type ioRing struct {
	sched *Scheduler
	log   logx.Logger

	mu      sync.Mutex
	wg      sync.WaitGroup
	started bool
	stopped bool
}

func newIORing(sched *Scheduler, log logx.Logger) *ioRing {
	return &ioRing{sched: sched, log: log}
}

func (r *ioRing) start() {
	r.mu.Lock()
	r.started = true
	r.mu.Unlock()
}

func (r *ioRing) stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	r.wg.Wait()
}

// Submit hands req to the I/O worker and returns a Future for its
// result. The request executes on its own goroutine, independent of
// any compute worker, matching §4.3's "a dedicated I/O worker".
func (r *ioRing) submit(req IoRequest) Future[IoResult] {
	pr := NewPromise[IoResult](r.sched)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		pr.Fulfill(r.execute(req))
	}()
	return pr.Future()
}

func (r *ioRing) execute(req IoRequest) IoResult {
	switch req.Kind {
	case IoNop:
		return IoResult{}
	case IoPollEvent:
		return pollFD(req.FD)
	case IoWaitEvent:
		return waitEventFD(req.FD)
	case IoWaitVkFence:
		return pollFD(req.FD)
	default:
		return IoResult{Err: errUnknownIoKind}
	}
}

// Submit is the public entry point for issuing an asynchronous I/O
// request against sched's I/O ring.
func Submit(sched *Scheduler, req IoRequest) Future[IoResult] {
	return sched.io.submit(req)
}

// NewEventFD allocates a platform descriptor suitable as the FD of an
// IoWaitEvent request. On Linux this is a real eventfd; other
// platforms return an error, see io_other.go.
func NewEventFD() (int, error) { return newEventFD() }
