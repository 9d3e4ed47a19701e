// Package tasklet implements the engine's fiber-based, work-stealing
// cooperative scheduler: worker goroutines each running a single
// fiber at a time, futures/promises for one-shot async values, and
// latch and mutex primitives aware of tasklet suspension.
package tasklet

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vull-engine/vull/fiber"
	"github.com/vull-engine/vull/internal/logx"
)

// parkPollInterval bounds how long an idle worker sleeps before
// re-checking its queues even if it never receives a wake signal,
// per §4.3 step 3's "short poll interval to bound latency".
const parkPollInterval = time.Millisecond

var errQueueFull = errors.New("tasklet: shared queue full")

// Scheduler runs N worker goroutines, each owning its own fiber pool
// and work-stealing deque. A shared bounded MPMC queue receives
// wakeups submitted from outside any worker (non-tasklet goroutines,
// and resumed continuations whose waiter fired from off-worker code).
type Scheduler struct {
	workers []*worker
	shared  *mpmcQueue[task]
	log     logx.Logger
	io      *ioRing

	nextTaskletID atomic.Uint64
	running       atomic.Bool
	stopCh        chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// task is the unit of work carried by the scheduler's queues. execute
// is handed the worker that popped it, so it can dispatch fresh work
// onto a pooled fiber or resume an already-suspended tasklet's fiber.
type task struct {
	execute func(w *worker)
}

type worker struct {
	index int
	local *workStealingDeque
	pool  *fiber.Pool
	sem   chan struct{} // parking token, buffered 1
	rng   uint64        // xorshift state, worker-local, no atomics needed
}

// Config holds the resolved options for [New].
type Config struct {
	workerCount  int
	sharedQCap   int
	fiberPoolCap int
	log          logx.Logger
}

// Option configures a Scheduler at construction time, following the
// functional-options shape of eventloop.New.
type Option func(*Config)

// WithWorkerCount sets the number of worker goroutines. Defaults to
// runtime.GOMAXPROCS(0).
func WithWorkerCount(n int) Option { return func(c *Config) { c.workerCount = n } }

// WithSharedQueueCapacity sets the bounded MPMC queue's capacity
// (rounded up to a power of two). Defaults to 4096.
func WithSharedQueueCapacity(n int) Option { return func(c *Config) { c.sharedQCap = n } }

// WithFiberPoolCapacity sets each worker's idle-fiber cache size.
// Defaults to 256.
func WithFiberPoolCapacity(n int) Option { return func(c *Config) { c.fiberPoolCap = n } }

// WithLogger attaches a structured logger; the default is a no-op
// logger, matching eventloop.New's default-logger handling.
func WithLogger(log logx.Logger) Option { return func(c *Config) { c.log = log } }

// New constructs a Scheduler. Workers are not started until [Run].
func New(opts ...Option) *Scheduler {
	c := Config{
		workerCount:  runtime.GOMAXPROCS(0),
		sharedQCap:   4096,
		fiberPoolCap: 256,
		log:          logx.Nop(),
	}
	for _, o := range opts {
		o(&c)
	}
	if c.workerCount < 1 {
		c.workerCount = 1
	}

	s := &Scheduler{
		shared: newMPMCQueue[task](c.sharedQCap),
		log:    c.log,
		stopCh: make(chan struct{}),
	}
	s.workers = make([]*worker, c.workerCount)
	for i := range s.workers {
		s.workers[i] = &worker{
			index: i,
			local: newWorkStealingDeque(),
			pool:  fiber.NewPool(c.fiberPoolCap),
			sem:   make(chan struct{}, 1),
			rng:   xorshiftSeed(uint64(i) + 1),
		}
	}
	s.io = newIORing(s, c.log)
	return s
}

// Run boots the worker goroutines, submits callable as the initial
// tasklet, and blocks until callable's Future resolves, then stops
// the scheduler and waits for every worker to drain and exit.
//
// Run returns the value produced by callable. If ctx is cancelled
// before callable completes, Run still waits for callable's own
// result (cancellation does not abort running tasklets per §4.3) but
// requests the scheduler to stop as soon as callable returns.
func Run[T any](ctx context.Context, s *Scheduler, callable func() T) T {
	s.running.Store(true)
	s.io.start()
	for _, w := range s.workers {
		s.wg.Add(1)
		go s.runWorker(w)
	}

	result := Schedule(s, callable).Await()

	select {
	case <-ctx.Done():
	default:
	}
	s.Stop()
	s.wg.Wait()
	return result
}

// Stop requests every worker to drain its deque and exit. Safe to
// call from any goroutine, any number of times.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.running.Store(false)
		close(s.stopCh)
		s.io.stop()
	})
}

// Schedule heap-allocates a ref-counted promise, enqueues fn for
// execution on a fresh tasklet, and returns a Future for its result.
// If the caller is running inside a tasklet, fn is pushed onto that
// worker's local deque (LIFO, favoring cache locality); otherwise it
// goes onto the shared MPMC queue.
func Schedule[T any](s *Scheduler, fn func() T) Future[T] {
	pr := NewPromise[T](s)
	s.enqueueFresh(func() { pr.Fulfill(fn()) })
	return pr.Future()
}

// enqueueFresh wraps run as a task that dispatches onto a newly
// pool-allocated fiber/Tasklet pair.
func (s *Scheduler) enqueueFresh(run func()) {
	t := task{execute: func(w *worker) { s.dispatchFresh(w, run) }}
	s.push(t)
}

// push places t on the calling tasklet's own worker-local deque if one
// is bound (the worker actually executing the caller, preserving LIFO
// cache locality), else the shared MPMC queue, waking a parked worker
// to pick it up.
func (s *Scheduler) push(t task) {
	if cur := currentTasklet(); cur != nil {
		cur.worker.local.pushHead(t)
		return
	}
	if !s.shared.tryPush(t) {
		abortf(ErrThreadCreationFailed, errQueueFull)
	}
	s.wakeOne()
}

// wakeOne signals a single parked worker, if any, that new work may be
// available. Sends are non-blocking: a worker that is already awake
// (sem full or not being selected on) simply never observes the
// token, which is fine since it will find the work on its own.
func (s *Scheduler) wakeOne() {
	for _, w := range s.workers {
		select {
		case w.sem <- struct{}{}:
			return
		default:
		}
	}
}

// scheduleResume enqueues a continuation that resumes tl's
// already-started, currently-suspended fiber, rather than allocating
// a new Tasklet. This is how a fulfilled Promise's waiter gets back
// onto a worker, per §4.4's "fulfill... schedule every waiter".
func (s *Scheduler) scheduleResume(tl *Tasklet) {
	s.push(task{execute: func(w *worker) { s.resumeOnFiber(w, tl) }})
}

// dispatchFresh binds run to a pooled fiber under a brand new Tasklet
// identity and switches to it.
func (s *Scheduler) dispatchFresh(w *worker, run func()) {
	id := s.nextTaskletID.Add(1)
	tl := &Tasklet{id: id, sched: s, worker: w}
	f := w.pool.Get(func() {
		bindCurrentTasklet(tl)
		defer unbindCurrentTasklet()
		run()
	})
	tl.fiber = f
	f.SwitchTo()
	if f.Done() {
		w.pool.Put(f)
	}
}

// resumeOnFiber switches back into an already-running tasklet's
// parked fiber. The fiber's goroutine continues from exactly where it
// called Suspend. w is whichever worker popped the resume task, which
// may differ from the worker that originally dispatched tl, so tl's
// worker binding is updated before switching in (push routes by that
// binding, so a subsequent schedule/yield from tl lands on w's deque).
// As with dispatchFresh, a fiber that finishes running is returned to
// w's pool rather than leaked.
func (s *Scheduler) resumeOnFiber(w *worker, tl *Tasklet) {
	tl.worker = w
	tl.fiber.SwitchTo()
	if tl.fiber.Done() {
		w.pool.Put(tl.fiber)
	}
}

// runWorker is the per-worker scheduling loop described in §4.3.
func (s *Scheduler) runWorker(w *worker) {
	defer s.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		t, ok := w.local.popHead()
		if !ok {
			t, ok = s.shared.tryPop()
		}
		if !ok {
			t, ok = s.stealFrom(w)
		}
		if !ok {
			if !s.running.Load() {
				return
			}
			timer := time.NewTimer(parkPollInterval)
			select {
			case <-s.stopCh:
				timer.Stop()
				if w.local.approxLen() == 0 {
					return
				}
			case <-w.sem:
				timer.Stop()
			case <-timer.C:
			}
			continue
		}
		t.execute(w)
	}
}

// stealFrom picks a victim worker via a per-worker xorshift PRNG,
// refusing to steal from itself, and attempts one steal.
func (s *Scheduler) stealFrom(w *worker) (task, bool) {
	n := len(s.workers)
	if n < 2 {
		return task{}, false
	}
	victim := int(xorshiftNext(&w.rng) % uint64(n))
	if victim == w.index {
		victim = (victim + 1) % n
	}
	return s.workers[victim].local.stealOne()
}

func xorshiftSeed(seed uint64) uint64 {
	if seed == 0 {
		return 0x9E3779B97F4A7C15
	}
	return seed
}

func xorshiftNext(state *uint64) uint64 {
	x := *state
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	*state = x
	return x
}
