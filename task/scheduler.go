package task

import (
	"context"
	"runtime"
	"sync"

	"github.com/holy-bit/SoulLib/internal/obslog"
	"golang.org/x/sync/errgroup"
)

// Scheduler owns a worker pool consuming one shared FIFO job queue, the Go
// analogue of TR.Scheduler (spec.md §4.3). It is grounded on the reference
// toolkit's single-threaded event loop (eventloop/loop.go) generalized from
// one loop goroutine to N worker goroutines sharing a queue, and on
// eventloop/state.go's FastState for the running flag.
type Scheduler struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue []func()

	workers int
	running bool
	group   *errgroup.Group
	cancel  context.CancelFunc

	logger *obslog.Logger
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithLogger overrides the scheduler's logger (default obslog.L()).
func WithLogger(l *obslog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// NewScheduler builds a Scheduler with the given worker count. A count <= 0
// defaults to runtime.GOMAXPROCS(0), with a floor of 1 (spec.md §4.3: "0 ⇒
// implementation default = hardware parallelism, minimum 1").
func NewScheduler(workers int, opts ...Option) *Scheduler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
		if workers < 1 {
			workers = 1
		}
	}
	s := &Scheduler{
		workers: workers,
		logger:  obslog.L(),
	}
	s.cond = sync.NewCond(&s.mu)
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run marks the scheduler running and starts its worker goroutines. Calling
// Run on an already-running scheduler is a no-op.
func (s *Scheduler) Run() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	g, _ := errgroup.WithContext(ctx)
	s.group = g
	workers := s.workers
	s.mu.Unlock()

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			s.workerLoop()
			return nil
		})
	}
	s.logger.Info().Int("workers", workers).Log("task: scheduler started")
}

// workerLoop drains the queue until the scheduler stops.
func (s *Scheduler) workerLoop() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && s.running {
			s.cond.Wait()
		}
		if len(s.queue) == 0 && !s.running {
			s.mu.Unlock()
			return
		}
		job := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		job()
	}
}

// Stop atomically clears the running flag, wakes all workers, and joins
// them. In-flight jobs drain; no new job is dequeued once Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	group := s.group
	s.mu.Unlock()

	s.cond.Broadcast()
	if group != nil {
		_ = group.Wait()
	}
	s.logger.Info().Log("task: scheduler stopped")
}

// enqueueFunc appends fn to the job queue if the scheduler is running;
// otherwise it is silently dropped (spec.md §4.3: "subsequent submissions
// are no-ops").
func (s *Scheduler) enqueueFunc(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.queue = append(s.queue, fn)
	s.cond.Signal()
}

// SubmitAsync wraps fn in a job that executes it on a worker, captures the
// return value or error into a fresh TaskState, then notifies
// continuations/dependents. It returns a Task holding that state
// immediately; fn must not assume any particular worker identity.
func SubmitAsync[T any](s *Scheduler, fn func() (T, error)) *Task[T] {
	st := newState()
	st.bindScheduler(s)
	st.resumable = func() {
		result, err := fn()
		st.complete(result, err)
	}
	st.started = true
	s.enqueueFunc(st.resumable)
	return &Task[T]{s: st, extracted: new(boolFlag)}
}

// NewTask constructs a Task bound to fn but does not schedule it; use
// Schedule to bind it to a scheduler's dependency graph.
func NewTask[T any](fn func() (T, error)) *Task[T] {
	st := newState()
	st.resumable = func() {
		result, err := fn()
		st.complete(result, err)
	}
	return &Task[T]{s: st, extracted: new(boolFlag)}
}

// Schedule binds t's state to s and, for every dependency in deps, links t
// as a dependent if that dependency has not yet completed (incrementing
// t's pendingDependencies counter). If no dependency remains unresolved,
// t's resumable is enqueued immediately. It returns t for chaining, per
// spec.md §4.3's "Returns the re-bound Task."
func Schedule[T any](s *Scheduler, t *Task[T], deps ...Awaitable) *Task[T] {
	t.s.bindScheduler(s)
	// Hold one extra count while linking so a dependency that completes
	// mid-loop can neither miss its decrement nor release t early.
	t.s.pendingDependencies.Add(1)
	for _, dep := range deps {
		ds := dep.taskState()
		if ds == t.s {
			continue
		}
		t.s.pendingDependencies.Add(1)
		if !ds.addDependent(t.s) {
			t.s.pendingDependencies.Add(^uint32(0))
		}
	}
	if t.s.pendingDependencies.Add(^uint32(0)) == 0 {
		t.s.trigger()
	}
	return t
}

// ResumeResumable enqueues handle as a job on s. It does not check whether
// handle has already run; every call enqueues it again.
func ResumeResumable(s *Scheduler, handle func()) {
	s.enqueueFunc(handle)
}

// Wait blocks until token's underlying state is completed, using a
// condition variable on the state's lock (spec.md §4.3's wait(token)).
func Wait(token Awaitable) {
	token.taskState().wait()
}

// boolFlag is a tiny heap-allocated box so Task[T]'s "extract the result
// exactly once" guard survives copies of the Task value (Go has no
// move-only types, so the guard has to live behind a shared pointer).
type boolFlag struct {
	v bool
	mu sync.Mutex
}

func (b *boolFlag) testAndSet() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.v {
		return true
	}
	b.v = true
	return false
}
