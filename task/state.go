package task

import (
	"sync"
	"sync/atomic"
	"weak"
)

// state is the non-generic completion core shared by every TaskState[T].
// Result/error are stored as "any"/error and recovered through a type
// assertion in the generic wrapper; this mirrors the reference toolkit's
// registry.go, which keeps a homogeneous map of weak.Pointer[promise]
// regardless of what each promise eventually resolves to. Go has no
// existential types, so a heterogeneous dependents list (TaskState<T> for
// arbitrary T, per spec.md §3) is only expressible if the shared core is
// itself non-generic.
type state struct {
	mu   sync.Mutex
	cond *sync.Cond

	result any
	err    error
	completed bool
	started   bool

	continuations []func()
	dependents    []weak.Pointer[state]

	pendingDependencies atomic.Uint32

	scheduler weak.Pointer[Scheduler]
	resumable func()
}

func newState() *state {
	s := &state{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Awaitable is implemented by anything carrying a reference to a task's
// completion state: Task[T] and Token[T] for every T. Schedule and Wait
// accept it so dependency lists can mix tasks of
// different result types, matching dependents: list<weak<TaskState>> in
// spec.md §3.
type Awaitable interface {
	taskState() *state
}

// bindScheduler weakly associates s with sched, the "state's back-reference
// to the scheduler is weak" requirement from spec.md §9.
func (s *state) bindScheduler(sched *Scheduler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduler = weak.Make(sched)
}

// addDependent links dep as a dependent of s if s has not yet completed.
// Returns true if the link was made (i.e. dep must wait), false if s was
// already complete and dep should proceed immediately.
func (s *state) addDependent(dep *state) (linked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return false
	}
	s.dependents = append(s.dependents, weak.Make(dep))
	return true
}

// isCompleted reports completion without blocking.
func (s *state) isCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// wait blocks until s.completed, using the state's own condition variable.
// It never triggers the resumable handle; callers that also need to kick
// off unstarted work should use trigger first.
func (s *state) wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.completed {
		s.cond.Wait()
	}
}

// trigger enqueues the resumable handle exactly once, on the bound
// scheduler if any, inline otherwise.
func (s *state) trigger() {
	s.mu.Lock()
	if s.started || s.resumable == nil {
		s.mu.Unlock()
		return
	}
	s.started = true
	resumable := s.resumable
	sched := s.scheduler.Value()
	s.mu.Unlock()

	if sched != nil {
		sched.enqueueFunc(resumable)
	} else {
		resumable()
	}
}

// addContinuation registers fn to run after completion. If s is already
// complete, fn runs (or is dispatched) immediately instead, the "fast-path
// where completion is already visible at registration" from spec.md §5.
func (s *state) addContinuation(fn func()) {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		s.dispatch(fn)
		return
	}
	s.continuations = append(s.continuations, fn)
	s.mu.Unlock()
}

func (s *state) dispatch(fn func()) {
	if sched := s.scheduler.Value(); sched != nil {
		sched.enqueueFunc(fn)
		return
	}
	fn()
}

// complete implements the four-step completion protocol from spec.md §4.3.
func (s *state) complete(result any, err error) {
	s.mu.Lock()
	s.result = result
	s.err = err
	s.completed = true
	conts := s.continuations
	s.continuations = nil
	deps := s.dependents
	s.dependents = nil
	s.mu.Unlock()

	s.cond.Broadcast()

	for _, c := range conts {
		s.dispatch(c)
	}

	for _, wdep := range deps {
		dep := wdep.Value()
		if dep == nil {
			continue
		}
		if dep.pendingDependencies.Add(^uint32(0)) == 0 {
			dep.trigger()
		}
	}
}

// snapshot returns the stored result/error without blocking or mutating
// state; ok is false while the task is still incomplete.
func (s *state) snapshot() (result any, err error, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.err, s.completed
}
