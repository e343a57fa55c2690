package task

// Task is a handle parameterized by result type, holding the sole
// extraction right over its TaskState: per spec.md §4.4, the result may be
// extracted exactly once via a Task handle, though Token copies may still
// observe completion freely.
type Task[T any] struct {
	s         *state
	extracted *boolFlag
}

// taskState implements Awaitable.
func (t *Task[T]) taskState() *state { return t.s }

// Token produces a shared, read-only handle over the same state. Tokens
// are cheap to copy and never prolong or consume the caller-visible
// result.
func (t *Task[T]) Token() Token[T] {
	return Token[T]{s: t.s}
}

// Await blocks the calling goroutine on the completion condition until the
// task completes, triggering the task's resumable first if it has not yet
// started (spec.md §4.4's await-semantics); it behaves exactly like Get. It returns the stored
// result or propagates the stored error, and may be called at most once per
// Task.
func (t *Task[T]) Await() (T, error) {
	return t.extract()
}

// Get triggers the task's resumable if unstarted, blocks on the completion
// condition, and returns or rethrows. Per scenario S5, calling Get twice on
// the same Task is undefined; this implementation returns
// ErrResultAlreadyTaken on the second call instead of re-extracting.
func (t *Task[T]) Get() (T, error) {
	return t.extract()
}

func (t *Task[T]) extract() (T, error) {
	var zero T
	if t.extracted.testAndSet() {
		return zero, ErrResultAlreadyTaken
	}
	t.s.trigger()
	t.s.wait()
	result, err, _ := t.s.snapshot()
	if err != nil {
		return zero, &Failed{Cause: err}
	}
	v, _ := result.(T)
	return v, nil
}

// OnComplete registers fn to run once a's underlying task completes. If it
// has already completed, fn is dispatched immediately (inline, or onto the
// bound scheduler if one is set) rather than queued, exercising the
// fast-path callers get by registering late (spec.md §5).
func OnComplete(a Awaitable, fn func()) {
	a.taskState().addContinuation(fn)
}

// Token is a shared, read-only handle to a TaskState used to express
// dependencies and to wait synchronously; it never owns the result
// payload.
type Token[T any] struct {
	s *state
}

// taskState implements Awaitable.
func (t Token[T]) taskState() *state { return t.s }

// Wait blocks until the underlying task completes, without extracting its
// result. It may be called any number of times, by any number of Token
// copies.
func (t Token[T]) Wait() {
	t.s.wait()
}

// Done reports whether the underlying task has completed, without
// blocking.
func (t Token[T]) Done() bool {
	return t.s.isCompleted()
}

// Peek returns the stored result/error if the task has completed; ok is
// false otherwise. It never triggers an unstarted task and never blocks.
func (t Token[T]) Peek() (result T, err error, ok bool) {
	raw, e, completed := t.s.snapshot()
	if !completed {
		return result, nil, false
	}
	if e != nil {
		return result, &Failed{Cause: e}, true
	}
	v, _ := raw.(T)
	return v, nil, true
}
