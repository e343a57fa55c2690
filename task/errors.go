package task

import "errors"

// ErrSchedulerStopped names the condition of a scheduler after Stop has
// been called. No operation in this package returns it: per the
// scheduler's shutdown contract, submissions made after stop are silently
// dropped rather than reported as errors.
var ErrSchedulerStopped = errors.New("task: scheduler stopped")

// Failed wraps the error captured from a task body, rethrown on Await or
// Get. It follows the reference toolkit's typed-error-with-Unwrap pattern
// (eventloop/errors.go's TimeoutError, RangeError).
type Failed struct {
	Cause error
}

func (e *Failed) Error() string { return "task: failed: " + e.Cause.Error() }

func (e *Failed) Unwrap() error { return e.Cause }

// ErrResultAlreadyTaken is returned by Task.Get/Task.Await on the second
// call; the result may be extracted exactly once via a Task handle
// (spec.md §4.4, scenario S5).
var ErrResultAlreadyTaken = errors.New("task: result already extracted")
