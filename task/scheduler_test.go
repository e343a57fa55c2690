package task

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newRunningScheduler(t *testing.T, workers int) *Scheduler {
	t.Helper()
	s := NewScheduler(workers)
	s.Run()
	t.Cleanup(s.Stop)
	return s
}

func TestSubmitAsyncPureFunction(t *testing.T) {
	s := newRunningScheduler(t, 2)

	task := SubmitAsync(s, func() (int, error) {
		return 6 * 7, nil
	})

	got, err := task.Get()
	require.NoError(t, err)
	require.Equal(t, 42, got)
}

func TestTaskErrorPropagation(t *testing.T) {
	s := newRunningScheduler(t, 2)
	sentinel := errors.New("kind X")

	task := SubmitAsync(s, func() (int, error) {
		return 0, sentinel
	})

	_, err := task.Get()
	require.Error(t, err)
	require.ErrorIs(t, err, sentinel)

	_, err = task.Get()
	require.ErrorIs(t, err, ErrResultAlreadyTaken)
}

func TestScheduleDependencyOrdering(t *testing.T) {
	s := newRunningScheduler(t, 2)

	var mu sync.Mutex
	var order []string
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}

	a := Schedule(s, NewTask(func() (int, error) {
		record("A")
		return 1, nil
	}))
	b := Schedule(s, NewTask(func() (int, error) {
		record("B")
		return 2, nil
	}), a)
	c := Schedule(s, NewTask(func() (int, error) {
		record("C")
		return 3, nil
	}), b)

	Wait(c.Token())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"A", "B", "C"}, order)
}

func TestScheduleWithAlreadyCompletedDependency(t *testing.T) {
	s := newRunningScheduler(t, 2)

	a := SubmitAsync(s, func() (int, error) { return 1, nil })
	Wait(a.Token())

	b := Schedule(s, NewTask(func() (int, error) { return 2, nil }), a.Token())
	got, err := b.Get()
	require.NoError(t, err)
	require.Equal(t, 2, got)
}

func TestSchedulerStopDrainsNoNewWork(t *testing.T) {
	s := NewScheduler(1)
	s.Run()
	s.Stop()

	// Submission after stop must not panic and must not execute.
	var ran bool
	task := SubmitAsync(s, func() (int, error) {
		ran = true
		return 1, nil
	})
	time.Sleep(10 * time.Millisecond)
	require.False(t, ran)
	require.False(t, task.Token().Done())
}

func TestOnCompleteFastPath(t *testing.T) {
	s := newRunningScheduler(t, 1)
	task := SubmitAsync(s, func() (int, error) { return 1, nil })
	Wait(task.Token())

	done := make(chan struct{})
	OnComplete(task.Token(), func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("OnComplete did not fire for an already-completed task")
	}
}

func TestZeroWorkersDefaultsToHardwareParallelism(t *testing.T) {
	s := NewScheduler(0)
	require.GreaterOrEqual(t, s.workers, 1)
}
