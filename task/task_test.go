package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenPeekBeforeAndAfterCompletion(t *testing.T) {
	s := newRunningScheduler(t, 1)
	task := SubmitAsync(s, func() (string, error) { return "done", nil })
	token := task.Token()

	_, _, ok := token.Peek()
	_ = ok // may already be true if the worker raced ahead; not asserted

	Wait(token)
	v, err, ok := token.Peek()
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, "done", v)
}

func TestTaskFailedUnwraps(t *testing.T) {
	s := newRunningScheduler(t, 1)
	sentinel := errors.New("boom")
	task := SubmitAsync(s, func() (int, error) { return 0, sentinel })

	_, err := task.Get()
	var failed *Failed
	require.ErrorAs(t, err, &failed)
	require.Same(t, sentinel, failed.Cause)
}

func TestTokenDoneReflectsCompletion(t *testing.T) {
	s := newRunningScheduler(t, 1)
	task := SubmitAsync(s, func() (int, error) { return 1, nil })
	Wait(task.Token())
	require.True(t, task.Token().Done())
}
