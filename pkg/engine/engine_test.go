package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRunsWorkAndFiresCallback(t *testing.T) {
	e := New(2)
	defer shutdown(t, e)

	done := make(chan any, 1)
	id, err := e.Submit("probe", nil, func(context.Context, Params) (any, error) {
		return 42, nil
	}, func(result any) {
		done <- result
	}, nil)
	require.NoError(t, err)
	require.Len(t, id, 8)

	select {
	case result := <-done:
		assert.Equal(t, 42, result)
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}
}

func TestSubmitFiresErrorCallbackOnFailure(t *testing.T) {
	e := New(1)
	defer shutdown(t, e)

	boom := errors.New("boom")
	got := make(chan error, 1)
	_, err := e.Submit("probe", nil, func(context.Context, Params) (any, error) {
		return nil, boom
	}, func(any) {
		t.Error("success callback fired for failed task")
	}, func(err error) {
		got <- err
	})
	require.NoError(t, err)

	select {
	case err := <-got:
		assert.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("error callback never fired")
	}
}

func TestExactlyOneCallbackFires(t *testing.T) {
	e := New(4)

	var success, failure atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		fail := i%2 == 0
		_, err := e.Submit("mixed", Params{"fail": fail}, func(_ context.Context, p Params) (any, error) {
			if p.Bool("fail", false) {
				return nil, errors.New("requested failure")
			}
			return "ok", nil
		}, func(any) {
			success.Add(1)
			wg.Done()
		}, func(error) {
			failure.Add(1)
			wg.Done()
		})
		require.NoError(t, err)
	}

	waitDone(t, &wg)
	shutdown(t, e)

	assert.Equal(t, int32(25), success.Load())
	assert.Equal(t, int32(25), failure.Load())
}

func TestCancelQueuedTask(t *testing.T) {
	e := New(1)
	defer shutdown(t, e)

	// Occupy the single worker so further tasks stay queued.
	release := make(chan struct{})
	running := make(chan struct{})
	_, err := e.Submit("blocker", nil, func(context.Context, Params) (any, error) {
		close(running)
		<-release
		return nil, nil
	}, nil, nil)
	require.NoError(t, err)
	<-running

	cancelled := make(chan error, 1)
	id, err := e.Submit("victim", nil, func(context.Context, Params) (any, error) {
		t.Error("cancelled task should never run")
		return nil, nil
	}, func(any) {
		t.Error("success callback fired for cancelled task")
	}, func(err error) {
		cancelled <- err
	})
	require.NoError(t, err)

	require.True(t, e.Cancel(id))

	select {
	case err := <-cancelled:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("error callback never fired for cancelled task")
	}

	task, ok := e.Task(id)
	require.True(t, ok)
	assert.Equal(t, StatusCancelled, task.Status())

	close(release)
}

func TestCancelRunningTaskFails(t *testing.T) {
	e := New(1)
	defer shutdown(t, e)

	release := make(chan struct{})
	running := make(chan struct{})
	id, err := e.Submit("runner", nil, func(context.Context, Params) (any, error) {
		close(running)
		<-release
		return nil, nil
	}, nil, nil)
	require.NoError(t, err)
	<-running

	// The external command is already executing; cancel must refuse.
	assert.False(t, e.Cancel(id))
	close(release)
}

func TestCancelUnknownTask(t *testing.T) {
	e := New(1)
	defer shutdown(t, e)
	assert.False(t, e.Cancel("does-not-exist"))
}

func TestSubmitAfterShutdown(t *testing.T) {
	e := New(1)
	shutdown(t, e)

	_, err := e.Submit("late", nil, func(context.Context, Params) (any, error) {
		return nil, nil
	}, nil, nil)
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestShutdownDrainsQueue(t *testing.T) {
	e := New(1)

	var completed atomic.Int32
	for i := 0; i < 5; i++ {
		_, err := e.Submit("drain", nil, func(context.Context, Params) (any, error) {
			time.Sleep(10 * time.Millisecond)
			return nil, nil
		}, func(any) {
			completed.Add(1)
		}, nil)
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Shutdown(ctx))
	assert.Equal(t, int32(5), completed.Load())
}

func TestConcurrentSubmitAndShutdown(t *testing.T) {
	// Submissions racing a shutdown must resolve to an accepted task or
	// a defined error, never a send on the closed queue.
	for i := 0; i < 200; i++ {
		e := New(1)

		var wg sync.WaitGroup
		for s := 0; s < 4; s++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 25; j++ {
					_, err := e.Submit("tick", nil, func(context.Context, Params) (any, error) {
						return nil, nil
					}, nil, nil)
					if err != nil && !errors.Is(err, ErrShutdown) && !errors.Is(err, ErrQueueFull) {
						t.Errorf("unexpected submit error: %v", err)
						return
					}
					if errors.Is(err, ErrShutdown) {
						return
					}
				}
			}()
		}

		shutdown(t, e)
		wg.Wait()

		_, err := e.Submit("late", nil, func(context.Context, Params) (any, error) {
			return nil, nil
		}, nil, nil)
		assert.ErrorIs(t, err, ErrShutdown)
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Pending", StatusPending.String())
	assert.Equal(t, "Running", StatusRunning.String())
	assert.Equal(t, "Completed", StatusCompleted.String())
	assert.Equal(t, "Failed", StatusFailed.String())
	assert.Equal(t, "Cancelled", StatusCancelled.String())
	assert.Equal(t, "Unknown", Status(99).String())
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func shutdown(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Shutdown(ctx))
}

func waitDone(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callbacks")
	}
}
