// Package engine runs blocking driver operations on a bounded worker
// pool. Each submitted task resolves through exactly one of its two
// callbacks; cancellation only reaches tasks still waiting in the
// queue, because a running task is a blocking external command that
// cannot be interrupted midway.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultWorkers is the pool size used when the caller passes zero.
const DefaultWorkers = 4

// queueCapacity bounds how many tasks can wait before Submit fails.
const queueCapacity = 64

// ErrShutdown is returned by Submit after Shutdown started.
var ErrShutdown = errors.New("engine is shut down")

// ErrQueueFull is returned by Submit when the queue is at capacity.
var ErrQueueFull = errors.New("task queue is full")

// WorkFunc is one unit of work. It receives the params it was
// submitted with and runs on a pool worker.
type WorkFunc func(ctx context.Context, params Params) (any, error)

// Callback receives the work's return value on success.
type Callback func(result any)

// ErrCallback receives the failure on error or cancellation.
type ErrCallback func(err error)

// Task is a submitted unit of work and its lifecycle state.
type Task struct {
	ID     string
	Name   string
	Params Params

	work WorkFunc
	cb   Callback
	ecb  ErrCallback

	mu          sync.Mutex
	status      Status
	createdAt   time.Time
	startedAt   time.Time
	completedAt time.Time
	err         error
}

// Status returns the task's current lifecycle state.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Err returns the failure recorded for the task, if any.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// transition moves the task to status if it is still in from,
// reporting whether the move happened.
func (t *Task) transition(from, to Status) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != from {
		return false
	}
	t.status = to
	switch to {
	case StatusRunning:
		t.startedAt = time.Now()
	case StatusCompleted, StatusFailed, StatusCancelled:
		t.completedAt = time.Now()
	}
	return true
}

// Engine is the bounded worker pool.
type Engine struct {
	mu      sync.Mutex
	tasks   map[string]*Task
	queue   chan *Task
	closed  bool
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// New creates an engine with the given number of workers (minimum 1,
// DefaultWorkers when zero or negative) and starts them.
func New(workers int) *Engine {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		tasks:   make(map[string]*Task),
		queue:   make(chan *Task, queueCapacity),
		baseCtx: ctx,
		cancel:  cancel,
		log:     log.With().Str("component", "engine").Logger(),
	}

	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}
	e.log.Debug().Int("workers", workers).Msg("Task engine started")
	return e
}

// Submit queues work for execution and returns its task ID. Exactly
// one of cb or ecb fires per accepted submission; a nil callback is
// simply skipped at resolution time.
func (e *Engine) Submit(name string, params Params, work WorkFunc, cb Callback, ecb ErrCallback) (string, error) {
	if work == nil {
		return "", errors.New("work function is nil")
	}

	t := &Task{
		ID:        uuid.NewString()[:8],
		Name:      name,
		Params:    params,
		work:      work,
		cb:        cb,
		ecb:       ecb,
		status:    StatusPending,
		createdAt: time.Now(),
	}

	// The send happens under the same lock that Shutdown holds while
	// closing the queue, so a submission can never race the close and
	// panic; it either enqueues or observes closed.
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return "", ErrShutdown
	}
	select {
	case e.queue <- t:
		e.tasks[t.ID] = t
	default:
		e.mu.Unlock()
		return "", ErrQueueFull
	}
	e.mu.Unlock()

	e.log.Debug().Str("task_id", t.ID).Str("name", name).Msg("Task submitted")
	return t.ID, nil
}

// Cancel requests cancellation of a queued task. It returns true only
// when the task had not started yet; a running task keeps running to
// completion or its own timeout.
func (e *Engine) Cancel(id string) bool {
	e.mu.Lock()
	t, ok := e.tasks[id]
	e.mu.Unlock()
	if !ok {
		return false
	}

	if !t.transition(StatusPending, StatusCancelled) {
		return false
	}

	t.mu.Lock()
	t.err = context.Canceled
	t.mu.Unlock()

	if t.ecb != nil {
		t.ecb(context.Canceled)
	}
	e.log.Debug().Str("task_id", id).Msg("Queued task cancelled")
	return true
}

// Task looks up a submitted task by ID.
func (e *Engine) Task(id string) (*Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tasks[id]
	return t, ok
}

// Shutdown stops accepting new tasks, lets queued and running work
// drain, and waits for the workers up to the context deadline.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.cancel()
		e.log.Debug().Msg("Task engine drained")
		return nil
	case <-ctx.Done():
		e.cancel()
		return ctx.Err()
	}
}

func (e *Engine) worker(n int) {
	defer e.wg.Done()

	for t := range e.queue {
		// A task cancelled while queued was already resolved.
		if !t.transition(StatusPending, StatusRunning) {
			continue
		}

		e.log.Debug().
			Int("worker", n).
			Str("task_id", t.ID).
			Str("name", t.Name).
			Msg("Task running")

		result, err := t.work(e.baseCtx, t.Params)
		if err != nil {
			t.mu.Lock()
			t.err = err
			t.mu.Unlock()
			t.transition(StatusRunning, StatusFailed)
			if t.ecb != nil {
				t.ecb(err)
			}
			e.log.Debug().Str("task_id", t.ID).Err(err).Msg("Task failed")
			continue
		}

		t.transition(StatusRunning, StatusCompleted)
		if t.cb != nil {
			t.cb(result)
		}
		e.log.Debug().Str("task_id", t.ID).Msg("Task completed")
	}
}
