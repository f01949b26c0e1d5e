package container

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/appwire/framework/pkg/errors"
)

type TaskState int

const (
	TaskIdle TaskState = iota
	TaskRunning
	TaskSucceeded
	TaskFailed
	TaskCancelled
)

func (s TaskState) String() string {
	switch s {
	case TaskIdle:
		return "idle"
	case TaskRunning:
		return "running"
	case TaskSucceeded:
		return "succeeded"
	case TaskFailed:
		return "failed"
	case TaskCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s TaskState) Terminal() bool {
	return s == TaskSucceeded || s == TaskFailed || s == TaskCancelled
}

// TaskFunc is the body of a supervised task. The context derives from the
// container's serving context and is cancelled on Stop.
type TaskFunc func(ctx context.Context, c *Container) (any, error)

// TaskSource yields a task during Start. A source may decline by resolving
// to nil.
type TaskSource interface {
	resolveTask(c *Container) (*Task, error)
}

// TaskFactory builds a task against the started container, or declines with
// (nil, nil).
type TaskFactory func(c *Container) (*Task, error)

func (f TaskFactory) resolveTask(c *Container) (*Task, error) { return f(c) }

func (fn TaskFunc) resolveTask(*Container) (*Task, error) { return NewTask(fn), nil }

// Task supervises a single goroutine through an explicit lifecycle. A task
// is bound to a container, started, observed and stopped; each start is a
// fresh run with its own identifier.
type Task struct {
	name string
	fn   TaskFunc

	mu        sync.Mutex
	container *Container
	state     TaskState
	runID     string
	cancel    context.CancelFunc
	done      chan struct{}
	result    any
	err       error
}

func NewTask(fn TaskFunc, name ...string) *Task {
	n := funcName(fn)
	if len(name) > 0 && name[0] != "" {
		n = name[0]
	}
	return &Task{name: n, fn: fn}
}

func (t *Task) resolveTask(*Container) (*Task, error) { return t, nil }

func (t *Task) Name() string { return t.name }

// Bind attaches the task to the container its runs will observe.
func (t *Task) Bind(c *Container) *Task {
	t.mu.Lock()
	t.container = c
	t.mu.Unlock()
	return t
}

// Start launches a new run. Starting a running task is a no-op; starting a
// finished task begins a fresh run with a new identifier.
func (t *Task) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.container == nil {
		return ErrTaskNotBound.WithDetail("task", t.name)
	}
	if t.state == TaskRunning {
		return nil
	}

	runCtx, cancel := context.WithCancel(t.container.Context())
	t.cancel = cancel
	t.done = make(chan struct{})
	t.state = TaskRunning
	t.runID = uuid.NewString()
	t.result = nil
	t.err = nil

	go t.run(runCtx)
	return nil
}

func (t *Task) run(ctx context.Context) {
	result, err := t.fn(ctx, t.container)

	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case err != nil && ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		t.state = TaskCancelled
		t.err = ErrTaskCancelled.WithDetail("task", t.name).WithCause(err)
	case err != nil:
		t.state = TaskFailed
		t.err = err
	default:
		t.state = TaskSucceeded
		t.result = result
	}
	close(t.done)
}

// Stop cancels the current run and waits for it to finish, bounded by ctx.
// Stopping an idle or finished task is a no-op.
func (t *Task) Stop(ctx context.Context) error {
	t.mu.Lock()
	if t.state != TaskRunning {
		t.mu.Unlock()
		return nil
	}
	cancel := t.cancel
	done := t.done
	t.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrTaskStopTimeout.WithDetail("task", t.name)
	}
}

// Restart stops the current run, then begins a new one.
func (t *Task) Restart(ctx context.Context) error {
	if err := t.Stop(ctx); err != nil {
		return err
	}
	return t.Start(ctx)
}

// Wait blocks until the current run finishes. A non-positive timeout waits
// indefinitely. It reports whether the task reached a terminal state.
func (t *Task) Wait(timeout time.Duration) bool {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done == nil {
		return false
	}
	if timeout <= 0 {
		<-done
		return true
	}
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (t *Task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// RunID identifies the current or most recent run.
func (t *Task) RunID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runID
}

func (t *Task) Started() bool   { return t.State() == TaskRunning }
func (t *Task) Done() bool      { return t.State().Terminal() }
func (t *Task) Cancelled() bool { return t.State() == TaskCancelled }
func (t *Task) Failed() bool    { return t.State() == TaskFailed }
func (t *Task) Succeeded() bool { return t.State() == TaskSucceeded }

// Result returns the value produced by a successful run. Every other state
// yields a distinct error.
func (t *Task) Result() (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case TaskIdle:
		return nil, ErrTaskNotStarted.WithDetail("task", t.name)
	case TaskRunning:
		return nil, ErrTaskPending.WithDetail("task", t.name)
	case TaskCancelled:
		return nil, t.err
	case TaskFailed:
		return nil, ErrTaskFailed.WithDetail("task", t.name).WithCause(t.err)
	default:
		return t.result, nil
	}
}

// Err reports the terminal error, nil while not finished or on success.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Terminal() || t.state == TaskSucceeded {
		return nil
	}
	return t.err
}
