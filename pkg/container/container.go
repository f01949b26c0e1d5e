package container

import (
	"context"
	"sync"
	"time"

	"github.com/appwire/framework/pkg/contracts"
	"github.com/appwire/framework/pkg/logger"
)

// Meta describes the application the container runs.
type Meta struct {
	Name        string
	Title       string
	Description string
	Version     string
	Environment string
}

type Options struct {
	Meta     Meta
	Settings *Settings
	// ConfigFile and EnvFile feed the settings layering; EnvPrefix scopes
	// environment variables and defaults to APP.
	ConfigFile string
	EnvFile    string
	EnvPrefix  string

	Hooks     []Hook
	Tasks     []TaskSource
	Providers []Provider

	Logger contracts.Logger
	// GracefulTimeout bounds how long Stop waits for releases and task
	// shutdown. Zero means 10 seconds.
	GracefulTimeout time.Duration
}

// Container assembles an application from hooks, tasks and providers and
// drives them through a start/stop lifecycle. Providers run at construction
// time; hooks acquire resources on Start in order and release them on Stop
// in reverse; tasks run as supervised goroutines between the two.
type Container struct {
	meta            Meta
	settings        *Settings
	log             contracts.Logger
	gracefulTimeout time.Duration

	serveCtx    context.Context
	cancelServe context.CancelFunc

	// lifecycleMu serialises Start and Stop without blocking lookups.
	lifecycleMu sync.Mutex

	mu                sync.RWMutex
	started           bool
	hooks             []Hook
	tasks             []TaskSource
	providers         []Provider
	stack             resourceStack
	submittedHooks    map[string]any
	hookOrder         []string
	submittedTasks    map[string]*Task
	taskOrder         []string
	providedResources map[string][]any
	providerOrder     []string
}

// New builds a container and immediately runs its providers in order. A
// provider error fails construction.
func New(opts Options) (*Container, error) {
	settings, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	timeout := opts.GracefulTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Container{
		meta:              opts.Meta,
		settings:          settings,
		log:               log,
		gracefulTimeout:   timeout,
		hooks:             append([]Hook(nil), opts.Hooks...),
		tasks:             append([]TaskSource(nil), opts.Tasks...),
		providers:         append([]Provider(nil), opts.Providers...),
		submittedHooks:    map[string]any{},
		submittedTasks:    map[string]*Task{},
		providedResources: map[string][]any{},
	}
	c.serveCtx, c.cancelServe = context.WithCancel(context.Background())

	for _, p := range c.providers {
		result, err := p.provide(c)
		if err != nil {
			return nil, ErrProvider.WithDetail("provider", p.Name()).WithCause(err)
		}
		if !result.provided {
			continue
		}
		c.mu.Lock()
		if _, seen := c.providedResources[p.name]; !seen {
			c.providerOrder = append(c.providerOrder, p.name)
		}
		c.providedResources[p.name] = append(c.providedResources[p.name], result.resources...)
		c.mu.Unlock()
	}
	return c, nil
}

func (c *Container) Meta() Meta               { return c.meta }
func (c *Container) Settings() *Settings      { return c.settings }
func (c *Container) Logger() contracts.Logger { return c.log }

func (c *Container) GracefulTimeout() time.Duration { return c.gracefulTimeout }

// Context is the serving context: alive while the container should keep
// serving, cancelled by ExitSoon or Stop.
func (c *Container) Context() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serveCtx
}

func (c *Container) Done() <-chan struct{} {
	return c.Context().Done()
}

// ExitSoon requests shutdown by cancelling the serving context. Transports
// watching Done react by draining and calling Stop.
func (c *Container) ExitSoon() {
	c.mu.RLock()
	cancel := c.cancelServe
	c.mu.RUnlock()
	cancel()
}

func (c *Container) Started() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.started
}

// AddHook registers another hook. Before Start it joins the startup order;
// after Start it is acquired on the next Start.
func (c *Container) AddHook(h Hook) {
	c.mu.Lock()
	c.hooks = append(c.hooks, h)
	c.mu.Unlock()
}

func (c *Container) AddTask(src TaskSource) {
	c.mu.Lock()
	c.tasks = append(c.tasks, src)
	c.mu.Unlock()
}

// Start acquires every hook in order, then launches every task. Any failure
// releases everything acquired so far, in reverse, and leaves the container
// stopped. Starting a started container is an error.
func (c *Container) Start(ctx context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	// A stopped container can be started again; give its tasks a live
	// serving context.
	if c.serveCtx.Err() != nil {
		c.serveCtx, c.cancelServe = context.WithCancel(context.Background())
	}
	hooks := append([]Hook(nil), c.hooks...)
	tasks := append([]TaskSource(nil), c.tasks...)
	c.mu.Unlock()

	for _, h := range hooks {
		value, release, err := h.acquire(ctx, c)
		if err != nil {
			c.failStartup(ctx)
			return ErrHookStart.WithDetail("hook", h.name).WithCause(err)
		}
		if value == nil && release == nil {
			c.log.Debug("hook declined", "hook", h.name)
			continue
		}

		c.mu.Lock()
		c.stack.push(h.name, release)
		if _, seen := c.submittedHooks[h.name]; !seen {
			c.hookOrder = append(c.hookOrder, h.name)
		}
		c.submittedHooks[h.name] = value
		c.mu.Unlock()
		c.log.Debug("hook started", "hook", h.name)
	}

	for _, src := range tasks {
		t, err := src.resolveTask(c)
		if err != nil {
			c.failStartup(ctx)
			return ErrTaskStart.WithDetail("task", "factory").WithCause(err)
		}
		if t == nil {
			continue
		}
		t.Bind(c)
		if err := t.Start(ctx); err != nil {
			c.failStartup(ctx)
			return ErrTaskStart.WithDetail("task", t.Name()).WithCause(err)
		}

		c.mu.Lock()
		c.stack.push(t.Name(), t.Stop)
		if _, seen := c.submittedTasks[t.Name()]; !seen {
			c.taskOrder = append(c.taskOrder, t.Name())
		}
		c.submittedTasks[t.Name()] = t
		c.mu.Unlock()
		c.log.Debug("task started", "task", t.Name(), "run_id", t.RunID())
	}

	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	c.log.Info("container started",
		"name", c.meta.Name,
		"hooks", len(hooks),
		"tasks", len(tasks),
	)
	return nil
}

// failStartup rolls back a partial Start. Release errors are logged, not
// returned, so the original startup error stays primary.
func (c *Container) failStartup(ctx context.Context) {
	if err := c.unwind(ctx); err != nil {
		c.log.Error("rollback after failed start", "error", err)
	}
}

// Stop releases everything in reverse acquisition order, bounded by the
// graceful timeout. It runs unconditionally: stopping a container that
// never started, or only partially started, releases whatever it holds.
func (c *Container) Stop(ctx context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	c.cancelServe()
	if c.gracefulTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.gracefulTimeout)
		defer cancel()
	}
	err := c.unwind(ctx)
	if err != nil {
		c.log.Error("container stopped with release errors", "error", err)
		return err
	}
	c.log.Info("container stopped", "name", c.meta.Name)
	return nil
}

// unwind detaches the stack under the short lock, then releases outside it
// so release funcs may use container lookups.
func (c *Container) unwind(ctx context.Context) error {
	c.mu.Lock()
	st := c.stack
	c.stack = resourceStack{}
	c.mu.Unlock()

	err := st.unwind(ctx)

	c.mu.Lock()
	c.submittedHooks = map[string]any{}
	c.hookOrder = nil
	c.submittedTasks = map[string]*Task{}
	c.taskOrder = nil
	c.started = false
	c.mu.Unlock()
	return err
}

// Serve starts the container, blocks until the serving context is cancelled
// and then stops it. ExitSoon or cancelling ctx ends the run.
func (c *Container) Serve(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-c.Done():
	}
	stopCtx := context.WithoutCancel(ctx)
	return c.Stop(stopCtx)
}
