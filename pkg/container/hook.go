package container

import "context"

// ReleaseFunc tears down what its acquire counterpart set up.
type ReleaseFunc func(ctx context.Context) error

// AcquireFunc sets up a resource and returns it together with its release
// function. Returning (nil, nil, nil) declines: the hook submits nothing
// and nothing is pushed onto the shutdown stack.
type AcquireFunc func(ctx context.Context, c *Container) (any, ReleaseFunc, error)

// Hook is a startup step with a paired teardown. Hooks run in declaration
// order on Start and their releases run in reverse order on Stop.
type Hook struct {
	name    string
	acquire AcquireFunc
}

func NewHook(acquire AcquireFunc) Hook {
	return Hook{name: funcName(acquire), acquire: acquire}
}

func NamedHook(name string, acquire AcquireFunc) Hook {
	return Hook{name: name, acquire: acquire}
}

func (h Hook) Name() string { return h.name }
