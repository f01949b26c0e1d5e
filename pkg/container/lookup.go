package container

import (
	"reflect"
	"strings"
)

// LookupHook finds the first submitted hook value, in submission order,
// whose type satisfies the capability. A non-empty name narrows the match
// to that hook, case-insensitively.
func (c *Container) LookupHook(capability reflect.Type, name string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, hookName := range c.hookOrder {
		if name != "" && !strings.EqualFold(name, hookName) {
			continue
		}
		if v := c.submittedHooks[hookName]; satisfies(v, capability) {
			return v, nil
		}
	}
	return nil, ErrHookNotFound.
		WithDetail("capability", capability.String()).
		WithDetail("name", name)
}

// LookupResource finds a provided resource by capability. A non-empty
// provider narrows the search to that provider's contributions; otherwise
// exactly one resource may satisfy the capability across all providers.
func (c *Container) LookupResource(capability reflect.Type, provider string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var found any
	matches := 0
	for _, providerName := range c.providerOrder {
		if provider != "" && !strings.EqualFold(provider, providerName) {
			continue
		}
		for _, v := range c.providedResources[providerName] {
			if satisfies(v, capability) {
				found = v
				matches++
			}
		}
	}
	switch matches {
	case 1:
		return found, nil
	case 0:
		return nil, ErrResourceNotFound.
			WithDetail("capability", capability.String()).
			WithDetail("provider", provider)
	default:
		return nil, ErrResourceNotFound.
			WithDetail("capability", capability.String()).
			WithDetail("provider", provider).
			WithDetail("reason", "ambiguous")
	}
}

// LookupResources returns every provided resource satisfying the
// capability, in provider submission order.
func (c *Container) LookupResources(capability reflect.Type) []any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []any
	for _, providerName := range c.providerOrder {
		for _, v := range c.providedResources[providerName] {
			if satisfies(v, capability) {
				out = append(out, v)
			}
		}
	}
	return out
}

// LookupTask finds a submitted task by name, case-insensitively.
func (c *Container) LookupTask(name string) (*Task, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, taskName := range c.taskOrder {
		if strings.EqualFold(name, taskName) {
			return c.submittedTasks[taskName], nil
		}
	}
	return nil, ErrTaskNotFound.WithDetail("name", name)
}

// Tasks returns the submitted tasks in submission order.
func (c *Container) Tasks() []*Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Task, 0, len(c.taskOrder))
	for _, name := range c.taskOrder {
		out = append(out, c.submittedTasks[name])
	}
	return out
}

func satisfies(v any, capability reflect.Type) bool {
	if v == nil || capability == nil {
		return false
	}
	vt := reflect.TypeOf(v)
	if capability.Kind() == reflect.Interface {
		return vt.Implements(capability)
	}
	return vt.AssignableTo(capability)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// HookAs returns the first submitted hook value satisfying T.
func HookAs[T any](c *Container) (T, error) {
	return hookLookup[T](c, "")
}

// HookNamed returns the named hook's value, checked against T.
func HookNamed[T any](c *Container, name string) (T, error) {
	return hookLookup[T](c, name)
}

// HookOr returns the first hook value satisfying T, or the fallback.
func HookOr[T any](c *Container, fallback T) T {
	v, err := hookLookup[T](c, "")
	if err != nil {
		return fallback
	}
	return v
}

func hookLookup[T any](c *Container, name string) (T, error) {
	var zero T
	v, err := c.LookupHook(typeOf[T](), name)
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// ResourceAs returns the single provided resource satisfying T.
func ResourceAs[T any](c *Container) (T, error) {
	return resourceLookup[T](c, "")
}

// ResourceFrom returns the named provider's resource satisfying T.
func ResourceFrom[T any](c *Container, provider string) (T, error) {
	return resourceLookup[T](c, provider)
}

// ResourceOr returns the single resource satisfying T, or the fallback.
func ResourceOr[T any](c *Container, fallback T) T {
	v, err := resourceLookup[T](c, "")
	if err != nil {
		return fallback
	}
	return v
}

func resourceLookup[T any](c *Container, provider string) (T, error) {
	var zero T
	v, err := c.LookupResource(typeOf[T](), provider)
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// ResourcesAs returns every provided resource satisfying T, in provider
// submission order.
func ResourcesAs[T any](c *Container) []T {
	values := c.LookupResources(typeOf[T]())
	out := make([]T, 0, len(values))
	for _, v := range values {
		out = append(out, v.(T))
	}
	return out
}

// SettingsAs extracts the settings themselves or one of their sections by
// type, so components depend only on the section they read.
func SettingsAs[T any](c *Container) (T, error) {
	var zero T
	t := typeOf[T]()
	s := c.Settings()

	if v, ok := any(s).(T); ok {
		return v, nil
	}
	if v, ok := any(*s).(T); ok {
		return v, nil
	}

	rv := reflect.ValueOf(s).Elem()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Type() == t {
			return f.Interface().(T), nil
		}
		if t.Kind() == reflect.Pointer && f.Type() == t.Elem() {
			return f.Addr().Interface().(T), nil
		}
	}
	return zero, ErrSettingsNotFound.WithDetail("type", t.String())
}

// SettingsOr extracts a settings section by type, or the fallback.
func SettingsOr[T any](c *Container, fallback T) T {
	v, err := SettingsAs[T](c)
	if err != nil {
		return fallback
	}
	return v
}
