package inject

import (
	"reflect"
)

type WrapOption func(*wrapConfig)

type wrapConfig struct {
	params   []string
	defaults []any
}

// WithParams declares the target function's parameter names in declaration
// order. Go reflection cannot recover parameter names, so call sites that
// rely on name constructors state them explicitly. Trailing parameters may
// be omitted.
func WithParams(names ...string) WrapOption {
	return func(c *wrapConfig) {
		c.params = names
	}
}

// WithDefaults attaches self-describing default markers to the trailing
// parameters, right-aligned against the parameter list the way declaration
// site defaults would be.
func WithDefaults(markers ...any) WrapOption {
	return func(c *wrapConfig) {
		c.defaults = markers
	}
}

type retKind int

const (
	retNone retKind = iota
	retValue
	retError
	retValueError
)

type plan[C any] struct {
	ctors []Constructor[C]
	ret   retKind
	// single identity parameter, candidate for the unwrapped fast path
	identityOnly bool
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Wrap builds a Handler that constructs every parameter of fn from the
// context and invokes it. Resolution failures surface here, not at call
// time. A single-parameter function whose constructor is the identity is
// returned as-is when its shape already matches Handler.
func (ij *Injector[C]) Wrap(fn any, opts ...WrapOption) (Handler[C], error) {
	cfg := &wrapConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func {
		return nil, ErrNotFunction.WithDetail("type", reflect.TypeOf(fn))
	}
	fnType := fnVal.Type()

	p, err := ij.planFor(fnType, cfg, len(opts) == 0)
	if err != nil {
		return nil, err
	}

	if p.identityOnly {
		if direct, ok := fn.(func(C) (any, error)); ok {
			return direct, nil
		}
	}

	return func(c C) (any, error) {
		args := make([]reflect.Value, len(p.ctors))
		for i, ctor := range p.ctors {
			v, err := ctor(c)
			if err != nil {
				return nil, err
			}
			av, err := argValue(v, fnType.In(i), i)
			if err != nil {
				return nil, err
			}
			args[i] = av
		}

		out := fnVal.Call(args)
		switch p.ret {
		case retNone:
			return nil, nil
		case retError:
			return nil, asError(out[0])
		case retValue:
			return out[0].Interface(), nil
		default:
			return out[0].Interface(), asError(out[1])
		}
	}, nil
}

// planFor computes (or returns the cached) resolution plan for a signature.
// Plans depend only on the signature and the registered tables, so the cache
// is keyed by the function type and skipped when per-wrap options are given.
func (ij *Injector[C]) planFor(fnType reflect.Type, cfg *wrapConfig, cacheable bool) (*plan[C], error) {
	if cacheable {
		if cached, ok := ij.plans.Load(fnType); ok {
			return cached.(*plan[C]), nil
		}
	}

	if fnType.IsVariadic() {
		return nil, ErrVariadic.WithDetail("type", fnType.String())
	}

	ret, err := returnKind(fnType)
	if err != nil {
		return nil, err
	}

	numIn := fnType.NumIn()
	if len(cfg.defaults) > numIn || len(cfg.params) > numIn {
		return nil, ErrBadSignature.WithDetail("type", fnType.String())
	}
	p := &plan[C]{
		ctors: make([]Constructor[C], numIn),
		ret:   ret,
	}

	markerOffset := numIn - len(cfg.defaults)

	for i := 0; i < numIn; i++ {
		var name string
		if i < len(cfg.params) {
			name = cfg.params[i]
		}
		var marker any
		if i >= markerOffset && markerOffset >= 0 {
			marker = cfg.defaults[i-markerOffset]
		}

		e, err := ij.constructorFor(fnType.In(i), i, name, marker)
		if err != nil {
			return nil, err
		}
		p.ctors[i] = e.fn
		if numIn == 1 && e.identity {
			p.identityOnly = true
		}
	}

	if cacheable {
		ij.plans.Store(fnType, p)
	}
	return p, nil
}

// constructorFor applies the resolution order: name, marker, type.
func (ij *Injector[C]) constructorFor(pt reflect.Type, index int, name string, marker any) (entry[C], error) {
	ij.mu.RLock()
	if name != "" {
		if e, ok := ij.names[name]; ok {
			ij.mu.RUnlock()
			return e, nil
		}
	}
	if marker != nil {
		_, registered := ij.markers[reflect.TypeOf(marker)]
		ij.mu.RUnlock()
		if !registered {
			return entry[C]{}, ErrUnknownMarker.WithDetail("type", reflect.TypeOf(marker).String())
		}
		m, ok := marker.(Marker[C])
		if !ok {
			return entry[C]{}, ErrUnknownMarker.WithDetail("type", reflect.TypeOf(marker).String())
		}
		ctor, err := m.Construct(ij)
		if err != nil {
			return entry[C]{}, err
		}
		return entry[C]{fn: ctor}, nil
	}
	e, ok := ij.types[pt]
	ij.mu.RUnlock()
	if ok {
		return e, nil
	}
	return entry[C]{}, ErrNoConstructor.
		WithDetail("index", index).
		WithDetail("type", pt.String())
}

func returnKind(fnType reflect.Type) (retKind, error) {
	switch fnType.NumOut() {
	case 0:
		return retNone, nil
	case 1:
		if fnType.Out(0).Implements(errorType) {
			return retError, nil
		}
		return retValue, nil
	case 2:
		if !fnType.Out(1).Implements(errorType) {
			return 0, ErrBadSignature.WithDetail("type", fnType.String())
		}
		return retValueError, nil
	default:
		return 0, ErrBadSignature.WithDetail("type", fnType.String())
	}
}

func argValue(v any, pt reflect.Type, index int) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(pt), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(pt) {
		return reflect.Value{}, ErrConstructedValue.
			WithDetail("index", index).
			WithDetail("got", rv.Type().String()).
			WithDetail("want", pt.String())
	}
	return rv, nil
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}
