// Package inject builds call wrappers that supply every parameter of a target
// function from a single context value: an HTTP request, a queue message, or
// anything else. Each parameter is resolved once, at wrap time, from one of
// three sources: a constructor registered under the parameter's name, a
// self-describing default marker, or a constructor registered under the
// parameter's type. Functions that cannot be fully resolved are rejected when
// the wrapper is built, never on first traffic.
package inject

import (
	"reflect"
	"sync"
)

// Constructor produces one parameter value from the context.
type Constructor[C any] func(C) (any, error)

// Handler is the shape of a wrapped function.
type Handler[C any] func(C) (any, error)

type entry[C any] struct {
	fn       Constructor[C]
	identity bool
}

type Injector[C any] struct {
	mu      sync.RWMutex
	types   map[reflect.Type]entry[C]
	names   map[string]entry[C]
	markers map[reflect.Type]struct{}
	plans   sync.Map
	ctxType reflect.Type
}

func New[C any]() *Injector[C] {
	ij := &Injector[C]{
		types:   make(map[reflect.Type]entry[C]),
		names:   make(map[string]entry[C]),
		markers: make(map[reflect.Type]struct{}),
		ctxType: typeOf[C](),
	}
	// The context resolves to itself, and Depends is always a valid marker.
	ij.RegisterIdentity(ij.ctxType)
	ij.RegisterMarker(dependsMarker[C]{})
	return ij
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterType registers a constructor for parameters declared with type t.
func (ij *Injector[C]) RegisterType(t reflect.Type, ctor Constructor[C]) {
	ij.mu.Lock()
	defer ij.mu.Unlock()
	ij.types[t] = entry[C]{fn: ctor}
}

// RegisterIdentity registers type t as resolving to the context value itself.
// Wrapping a single-parameter function of an identity type short-circuits to
// the original function.
func (ij *Injector[C]) RegisterIdentity(t reflect.Type) {
	ij.mu.Lock()
	defer ij.mu.Unlock()
	ij.types[t] = entry[C]{
		fn:       func(c C) (any, error) { return c, nil },
		identity: true,
	}
}

// RegisterName registers a constructor for parameters declared with the given
// name. Names take precedence over markers and types.
func (ij *Injector[C]) RegisterName(name string, ctor Constructor[C]) {
	ij.mu.Lock()
	defer ij.mu.Unlock()
	ij.names[name] = entry[C]{fn: ctor}
}

// RegisterMarker allows values of the marker's concrete type to appear as
// self-describing defaults in WithDefaults.
func (ij *Injector[C]) RegisterMarker(m Marker[C]) {
	ij.mu.Lock()
	defer ij.mu.Unlock()
	ij.markers[reflect.TypeOf(m)] = struct{}{}
}

// Clone returns an injector with a copy of the constructor tables and an
// empty plan cache. Call sites that add scoped name constructors (URL
// parameters, subject tokens) clone the shared injector first.
func (ij *Injector[C]) Clone() *Injector[C] {
	ij.mu.RLock()
	defer ij.mu.RUnlock()

	cp := &Injector[C]{
		types:   make(map[reflect.Type]entry[C], len(ij.types)),
		names:   make(map[string]entry[C], len(ij.names)),
		markers: make(map[reflect.Type]struct{}, len(ij.markers)),
		ctxType: ij.ctxType,
	}
	for t, e := range ij.types {
		cp.types[t] = e
	}
	for n, e := range ij.names {
		cp.names[n] = e
	}
	for t := range ij.markers {
		cp.markers[t] = struct{}{}
	}
	return cp
}

// Type registers a typed constructor for T.
func Type[T any, C any](ij *Injector[C], ctor func(C) (T, error)) {
	ij.RegisterType(typeOf[T](), func(c C) (any, error) {
		return ctor(c)
	})
}

// Name registers a typed constructor for the parameter name.
func Name[T any, C any](ij *Injector[C], name string, ctor func(C) (T, error)) {
	ij.RegisterName(name, func(c C) (any, error) {
		return ctor(c)
	})
}
