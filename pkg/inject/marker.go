package inject

// Marker is a self-describing default: a value attached to a trailing
// parameter with WithDefaults that carries its own construction rule.
// Transports define their own markers (subject tokens, headers, URL
// parameters) and register them on the shared injector.
type Marker[C any] interface {
	Construct(ij *Injector[C]) (Constructor[C], error)
}

type dependsMarker[C any] struct {
	fn   any
	opts []WrapOption
}

// Depends marks a parameter as the result of another injectable function.
// The dependency is wrapped recursively with the same injector, so its own
// parameters resolve from the same context.
func Depends[C any](fn any, opts ...WrapOption) Marker[C] {
	return dependsMarker[C]{fn: fn, opts: opts}
}

func (d dependsMarker[C]) Construct(ij *Injector[C]) (Constructor[C], error) {
	h, err := ij.Wrap(d.fn, d.opts...)
	if err != nil {
		return nil, err
	}
	return Constructor[C](h), nil
}
