package inject

import (
	"testing"

	"github.com/appwire/framework/pkg/errors"
)

// headerMarker mimics a transport-defined self-describing default.
type headerMarker struct {
	key string
}

func (m headerMarker) Construct(_ *Injector[*testMsg]) (Constructor[*testMsg], error) {
	return func(msg *testMsg) (any, error) {
		return msg.Headers[m.key], nil
	}, nil
}

func TestWrap_MarkerDefaults(t *testing.T) {
	ij := newTestInjector()
	ij.RegisterMarker(headerMarker{})

	h, err := ij.Wrap(func(data []byte, trace string) (any, error) {
		return string(data) + "/" + trace, nil
	}, WithDefaults(headerMarker{key: "trace-id"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := h(&testMsg{
		Data:    []byte("body"),
		Headers: map[string]string{"trace-id": "abc"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "body/abc" {
		t.Errorf("marker should resolve the trailing parameter, got %v", got)
	}
}

func TestWrap_MarkersAreRightAligned(t *testing.T) {
	ij := newTestInjector()
	ij.RegisterMarker(headerMarker{})

	// Three parameters, one default: the marker binds to the last one.
	h, err := ij.Wrap(func(subject string, data []byte, tenant string) (any, error) {
		return subject + "|" + string(data) + "|" + tenant, nil
	}, WithDefaults(headerMarker{key: "tenant"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := h(&testMsg{
		Subject: "s",
		Data:    []byte("d"),
		Headers: map[string]string{"tenant": "acme"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "s|d|acme" {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestWrap_UnregisteredMarker(t *testing.T) {
	ij := newTestInjector()

	_, err := ij.Wrap(func(trace string) (any, error) {
		return trace, nil
	}, WithDefaults(headerMarker{key: "x"}))
	if !errors.Is(err, ErrUnknownMarker) {
		t.Errorf("expected ErrUnknownMarker, got %v", err)
	}
}

func TestWrap_NameBeatsMarker(t *testing.T) {
	ij := newTestInjector()
	ij.RegisterMarker(headerMarker{})
	Name(ij, "trace", func(m *testMsg) (string, error) { return "from-name", nil })

	h, err := ij.Wrap(func(trace string) (any, error) {
		return trace, nil
	}, WithParams("trace"), WithDefaults(headerMarker{key: "trace"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := h(&testMsg{Headers: map[string]string{"trace": "from-marker"}})
	if got != "from-name" {
		t.Errorf("name constructors take precedence over markers, got %v", got)
	}
}

func TestDepends_RecursiveWrapping(t *testing.T) {
	ij := newTestInjector()

	firstToken := func(subject string) (any, error) {
		for i := range subject {
			if subject[i] == '.' {
				return subject[:i], nil
			}
		}
		return subject, nil
	}

	h, err := ij.Wrap(func(data []byte, root string) (any, error) {
		return root + ":" + string(data), nil
	}, WithDefaults(Depends[*testMsg](firstToken)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := h(&testMsg{Subject: "pub.sensor.1", Data: []byte("x")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "pub:x" {
		t.Errorf("dependency should resolve through its own injection, got %v", got)
	}
}

func TestDepends_UnresolvableDependencyFailsAtWrapTime(t *testing.T) {
	ij := newTestInjector()

	dep := func(n int) (any, error) { return n, nil }
	_, err := ij.Wrap(func(v string) (any, error) {
		return v, nil
	}, WithDefaults(Depends[*testMsg](dep)))
	if !errors.Is(err, ErrNoConstructor) {
		t.Errorf("dependency resolution failures must surface at wrap time, got %v", err)
	}
}
