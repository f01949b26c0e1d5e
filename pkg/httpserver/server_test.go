package httpserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/appwire/framework/pkg/container"
	"github.com/appwire/framework/pkg/errors"
	"github.com/appwire/framework/pkg/httpserver"
	"github.com/appwire/framework/pkg/inject"
)

func newTestServer(t *testing.T, opts container.Options) *httpserver.Server {
	t.Helper()
	c, err := container.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return httpserver.New(c)
}

func do(t *testing.T, s *httpserver.Server, method, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandle_PathParamsBindByName(t *testing.T) {
	s := newTestServer(t, container.Options{})
	err := s.Get("/sensors/{id}/readings/{kind}", func(id string, kind string) (any, error) {
		return id + "/" + kind, nil
	}, inject.WithParams("id", "kind"))
	if err != nil {
		t.Fatal(err)
	}

	rec := do(t, s, http.MethodGet, "/sensors/42/readings/temp", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var got string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got != "42/temp" {
		t.Errorf("unexpected body: %q", got)
	}
}

func TestHandle_UnresolvableHandlerFailsAtRegistration(t *testing.T) {
	s := newTestServer(t, container.Options{})
	err := s.Get("/x", func(n int) (any, error) { return n, nil })
	if !errors.Is(err, httpserver.ErrRoute) {
		t.Fatalf("expected ErrRoute, got %v", err)
	}
	if !errors.Is(err, inject.ErrNoConstructor) {
		t.Errorf("the cause must be the resolution failure, got %v", err)
	}
}

func TestHandle_QueryAndHeaderMarkers(t *testing.T) {
	s := newTestServer(t, container.Options{})
	err := s.Get("/search", func(q string, trace string) (any, error) {
		return q + "|" + trace, nil
	}, inject.WithDefaults(
		httpserver.Query{Key: "q", Required: true},
		httpserver.Header{Key: "X-Trace", Default: "none"},
	))
	if err != nil {
		t.Fatal(err)
	}

	rec := do(t, s, http.MethodGet, "/search?q=abc", map[string]string{"X-Trace": "t1"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "abc|t1") {
		t.Errorf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/search", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("a missing required query is a bad request, got %d", rec.Code)
	}
}

func TestHandle_ErrorStatusMapping(t *testing.T) {
	s := newTestServer(t, container.Options{})
	cases := []struct {
		path string
		err  error
		want int
	}{
		{"/auth", errors.ErrAuth, http.StatusUnauthorized},
		{"/perm", errors.ErrPermission, http.StatusForbidden},
		{"/missing", errors.ErrLookup, http.StatusNotFound},
		{"/state", errors.ErrState, http.StatusConflict},
		{"/down", errors.ErrUnavailable, http.StatusServiceUnavailable},
		{"/boom", errors.ErrInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		tc := tc
		if err := s.Get(tc.path, func() (any, error) { return nil, tc.err }); err != nil {
			t.Fatal(err)
		}
	}
	for _, tc := range cases {
		rec := do(t, s, http.MethodGet, tc.path, nil)
		if rec.Code != tc.want {
			t.Errorf("%s: got %d, want %d", tc.path, rec.Code, tc.want)
		}
	}
}

func TestHandle_ResponseChoosesStatus(t *testing.T) {
	s := newTestServer(t, container.Options{})
	if err := s.Post("/things", func() (any, error) {
		return &httpserver.Response{Status: http.StatusCreated, Body: map[string]string{"id": "1"}}, nil
	}); err != nil {
		t.Fatal(err)
	}
	rec := do(t, s, http.MethodPost, "/things", nil)
	if rec.Code != http.StatusCreated {
		t.Errorf("unexpected status: %d", rec.Code)
	}
}

func TestHandle_NilResultIsNoContent(t *testing.T) {
	s := newTestServer(t, container.Options{})
	if err := s.Delete("/things/{id}", func(id string) error {
		return nil
	}, inject.WithParams("id")); err != nil {
		t.Fatal(err)
	}
	rec := do(t, s, http.MethodDelete, "/things/9", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("unexpected status: %d", rec.Code)
	}
}

func TestHandler_AppliesMiddlewareResources(t *testing.T) {
	tagging := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Tagged", "yes")
			next.ServeHTTP(w, r)
		})
	}
	s := newTestServer(t, container.Options{
		Providers: []container.Provider{
			container.NamedProvider("middleware", func(c *container.Container) (container.ProviderResult, error) {
				return container.Resources(tagging), nil
			}),
		},
	})
	if err := s.Get("/ping", func() (any, error) { return "pong", nil }); err != nil {
		t.Fatal(err)
	}

	rec := do(t, s, http.MethodGet, "/ping", nil)
	if rec.Header().Get("X-Tagged") != "yes" {
		t.Error("provider middleware must wrap the router")
	}
}

func TestHandle_ContainerInjection(t *testing.T) {
	s := newTestServer(t, container.Options{
		Meta: container.Meta{Name: "unit"},
	})
	if err := s.Get("/meta", func(c *container.Container) (any, error) {
		return c.Meta().Name, nil
	}); err != nil {
		t.Fatal(err)
	}
	rec := do(t, s, http.MethodGet, "/meta", nil)
	if !strings.Contains(rec.Body.String(), "unit") {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}
