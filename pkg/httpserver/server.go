package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/appwire/framework/pkg/container"
	"github.com/appwire/framework/pkg/contracts"
	"github.com/appwire/framework/pkg/inject"
)

// Server exposes injected handlers over HTTP. Routes are chi patterns;
// their {param} placeholders become name constructors, so a handler for
// /sensors/{id} can take id as a parameter.
type Server struct {
	c      *container.Container
	log    contracts.Logger
	router chi.Router
	base   *inject.Injector[*http.Request]
}

func New(c *container.Container) *Server {
	s := &Server{
		c:      c,
		log:    c.Logger(),
		router: chi.NewRouter(),
		base:   inject.New[*http.Request](),
	}
	inject.Type(s.base, func(r *http.Request) (*container.Container, error) {
		return c, nil
	})
	inject.Type(s.base, func(r *http.Request) (context.Context, error) {
		return r.Context(), nil
	})
	inject.Type(s.base, func(r *http.Request) (*container.Settings, error) {
		return c.Settings(), nil
	})
	s.base.RegisterMarker(Param{})
	s.base.RegisterMarker(Query{})
	s.base.RegisterMarker(Header{})
	return s
}

// Injector exposes the base injector for registering custom constructors
// and markers before routes are added.
func (s *Server) Injector() *inject.Injector[*http.Request] { return s.base }

// Router exposes the underlying chi router for plain handlers and mounts.
func (s *Server) Router() chi.Router { return s.router }

// Handle wires an injected handler to method and pattern. Resolution
// failures surface here, before the route is registered.
func (s *Server) Handle(method, pattern string, fn any, opts ...inject.WrapOption) error {
	ij := s.base
	if params := patternParams(pattern); len(params) > 0 {
		ij = ij.Clone()
		for _, name := range params {
			name := name
			inject.Name(ij, name, func(r *http.Request) (string, error) {
				v := chi.URLParam(r, name)
				if v == "" {
					return "", ErrMissingParam.WithDetail("name", name)
				}
				return v, nil
			})
		}
	}

	h, err := ij.Wrap(fn, opts...)
	if err != nil {
		return ErrRoute.
			WithDetail("method", method).
			WithDetail("pattern", pattern).
			WithCause(err)
	}

	s.router.MethodFunc(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		result, err := h(r)
		s.write(w, r, result, err)
	})
	return nil
}

func (s *Server) Get(pattern string, fn any, opts ...inject.WrapOption) error {
	return s.Handle(http.MethodGet, pattern, fn, opts...)
}

func (s *Server) Post(pattern string, fn any, opts ...inject.WrapOption) error {
	return s.Handle(http.MethodPost, pattern, fn, opts...)
}

func (s *Server) Put(pattern string, fn any, opts ...inject.WrapOption) error {
	return s.Handle(http.MethodPut, pattern, fn, opts...)
}

func (s *Server) Delete(pattern string, fn any, opts ...inject.WrapOption) error {
	return s.Handle(http.MethodDelete, pattern, fn, opts...)
}

// Response lets a handler choose its own status code.
type Response struct {
	Status int
	Body   any
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, result any, err error) {
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.log.Error("handler failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		writeJSON(w, status, map[string]any{
			"error": err.Error(),
		})
		return
	}

	switch v := result.(type) {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case *Response:
		writeJSON(w, v.Status, v.Body)
	case []byte:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(v)
	default:
		writeJSON(w, http.StatusOK, v)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// Handler assembles the router wrapped in every middleware resource the
// container's providers contributed, in provider order.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	middlewares := container.ResourcesAs[func(http.Handler) http.Handler](s.c)
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Run starts the container, serves until the serving context or ctx ends,
// then shuts the listener and the container down in order.
func (s *Server) Run(ctx context.Context) error {
	if err := s.c.Start(ctx); err != nil {
		return err
	}

	settings := s.c.Settings().Server
	addr := net.JoinHostPort(settings.Host, strconv.Itoa(settings.Port))
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- ErrServe.WithDetail("addr", addr).WithCause(err)
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	case <-s.c.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.c.GracefulTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = ErrServe.WithDetail("addr", addr).WithCause(err)
	}
	if err := s.c.Stop(context.WithoutCancel(ctx)); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

// patternParams extracts the {name} placeholders of a chi route pattern,
// stripping any regex qualifier.
func patternParams(pattern string) []string {
	var names []string
	for _, seg := range strings.Split(pattern, "/") {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		name := seg[1 : len(seg)-1]
		if i := strings.Index(name, ":"); i >= 0 {
			name = name[:i]
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
