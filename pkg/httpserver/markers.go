package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/appwire/framework/pkg/inject"
)

// Param binds a handler parameter to a URL path parameter by name, for
// handlers that skip the implicit placeholder binding.
type Param struct {
	Name string
}

func (p Param) Construct(*inject.Injector[*http.Request]) (inject.Constructor[*http.Request], error) {
	return func(r *http.Request) (any, error) {
		v := chi.URLParam(r, p.Name)
		if v == "" {
			return nil, ErrMissingParam.WithDetail("name", p.Name)
		}
		return v, nil
	}, nil
}

// Query binds a handler parameter to a query string value. Absent keys
// resolve to Default unless Required is set.
type Query struct {
	Key      string
	Default  string
	Required bool
}

func (q Query) Construct(*inject.Injector[*http.Request]) (inject.Constructor[*http.Request], error) {
	return func(r *http.Request) (any, error) {
		if v := r.URL.Query().Get(q.Key); v != "" {
			return v, nil
		}
		if q.Required {
			return nil, ErrMissingQuery.WithDetail("key", q.Key)
		}
		return q.Default, nil
	}, nil
}

// Header binds a handler parameter to a request header.
type Header struct {
	Key     string
	Default string
}

func (h Header) Construct(*inject.Injector[*http.Request]) (inject.Constructor[*http.Request], error) {
	return func(r *http.Request) (any, error) {
		if v := r.Header.Get(h.Key); v != "" {
			return v, nil
		}
		return h.Default, nil
	}, nil
}
