package providers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/appwire/framework/pkg/container"
)

// CORSMiddleware builds a cross-origin middleware from settings. Origins
// are matched exactly, "*" allows any.
func CORSMiddleware(s container.CORSSettings) func(http.Handler) http.Handler {
	methods := strings.Join(s.AllowMethods, ", ")
	headers := strings.Join(s.AllowHeaders, ", ")

	allowed := func(origin string) bool {
		for _, o := range s.AllowOrigins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !allowed(origin) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if s.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				if s.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(s.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSProvider contributes the middleware when origins are configured and
// declines otherwise.
func CORSProvider() container.Provider {
	return container.NamedProvider("cors", func(c *container.Container) (container.ProviderResult, error) {
		s := c.Settings().CORS
		if len(s.AllowOrigins) == 0 {
			return container.NoResources(), nil
		}
		return container.Resources(CORSMiddleware(s)), nil
	})
}
