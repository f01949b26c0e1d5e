package httpserver

import "github.com/appwire/framework/pkg/errors"

var newHTTPCode = errors.WithPrefix("HTTP")

var (
	ErrRoute        = newHTTPCode().New("route {{.method}} {{.pattern}} cannot be built")
	ErrServe        = newHTTPCode().New("server on {{.addr}} failed")
	ErrMissingParam = newHTTPCode().New("missing url parameter {{.name}}")
	ErrMissingQuery = newHTTPCode().New("missing query parameter {{.key}}")
)
