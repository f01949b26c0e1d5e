package inject

import "github.com/appwire/framework/pkg/errors"

var newInjectCode = errors.WithPrefix("INJECT")

var (
	ErrNotFunction      = newInjectCode().New("target is not a function: {{.type}}")
	ErrVariadic         = newInjectCode().New("variadic functions cannot be wrapped: {{.type}}")
	ErrBadSignature     = newInjectCode().New("unsupported return signature: {{.type}}")
	ErrNoConstructor    = newInjectCode().New("no constructor for parameter {{.index}} of type {{.type}}")
	ErrUnknownMarker    = newInjectCode().New("default value of type {{.type}} is not a registered marker")
	ErrConstructedValue = newInjectCode().New("constructor for parameter {{.index}} produced {{.got}}, want {{.want}}")
)
