package errors

var newCoreCode = WithPrefix("CORE")

var (
	ErrConfiguration = newCoreCode().New("invalid configuration")
	ErrStartup       = newCoreCode().New("startup failed")
	ErrLookup        = newCoreCode().New("lookup failed")
	ErrState         = newCoreCode().New("invalid state")
	ErrResolution    = newCoreCode().New("dependency resolution failed")
	ErrAuth          = newCoreCode().New("authentication required")
	ErrPermission    = newCoreCode().New("access denied")
	ErrInternal      = newCoreCode().New("internal error")
	ErrUnavailable   = newCoreCode().New("service unavailable")
)
