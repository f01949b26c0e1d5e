package httpserver

import (
	"net/http"

	"github.com/appwire/framework/pkg/container"
	"github.com/appwire/framework/pkg/errors"
)

// statusFor maps coded errors onto HTTP statuses. Unknown errors are
// internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, errors.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, errors.ErrLookup),
		errors.Is(err, container.ErrHookNotFound),
		errors.Is(err, container.ErrResourceNotFound),
		errors.Is(err, container.ErrTaskNotFound),
		errors.Is(err, container.ErrSettingsNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingParam),
		errors.Is(err, ErrMissingQuery),
		errors.Is(err, errors.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrState):
		return http.StatusConflict
	case errors.Is(err, errors.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
