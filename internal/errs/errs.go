package errs

import (
	"errors"
	"net/http"
)

// Sentinel errors returned by services. Handlers map them to HTTP
// status codes with Status; anything not in the taxonomy degrades
// to a 400 the same way the storage layer's own faults do.
var (
	ErrValidation         = errors.New("validation failed")
	ErrAmbiguousReference = errors.New("reference matches more than one record")
	ErrConflict           = errors.New("resource already exists")
	ErrUnauthorized       = errors.New("not authorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("resource not found")
)

func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
