// Package apperr defines the error taxonomy shared by every handler and
// service. Callers classify with errors.Is; anything unrecognized is a
// storage/internal failure and surfaces as a generic 500.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated means no resolvable identity on the request.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden means the identity exists but role or ownership is
	// insufficient.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument means malformed or out-of-range input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSoldOut means the ticket has no remaining availability.
	ErrSoldOut = errors.New("sold out")
)

// Status maps a classified error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrSoldOut):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
