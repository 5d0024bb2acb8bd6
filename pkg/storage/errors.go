package storage

import (
	"errors"
	"net/http"
)

var (
	// ErrEmptyKey indicates an empty object name was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the object name would resolve outside the store root.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrExists indicates the target name is taken and the policy forbids replacing it.
	ErrExists = errors.New("object already exists")
	// ErrNotFound indicates the requested object does not exist.
	ErrNotFound = errors.New("object not found")
)

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrExists):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
