package detections

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound      = errors.New("detection not found")
	ErrInvalidID     = errors.New("invalid detection id")
	ErrInvalidFilter = errors.New("invalid filter")
)

// MapHTTPStatus maps detection errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidFilter):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
