package recordings

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/aviary/internal/analysis"
)

var (
	ErrValidation   = errors.New("invalid upload")
	ErrFileTooLarge = errors.New("upload exceeds maximum size")
	ErrConflict     = errors.New("recording already exists")
)

// MapHTTPStatus maps upload errors, including analysis failures, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	return analysis.MapHTTPStatus(err)
}
