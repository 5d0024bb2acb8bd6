package analysis

import (
	"errors"
	"net/http"
)

// ErrClassification is returned when the classifier fails for a recording.
// Nothing is persisted for that recording.
var ErrClassification = errors.New("classification failed")

// MapHTTPStatus maps analysis errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrClassification) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
