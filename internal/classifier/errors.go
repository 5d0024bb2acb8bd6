package classifier

import "errors"

var (
	// ErrUnavailable is returned when the analyzer service cannot be reached or reports unhealthy.
	ErrUnavailable = errors.New("classifier unavailable")
	// ErrBadResponse is returned when the analyzer answers with a non-2xx status or an undecodable body.
	ErrBadResponse = errors.New("classifier returned an invalid response")
)
