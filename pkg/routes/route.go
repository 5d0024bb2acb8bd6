// Package routes declares HTTP routes as data, registers them on a ServeMux,
// and describes them in an OpenAPI document.
package routes

import (
	"net/http"

	"github.com/JaimeStill/aviary/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler.
// OpenAPI is optional; undocumented routes are left out of the spec.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// pattern returns the ServeMux pattern for the route under prefix.
func (r Route) pattern(prefix string) string {
	if r.Method == "" {
		return prefix + r.Pattern
	}
	return r.Method + " " + prefix + r.Pattern
}
