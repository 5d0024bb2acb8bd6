package openapi

import (
	"maps"
	"net/http"
)

// NewComponents creates Components holding the shared error schema and one
// error response per status the services return.
func NewComponents() *Components {
	c := &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:       "object",
				Required:   []string{"error"},
				Properties: map[string]*Schema{"error": {Type: "string", Description: "Error message"}},
			},
		},
		Responses: make(map[string]*Response),
	}

	for name, status := range map[string]int{
		"BadRequest":      http.StatusBadRequest,
		"NotFound":        http.StatusNotFound,
		"Conflict":        http.StatusConflict,
		"PayloadTooLarge": http.StatusRequestEntityTooLarge,
		"BadGateway":      http.StatusBadGateway,
	} {
		c.Responses[name] = ResponseJSON(http.StatusText(status), "Error")
	}
	return c
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}
