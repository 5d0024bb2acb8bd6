package routes

import (
	"strings"

	"github.com/JaimeStill/aviary/pkg/openapi"
)

// Describe adds every documented route in groups to spec, with paths rooted at basePath.
func Describe(spec *openapi.Spec, basePath string, groups ...Group) {
	for _, g := range groups {
		g.describe(spec, basePath)
	}
}

func (g Group) describe(spec *openapi.Spec, parent string) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		if r.OpenAPI == nil || r.Method == "" {
			continue
		}
		spec.AddOperation(specPath(prefix+r.Pattern), r.Method, r.OpenAPI)
	}
	for _, child := range g.Children {
		child.describe(spec, prefix)
	}
}

// specPath converts a ServeMux path into OpenAPI form: "{$}" anchors are
// dropped and "{name...}" wildcards become "{name}".
func specPath(p string) string {
	p = strings.ReplaceAll(p, "{$}", "")
	p = strings.ReplaceAll(p, "...}", "}")
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}
