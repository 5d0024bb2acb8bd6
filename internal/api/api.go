// Package api assembles the HTTP modules: the read API (detections, saved
// recordings and the OpenAPI document) and the ingest module that accepts uploads.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/aviary/internal/config"
	"github.com/JaimeStill/aviary/internal/detections"
	"github.com/JaimeStill/aviary/internal/infrastructure"
	"github.com/JaimeStill/aviary/internal/recordings"
	"github.com/JaimeStill/aviary/pkg/middleware"
	"github.com/JaimeStill/aviary/pkg/module"
	"github.com/JaimeStill/aviary/pkg/openapi"
	"github.com/JaimeStill/aviary/pkg/routes"
)

// Modules are the prefix-mounted modules served by the API.
type Modules struct {
	API    *module.Module
	Ingest *module.Module
}

// NewModules builds the domain once and exposes it through the read API module
// at cfg.API.BasePath and the ingest module at cfg.API.UploadPath.
func NewModules(cfg *config.Config, infra *infrastructure.Infrastructure) (*Modules, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	read := readGroups(domain, runtime)
	ingest := ingestGroups(domain, runtime)

	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)
	spec.Components.AddSchemas(detections.Schemas)
	spec.Components.AddSchemas(recordings.Schemas)
	routes.Describe(spec, cfg.API.BasePath, read...)
	routes.Describe(spec, cfg.API.UploadPath, ingest...)

	serveSpec, err := spec.Handler()
	if err != nil {
		return nil, fmt.Errorf("openapi spec: %w", err)
	}

	apiMux := http.NewServeMux()
	routes.Register(apiMux, read...)
	apiMux.HandleFunc("GET /openapi.json", serveSpec)

	ingestMux := http.NewServeMux()
	routes.Register(ingestMux, ingest...)

	apiModule := module.New(cfg.API.BasePath, apiMux)
	ingestModule := module.New(cfg.API.UploadPath, ingestMux)

	for _, m := range []*module.Module{apiModule, ingestModule} {
		m.Use(middleware.RequestID())
		m.Use(middleware.Logger(runtime.Logger))
		m.Use(middleware.CORS(&cfg.API.CORS))
	}

	return &Modules{
		API:    apiModule,
		Ingest: ingestModule,
	}, nil
}

// Mount registers every module on router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.Ingest)
}
