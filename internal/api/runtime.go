package api

import (
	"github.com/JaimeStill/aviary/internal/analysis"
	"github.com/JaimeStill/aviary/internal/config"
	"github.com/JaimeStill/aviary/internal/detections"
	"github.com/JaimeStill/aviary/internal/infrastructure"
	"github.com/JaimeStill/aviary/internal/recordings"
	"github.com/JaimeStill/aviary/pkg/pagination"
)

// Runtime extends Infrastructure with the configuration the API domain needs.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination    pagination.Config
	Analysis      analysis.Config
	Detections    detections.Config
	Uploads       recordings.Config
	MaxUploadSize int64
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		Analysis:       cfg.Analysis,
		Detections:     cfg.Detections,
		Uploads:        cfg.Recordings,
		MaxUploadSize:  cfg.API.MaxUploadSizeBytes(),
	}
}
