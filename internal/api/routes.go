package api

import (
	"github.com/JaimeStill/aviary/internal/recordings"
	"github.com/JaimeStill/aviary/pkg/routes"
)

// readGroups are the route groups served by the read API module.
func readGroups(domain *Domain, runtime *Runtime) []routes.Group {
	return []routes.Group{
		domain.Detections.Handler().Routes(),
		newStorageHandler(runtime.Recordings, runtime.Logger).routes(),
	}
}

// ingestGroups are the route groups served by the ingest module.
func ingestGroups(domain *Domain, runtime *Runtime) []routes.Group {
	upload := recordings.NewHandler(
		domain.Receiver,
		runtime.Logger,
		runtime.Metrics,
		runtime.MaxUploadSize,
	)
	return []routes.Group{upload.Routes()}
}
