package api

import (
	"github.com/JaimeStill/aviary/internal/analysis"
	"github.com/JaimeStill/aviary/internal/detections"
	"github.com/JaimeStill/aviary/internal/recordings"
)

// Domain holds the systems behind the API and ingest modules.
type Domain struct {
	Detections detections.System
	Writer     *detections.Writer
	Analysis   *analysis.Coordinator
	Receiver   *recordings.Receiver
}

// NewDomain wires the ingestion pipeline and the detections read system from the runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	writer := detections.NewWriter(
		db,
		&runtime.Detections,
		runtime.Logger,
		runtime.Metrics,
	)

	coordinator := analysis.New(
		runtime.Classifier,
		writer,
		&runtime.Analysis,
		runtime.Logger,
		runtime.Metrics,
	)

	receiver := recordings.NewReceiver(
		runtime.Recordings,
		coordinator,
		&runtime.Uploads,
		analysis.Location{Lon: runtime.Analysis.Lon, Lat: runtime.Analysis.Lat},
		runtime.Logger,
	)

	return &Domain{
		Detections: detections.New(db, runtime.Logger, runtime.Pagination),
		Writer:     writer,
		Analysis:   coordinator,
		Receiver:   receiver,
	}
}
