// Package classifier defines the species classification capability the pipeline consumes
// and a client for a remote BirdNET analyzer service.
package classifier

import "context"

// Detection is one species identification within a time window of a recording.
// Confidence is passed through as reported; the pipeline never thresholds it.
type Detection struct {
	CommonName     string  `json:"common_name"`
	ScientificName string  `json:"scientific_name"`
	Label          string  `json:"label"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
	Confidence     float64 `json:"confidence"`
}

// Sample is the input to one classification pass.
type Sample struct {
	Path    string
	Lon     float64
	Lat     float64
	Week    int
	Context map[string]any
}

// Classifier turns a stored recording into an ordered, finite sequence of detections.
// Implementations must only read the file at Sample.Path.
type Classifier interface {
	Classify(ctx context.Context, s Sample) ([]Detection, error)
}

// Func adapts an ordinary function to the Classifier interface.
type Func func(ctx context.Context, s Sample) ([]Detection, error)

// Classify calls f.
func (f Func) Classify(ctx context.Context, s Sample) ([]Detection, error) {
	return f(ctx, s)
}
