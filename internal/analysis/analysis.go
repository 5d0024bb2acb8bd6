// Package analysis runs one classification pass over a stored recording and
// forwards every detection to persistence.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/aviary/internal/classifier"
	"github.com/JaimeStill/aviary/internal/detections"
	"github.com/JaimeStill/aviary/internal/metrics"
)

// TimeLayout formats generated capture times: ISO-8601 with microseconds, local time.
const TimeLayout = "2006-01-02T15:04:05.000000"

// captureLayouts are the formats a capture time string is parsed with to derive the week.
var captureLayouts = []string{
	TimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Location is a point in decimal degrees.
type Location struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// StoredRecording is an audio file written to the upload directory and ready for analysis.
type StoredRecording struct {
	Path        string
	Filename    string
	CaptureTime string
	Location    Location
	SizeBytes   int64
}

// Summary reports the persistence outcome for one recording.
type Summary struct {
	Attempted int     `json:"attempted"`
	Committed int     `json:"committed"`
	Failed    int     `json:"failed"`
	IDs       []int64 `json:"-"`
}

// Coordinator classifies recordings and persists their detections.
type Coordinator struct {
	classifier classifier.Classifier
	writer     *detections.Writer
	week       int
	now        func() time.Time
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// New creates a Coordinator.
func New(c classifier.Classifier, w *detections.Writer, cfg *Config, logger *slog.Logger, m *metrics.Metrics) *Coordinator {
	return &Coordinator{
		classifier: c,
		writer:     w,
		week:       cfg.Week,
		now:        time.Now,
		logger:     logger.With("system", "analysis"),
		metrics:    m,
	}
}

// Week returns the classifier week for a capture time string.
// A configured week wins; otherwise the week is derived from the parsed time,
// falling back to the current date when the string does not parse.
func (c *Coordinator) Week(captureTime string) int {
	if classifier.ValidWeek(c.week) {
		return c.week
	}
	for _, layout := range captureLayouts {
		if t, err := time.ParseInLocation(layout, captureTime, time.Local); err == nil {
			return classifier.Week(t)
		}
	}
	return classifier.Week(c.now())
}

// Analyze classifies rec once and writes each detection in classifier order.
// Individual write failures are counted in the Summary; only a classifier
// failure returns an error, wrapping ErrClassification.
//
// Cancellation of ctx is ignored: once a recording is stored it runs to
// completion. The classifier timeout bounds the blocking call.
func (c *Coordinator) Analyze(ctx context.Context, rec StoredRecording, sampleContext map[string]any) (Summary, error) {
	ctx = context.WithoutCancel(ctx)

	sample := classifier.Sample{
		Path:    rec.Path,
		Lon:     rec.Location.Lon,
		Lat:     rec.Location.Lat,
		Week:    c.Week(rec.CaptureTime),
		Context: sampleContext,
	}

	start := time.Now()
	dets, err := c.classifier.Classify(ctx, sample)
	c.metrics.RecordClassification(time.Since(start), len(dets), err)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %s: %w", ErrClassification, rec.Filename, err)
	}

	c.logger.Info(
		"recording classified",
		"audio_file", rec.Filename,
		"week", sample.Week,
		"detections", len(dets),
		"duration", time.Since(start),
	)

	if len(dets) == 0 {
		return Summary{}, nil
	}

	batch, err := c.writer.Begin(ctx)
	if err != nil {
		c.logger.Error("detections not persisted", "audio_file", rec.Filename, "count", len(dets), "error", err)
		c.metrics.RecordWrites(string(c.writer.Mode()), metrics.WriteFailed, len(dets))
		return Summary{Attempted: len(dets), Failed: len(dets)}, nil
	}

	prov := detections.Provenance{
		AudioFile:     rec.Filename,
		DetectionDate: rec.CaptureTime,
		Lon:           rec.Location.Lon,
		Lat:           rec.Location.Lat,
	}
	for _, d := range dets {
		batch.Write(ctx, prov, d)
	}

	out := batch.Commit()
	summary := Summary{
		Attempted: out.Attempted,
		Committed: out.Committed,
		Failed:    out.Failed,
		IDs:       out.IDs,
	}

	if summary.Failed > 0 {
		c.logger.Warn("partial persistence", "audio_file", rec.Filename, "committed", summary.Committed, "failed", summary.Failed)
	}
	return summary, nil
}
