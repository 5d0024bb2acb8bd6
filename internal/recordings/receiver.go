package recordings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/aviary/internal/analysis"
	"github.com/JaimeStill/aviary/pkg/audio"
	"github.com/JaimeStill/aviary/pkg/formatting"
	"github.com/JaimeStill/aviary/pkg/storage"
)

// Analyzer runs classification and persistence for a stored recording.
type Analyzer interface {
	Analyze(ctx context.Context, rec analysis.StoredRecording, sampleContext map[string]any) (analysis.Summary, error)
}

// Result is the response body for an accepted upload.
type Result struct {
	Status     string           `json:"status"`
	Filename   string           `json:"filename"`
	Timestamp  string           `json:"timestamp"`
	Detections analysis.Summary `json:"detections"`
}

// Receiver validates uploads, writes them to the store, and runs analysis.
type Receiver struct {
	store      storage.System
	analyzer   Analyzer
	location   analysis.Location
	requireWAV bool
	now        func() time.Time
	logger     *slog.Logger
}

// NewReceiver creates a Receiver. location is used when an upload carries no lat/lon.
func NewReceiver(
	store storage.System,
	analyzer Analyzer,
	cfg *Config,
	location analysis.Location,
	logger *slog.Logger,
) *Receiver {
	return &Receiver{
		store:      store,
		analyzer:   analyzer,
		location:   location,
		requireWAV: cfg.RequireWAV,
		now:        time.Now,
		logger:     logger.With("system", "recordings"),
	}
}

// Receive handles one upload end to end. Validation failures happen before
// anything is written. Once the file is saved it is never removed, except when
// WAV enforcement rejects it.
func (r *Receiver) Receive(ctx context.Context, env Envelope) (*Result, error) {
	md, err := ParseMetadata(env.Metadata, r.now())
	if err != nil {
		return nil, err
	}
	if env.Audio == nil || env.AudioSize <= 0 {
		return nil, fmt.Errorf("%w: audio file missing or empty", ErrValidation)
	}

	obj, err := r.store.Save(ctx, Filename(md.TimeString), env.Audio)
	if err != nil {
		return nil, mapStoreError(err)
	}

	r.logger.Info(
		"recording saved",
		"audio_file", obj.Name,
		"source", env.AudioFilename,
		"size", formatting.FormatBytes(obj.SizeBytes, 1),
		"replaced", obj.Replaced,
	)

	if err := r.inspect(ctx, obj); err != nil {
		return nil, err
	}

	loc := r.location
	if md.Location != nil {
		loc = *md.Location
	}

	summary, err := r.analyzer.Analyze(ctx, analysis.StoredRecording{
		Path:        obj.Path,
		Filename:    obj.Name,
		CaptureTime: md.TimeString,
		Location:    loc,
		SizeBytes:   obj.SizeBytes,
	}, md.Context)
	if err != nil {
		return nil, err
	}

	return &Result{
		Status:     "success",
		Filename:   obj.Name,
		Timestamp:  md.TimeString,
		Detections: summary,
	}, nil
}

func (r *Receiver) inspect(ctx context.Context, obj *storage.Object) error {
	info, err := audio.InspectWAV(obj.Path)
	if err == nil {
		r.logger.Info(
			"wav header",
			"audio_file", obj.Name,
			"sample_rate", info.SampleRate,
			"channels", info.Channels,
			"bit_depth", info.BitDepth,
			"duration", info.Duration,
		)
		return nil
	}

	if !r.requireWAV {
		r.logger.Warn("recording is not a readable WAV file", "audio_file", obj.Name, "error", err)
		return nil
	}

	if rmErr := r.store.Remove(ctx, obj.Name); rmErr != nil {
		r.logger.Warn("failed to remove rejected recording", "audio_file", obj.Name, "error", rmErr)
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, storage.ErrExists):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, storage.ErrEmptyKey), errors.Is(err, storage.ErrInvalidKey):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return fmt.Errorf("save recording: %w", err)
}
