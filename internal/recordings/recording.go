// Package recordings receives uploaded field recordings, stores them under a name
// derived from their capture time, and hands them to analysis.
package recordings

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JaimeStill/aviary/internal/analysis"
)

// Metadata keys with a fixed meaning. Other keys are passed to the classifier.
const (
	KeyTimeString = "time_string"
	KeyLat        = "lat"
	KeyLon        = "lon"
)

var filenameReplacer = strings.NewReplacer(
	":", "-",
	" ", "_",
	"/", "-",
	`\`, "-",
)

// Filename derives the stored name for a recording captured at timeString.
// The result depends on nothing else, so equal capture times share a name.
func Filename(timeString string) string {
	return "recording_" + filenameReplacer.Replace(timeString) + ".wav"
}

// Envelope is one inbound upload before validation.
type Envelope struct {
	Metadata      string
	Audio         io.Reader
	AudioFilename string
	AudioSize     int64
}

// Metadata is the validated form of an upload's metadata field.
type Metadata struct {
	TimeString string
	Location   *analysis.Location
	Context    map[string]any
}

// ParseMetadata decodes and validates the metadata JSON object.
// An absent, null or empty time_string is replaced with now formatted as analysis.TimeLayout.
// lat and lon, when present, must both be numbers.
func ParseMetadata(raw string, now time.Time) (Metadata, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Metadata{}, fmt.Errorf("%w: metadata is not a JSON object: %w", ErrValidation, err)
	}
	if fields == nil {
		return Metadata{}, fmt.Errorf("%w: metadata is not a JSON object", ErrValidation)
	}

	md := Metadata{Context: make(map[string]any, len(fields))}

	switch ts := fields[KeyTimeString].(type) {
	case nil:
	case string:
		md.TimeString = ts
	default:
		return Metadata{}, fmt.Errorf("%w: time_string must be a string", ErrValidation)
	}
	if md.TimeString == "" {
		md.TimeString = now.Format(analysis.TimeLayout)
	}

	lat, hasLat, err := number(fields, KeyLat)
	if err != nil {
		return Metadata{}, err
	}
	lon, hasLon, err := number(fields, KeyLon)
	if err != nil {
		return Metadata{}, err
	}
	switch {
	case hasLat && hasLon:
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return Metadata{}, fmt.Errorf("%w: lat/lon out of range", ErrValidation)
		}
		md.Location = &analysis.Location{Lon: lon, Lat: lat}
	case hasLat || hasLon:
		return Metadata{}, fmt.Errorf("%w: lat and lon must be given together", ErrValidation)
	}

	for k, v := range fields {
		switch k {
		case KeyTimeString, KeyLat, KeyLon:
			continue
		}
		md.Context[k] = v
	}
	return md, nil
}

func number(fields map[string]any, key string) (float64, bool, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false, fmt.Errorf("%w: %s must be a number", ErrValidation, key)
	}
	return f, true, nil
}
