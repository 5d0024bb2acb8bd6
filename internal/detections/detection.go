// Package detections persists classifier detections as rows of the birds table
// and serves them back through a read-only API.
package detections

import "github.com/JaimeStill/aviary/internal/classifier"

// Record is one row of the birds table.
type Record struct {
	ID             int64   `json:"id"`
	CommonName     string  `json:"common_name"`
	ScientificName string  `json:"scientific_name"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
	DetectionDate  string  `json:"detection_date"`
	Confidence     float64 `json:"confidence"`
	Label          string  `json:"label"`
	AudioFile      string  `json:"audio_file"`
	Lon            float64 `json:"lon"`
	Lat            float64 `json:"lat"`
}

// Provenance ties detections to the stored recording they came from.
type Provenance struct {
	AudioFile     string
	DetectionDate string
	Lon           float64
	Lat           float64
}

// NewRecord maps a detection and its provenance to an unsaved row.
func NewRecord(p Provenance, d classifier.Detection) Record {
	return Record{
		CommonName:     d.CommonName,
		ScientificName: d.ScientificName,
		StartTime:      d.StartTime,
		EndTime:        d.EndTime,
		DetectionDate:  p.DetectionDate,
		Confidence:     d.Confidence,
		Label:          d.Label,
		AudioFile:      p.AudioFile,
		Lon:            p.Lon,
		Lat:            p.Lat,
	}
}
