package detections

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/aviary/pkg/query"
)

var projection = query.
	NewProjectionMap("birds", "b").
	Project("id", "id").
	Project("common_name", "common_name").
	Project("scientific_name", "scientific_name").
	Project("start_time", "start_time").
	Project("end_time", "end_time").
	Project("detection_date", "detection_date").
	Project("confidence", "confidence").
	Project("label", "label").
	Project("audio_file", "audio_file").
	Project("lon", "lon").
	Project("lat", "lat")

var defaultSort = []query.SortField{
	{Field: "detection_date", Descending: true},
	{Field: "id", Descending: true},
}

// Filters narrows a detection listing. Nil fields are ignored.
// Name and file filters match exactly; Search matches common or scientific name
// case-insensitively. Since and Until bound detection_date inclusively.
type Filters struct {
	CommonName     *string  `json:"common_name,omitempty"`
	ScientificName *string  `json:"scientific_name,omitempty"`
	AudioFile      *string  `json:"audio_file,omitempty"`
	Since          *string  `json:"since,omitempty"`
	Until          *string  `json:"until,omitempty"`
	MinConfidence  *float64 `json:"min_confidence,omitempty"`
	Search         *string  `json:"search,omitempty"`
}

// FiltersFromQuery reads filters from URL query parameters.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	str := func(key string) *string {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			return &v
		}
		return nil
	}

	f.CommonName = str("common_name")
	f.ScientificName = str("scientific_name")
	f.AudioFile = str("audio_file")
	f.Since = str("since")
	f.Until = str("until")
	f.Search = str("search")

	if v := values.Get("min_confidence"); v != "" {
		c, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, fmt.Errorf("%w: min_confidence %q", ErrInvalidFilter, v)
		}
		f.MinConfidence = &c
	}

	return f, nil
}

// Apply adds the filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("common_name", f.CommonName).
		WhereEquals("scientific_name", f.ScientificName).
		WhereEquals("audio_file", f.AudioFile).
		WhereAtLeast("detection_date", f.Since).
		WhereAtMost("detection_date", f.Until).
		WhereAtLeast("confidence", f.MinConfidence).
		WhereSearch(f.Search, "common_name", "scientific_name")
}
