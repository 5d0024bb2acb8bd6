package detections

import "github.com/JaimeStill/aviary/pkg/openapi"

// Schemas are the component schemas referenced by the detection routes.
var Schemas = map[string]*openapi.Schema{
	"Detection": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":              {Type: "integer", Example: 1},
			"common_name":     {Type: "string", Example: "Eurasian Blackbird"},
			"scientific_name": {Type: "string", Example: "Turdus merula"},
			"start_time":      {Type: "number", Description: "Seconds from the start of the recording", Example: 3.0},
			"end_time":        {Type: "number", Example: 6.0},
			"detection_date":  {Type: "string", Description: "Capture time of the recording", Example: "2024-05-01 10:00:00"},
			"confidence":      {Type: "number", Example: 0.87},
			"label":           {Type: "string"},
			"audio_file":      {Type: "string", Example: "recording_2024-05-01_10-00-00.wav"},
			"lon":             {Type: "number", Example: 24},
			"lat":             {Type: "number", Example: 56},
		},
	},
	"DetectionPage": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        {Type: "array", Items: openapi.SchemaRef("Detection")},
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	},
}

var listOp = &openapi.Operation{
	Summary: "List detections",
	Tags:    []string{"Detections"},
	Parameters: []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
		openapi.QueryParam("page_size", "integer", "Results per page", false),
		openapi.QueryParam("sort", "string", "Comma-separated fields, - prefix for descending. Example: -confidence,common_name", false),
		openapi.QueryParam("search", "string", "Case-insensitive match on common or scientific name", false),
		openapi.QueryParam("common_name", "string", "Exact common name", false),
		openapi.QueryParam("scientific_name", "string", "Exact scientific name", false),
		openapi.QueryParam("audio_file", "string", "Exact stored recording name", false),
		openapi.QueryParam("since", "string", "Earliest detection_date, inclusive", false),
		openapi.QueryParam("until", "string", "Latest detection_date, inclusive", false),
		openapi.QueryParam("min_confidence", "number", "Lowest confidence, inclusive", false),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Page of detections", "DetectionPage"),
		400: openapi.ResponseRef("BadRequest"),
	},
}

var findOp = &openapi.Operation{
	Summary:    "Find a detection",
	Tags:       []string{"Detections"},
	Parameters: []*openapi.Parameter{openapi.PathParam("id", "integer", "Detection id")},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Detection", "Detection"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}
