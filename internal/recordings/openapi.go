package recordings

import "github.com/JaimeStill/aviary/pkg/openapi"

// Schemas are the component schemas referenced by the upload route.
var Schemas = map[string]*openapi.Schema{
	"UploadResult": {
		Type:     "object",
		Required: []string{"status", "filename", "timestamp", "detections"},
		Properties: map[string]*openapi.Schema{
			"status":    {Type: "string", Enum: []any{"success"}},
			"filename":  {Type: "string", Example: "recording_2024-05-01_10-00-00.wav"},
			"timestamp": {Type: "string", Description: "The capture time used for naming and detection_date"},
			"detections": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"attempted": {Type: "integer"},
					"committed": {Type: "integer"},
					"failed":    {Type: "integer"},
				},
			},
		},
	},
}

var uploadOp = &openapi.Operation{
	Summary: "Upload a field recording",
	Description: "Stores the audio under a name derived from metadata.time_string, classifies it once, " +
		"and persists every detection. Responds after all detections have been attempted.",
	Tags: []string{"Recordings"},
	RequestBody: openapi.RequestBodyMultipart(map[string]*openapi.Schema{
		"metadata": {
			Type:        "string",
			Description: `JSON object. Recognized keys: time_string, lat, lon; others are passed to the classifier.`,
			Example:     `{"time_string":"2024-05-01 10:00:00"}`,
		},
		"audio": {Type: "string", Format: "binary"},
	}, "metadata", "audio"),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Recording stored and analyzed", "UploadResult"),
		400: openapi.ResponseRef("BadRequest"),
		409: openapi.ResponseRef("Conflict"),
		413: openapi.ResponseRef("PayloadTooLarge"),
		502: openapi.ResponseRef("BadGateway"),
	},
}
