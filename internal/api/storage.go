package api

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/JaimeStill/aviary/pkg/handlers"
	"github.com/JaimeStill/aviary/pkg/openapi"
	"github.com/JaimeStill/aviary/pkg/routes"
	"github.com/JaimeStill/aviary/pkg/storage"
)

// storageHandler serves saved recordings back out of the upload directory.
type storageHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newStorageHandler(store storage.System, logger *slog.Logger) *storageHandler {
	return &storageHandler{
		store:  store,
		logger: logger.With("handler", "storage"),
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/recordings",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{name}", Handler: h.download, OpenAPI: downloadOp},
		},
	}
}

var downloadOp = &openapi.Operation{
	Summary:    "Download a stored recording",
	Tags:       []string{"Recordings"},
	Parameters: []*openapi.Parameter{openapi.PathParam("name", "string", "Stored file name, as reported by the upload response")},
	Responses: map[int]*openapi.Response{
		200: {
			Description: "Recording bytes",
			Content: map[string]*openapi.MediaType{
				"audio/wav": {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
			},
		},
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}

func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	file, obj, err := h.store.Open(r.Context(), name)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(obj.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", obj.Name),
	)

	http.ServeContent(w, r, obj.Name, obj.ModTime, file)
}
