package recordings

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/aviary/internal/metrics"
	"github.com/JaimeStill/aviary/pkg/handlers"
	"github.com/JaimeStill/aviary/pkg/routes"
)

// multipart parts beyond this size spill to temp files.
const formMemory = 8 << 20

// Handler serves the upload endpoint.
type Handler struct {
	receiver      *Receiver
	logger        *slog.Logger
	metrics       *metrics.Metrics
	maxUploadSize int64
}

// NewHandler creates an upload Handler. Requests larger than maxUploadSize are rejected.
func NewHandler(receiver *Receiver, logger *slog.Logger, m *metrics.Metrics, maxUploadSize int64) *Handler {
	return &Handler{
		receiver:      receiver,
		logger:        logger.With("handler", "recordings"),
		metrics:       m,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the upload route, relative to the module prefix.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{$}", Handler: h.Upload, OpenAPI: uploadOp},
		},
	}
}

// Upload accepts a multipart form with a "metadata" JSON object and an "audio" file,
// and responds once every detection of the recording has been attempted.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, fmt.Errorf("%w: limit %d bytes", ErrFileTooLarge, tooLarge.Limit))
			return
		}
		h.fail(w, fmt.Errorf("%w: %w", ErrValidation, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	values := r.MultipartForm.Value["metadata"]
	if len(values) == 0 {
		h.fail(w, fmt.Errorf("%w: metadata field missing", ErrValidation))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		h.fail(w, fmt.Errorf("%w: audio file missing", ErrValidation))
		return
	}
	defer file.Close()

	result, err := h.receiver.Receive(r.Context(), Envelope{
		Metadata:      values[0],
		Audio:         file,
		AudioFilename: header.Filename,
		AudioSize:     header.Size,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	h.metrics.RecordUpload(metrics.UploadAccepted, header.Size)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.metrics.RecordUpload(metrics.UploadFailed, 0)
	} else {
		h.metrics.RecordUpload(metrics.UploadRejected, 0)
	}
	handlers.RespondError(w, h.logger, status, err)
}
