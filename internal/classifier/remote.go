package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/aviary/pkg/lifecycle"
)

// Remote classifies recordings by posting them to an analyzer service.
type Remote struct {
	baseURL       string
	minConfidence float64
	client        *http.Client
	logger        *slog.Logger
}

type analyzeResponse struct {
	Detections []Detection `json:"detections"`
}

// NewRemote creates a client for the analyzer at cfg.BaseURL.
func NewRemote(cfg *Config, logger *slog.Logger) *Remote {
	return &Remote{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		minConfidence: cfg.MinConfidence,
		client:        &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:        logger.With("system", "classifier"),
	}
}

// Start registers a startup health check. A failed check is logged; it only blocks
// readiness when required is true.
func (r *Remote) Start(lc *lifecycle.Coordinator, required bool) {
	lc.OnStartup("classifier", func() error {
		ctx, cancel := context.WithTimeout(lc.Context(), 10*time.Second)
		defer cancel()

		if err := r.Health(ctx); err != nil {
			if required {
				return err
			}
			r.logger.Warn("analyzer health check failed", "url", r.baseURL, "error", err)
			return nil
		}
		r.logger.Info("analyzer reachable", "url", r.baseURL)
		return nil
	})
}

// Health checks GET /health on the analyzer.
func (r *Remote) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// Classify uploads the sample's audio with its location and week, and returns the
// detections in the order the analyzer produced them.
func (r *Remote) Classify(ctx context.Context, s Sample) ([]Detection, error) {
	body, contentType, err := r.encode(s)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/analyze", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrBadResponse, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrBadResponse, err)
	}

	r.logger.Debug(
		"analysis complete",
		"file", filepath.Base(s.Path),
		"detections", len(out.Detections),
		"duration", time.Since(start),
	)
	return out.Detections, nil
}

func (r *Remote) encode(s Sample) (*bytes.Buffer, string, error) {
	file, err := os.Open(filepath.Clean(s.Path))
	if err != nil {
		return nil, "", fmt.Errorf("open sample: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	part, err := w.CreateFormFile("audio", filepath.Base(s.Path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy sample: %w", err)
	}

	meta := s.Context
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, "", fmt.Errorf("encode sample context: %w", err)
	}

	fields := [][2]string{
		{"lat", strconv.FormatFloat(s.Lat, 'f', -1, 64)},
		{"lon", strconv.FormatFloat(s.Lon, 'f', -1, 64)},
		{"week", strconv.Itoa(s.Week)},
		{"min_confidence", strconv.FormatFloat(r.minConfidence, 'f', -1, 64)},
		{"metadata", string(metaJSON)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}
