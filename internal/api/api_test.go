package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/JaimeStill/aviary/internal/api"
	"github.com/JaimeStill/aviary/internal/classifier"
	"github.com/JaimeStill/aviary/internal/config"
	"github.com/JaimeStill/aviary/internal/infrastructure"
	"github.com/JaimeStill/aviary/internal/testdb"
	"github.com/JaimeStill/aviary/pkg/lifecycle"
	"github.com/JaimeStill/aviary/pkg/module"
	"github.com/JaimeStill/aviary/pkg/storage"
)

const analyzerURL = "http://analyzer.test"

type sqliteSystem struct {
	db *sql.DB
}

func (s sqliteSystem) Connection() *sql.DB                   { return s.db }
func (s sqliteSystem) Start(lc *lifecycle.Coordinator) error { return nil }

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	t.Setenv("AVIARY_DB_NAME", "aviary")
	t.Setenv("AVIARY_DB_USER", "aviary")

	cfg := &config.Config{}
	cfg.Recordings.Root = filepath.Join(t.TempDir(), "new_received_audio")
	cfg.Classifier.BaseURL = analyzerURL
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.New(&cfg.Recordings.Config, logger)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	infra := &infrastructure.Infrastructure{
		Lifecycle:  lifecycle.New(),
		Logger:     logger,
		Database:   sqliteSystem{db: testdb.Open(t)},
		Recordings: store,
		Classifier: classifier.NewRemote(&cfg.Classifier, logger),
	}

	modules, err := api.NewModules(cfg, infra)
	if err != nil {
		t.Fatalf("NewModules() error = %v", err)
	}

	router := module.NewRouter()
	modules.Mount(router)
	return router
}

func upload(t *testing.T, router http.Handler, metadata string, audio []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	w.WriteField("metadata", metadata)
	fw, err := w.CreateFormFile("audio", "field.wav")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write(audio)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestUploadThenRead(t *testing.T) {
	router := newRouter(t)

	httpmock.RegisterResponder(http.MethodPost, analyzerURL+"/analyze",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"detections": []map[string]any{
				{"common_name": "Eurasian Blackbird", "scientific_name": "Turdus merula", "label": "Turdus merula_Eurasian Blackbird", "start_time": 3.0, "end_time": 6.0, "confidence": 0.87},
				{"common_name": "Great Tit", "scientific_name": "Parus major", "label": "Parus major_Great Tit", "start_time": 6.0, "end_time": 9.0, "confidence": 0.52},
			},
		}))

	audio := []byte("RIFF....WAVEfmt field recording bytes")
	rec := upload(t, router, `{"time_string":"2024-05-01 10:00:00"}`, audio)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d (%s)", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("upload response missing X-Request-ID")
	}

	var uploaded struct {
		Status     string `json:"status"`
		Filename   string `json:"filename"`
		Detections struct {
			Attempted int `json:"attempted"`
			Committed int `json:"committed"`
		} `json:"detections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if uploaded.Filename != "recording_2024-05-01_10-00-00.wav" {
		t.Errorf("filename = %q", uploaded.Filename)
	}
	if uploaded.Detections.Attempted != 2 || uploaded.Detections.Committed != 2 {
		t.Errorf("detections = %+v, want 2 attempted and committed", uploaded.Detections)
	}
	if n := httpmock.GetTotalCallCount(); n != 1 {
		t.Errorf("analyzer calls = %d, want 1", n)
	}

	list := get(router, "/api/detections?sort=-confidence")
	if list.Code != http.StatusOK {
		t.Fatalf("list status = %d (%s)", list.Code, list.Body.String())
	}
	var page struct {
		Total int `json:"total"`
		Data  []struct {
			ID            int64   `json:"id"`
			CommonName    string  `json:"common_name"`
			DetectionDate string  `json:"detection_date"`
			AudioFile     string  `json:"audio_file"`
			Lon           float64 `json:"lon"`
			Lat           float64 `json:"lat"`
		} `json:"data"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if page.Total != 2 || len(page.Data) != 2 {
		t.Fatalf("page = %+v, want 2 rows", page)
	}
	top := page.Data[0]
	if top.CommonName != "Eurasian Blackbird" {
		t.Errorf("first row = %q, want highest confidence first", top.CommonName)
	}
	if top.DetectionDate != "2024-05-01 10:00:00" || top.AudioFile != uploaded.Filename {
		t.Errorf("provenance = %q, %q", top.DetectionDate, top.AudioFile)
	}
	if top.Lon != 24 || top.Lat != 56 {
		t.Errorf("location = %v,%v, want 24,56", top.Lon, top.Lat)
	}

	filtered := get(router, "/api/detections?common_name=Great%20Tit")
	if err := json.Unmarshal(filtered.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode filtered: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("filtered total = %d, want 1", page.Total)
	}

	download := get(router, "/api/recordings/"+uploaded.Filename)
	if download.Code != http.StatusOK {
		t.Fatalf("download status = %d (%s)", download.Code, download.Body.String())
	}
	if !bytes.Equal(download.Body.Bytes(), audio) {
		t.Errorf("download body = %q, want stored audio", download.Body.Bytes())
	}
	if ct := download.Header().Get("Content-Type"); ct == "" {
		t.Error("download missing content type")
	}
}

func TestClassifierFailureStillStoresRecording(t *testing.T) {
	router := newRouter(t)

	httpmock.RegisterResponder(http.MethodPost, analyzerURL+"/analyze",
		httpmock.NewStringResponder(http.StatusInternalServerError, "model crashed"))

	rec := upload(t, router, `{"time_string":"2024-05-01 10:00:00"}`, []byte("audio"))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("upload status = %d, want 502 (%s)", rec.Code, rec.Body.String())
	}

	if got := get(router, "/api/recordings/recording_2024-05-01_10-00-00.wav"); got.Code != http.StatusOK {
		t.Errorf("stored recording status = %d, want 200", got.Code)
	}

	list := get(router, "/api/detections")
	var page struct {
		Total int `json:"total"`
	}
	json.Unmarshal(list.Body.Bytes(), &page)
	if page.Total != 0 {
		t.Errorf("rows = %d, want 0", page.Total)
	}
}

func TestReadErrors(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"unknown detection", "/api/detections/999", http.StatusNotFound},
		{"invalid detection id", "/api/detections/abc", http.StatusBadRequest},
		{"missing recording", "/api/recordings/nothing.wav", http.StatusNotFound},
		{"dotted name", "/api/recordings/..wav", http.StatusNotFound},
		{"separator in name", "/api/recordings/a%5Cb.wav", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := get(router, tt.target); got.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.target, got.Code, tt.want)
			}
		})
	}
}

func TestOpenAPIDocument(t *testing.T) {
	router := newRouter(t)

	rec := get(router, "/api/openapi.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}

	var doc struct {
		Info struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Info.Title != "Aviary API" || doc.Info.Version != "0.1.0" {
		t.Errorf("info = %+v", doc.Info)
	}

	want := map[string]string{
		"/upload":                "post",
		"/api/detections":        "get",
		"/api/detections/{id}":   "get",
		"/api/recordings/{name}": "get",
	}
	for path, method := range want {
		ops, ok := doc.Paths[path]
		if !ok {
			t.Errorf("missing path %s", path)
			continue
		}
		if _, ok := ops[method]; !ok {
			t.Errorf("%s missing %s operation", path, method)
		}
	}
}
