package detections_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/JaimeStill/aviary/internal/classifier"
	"github.com/JaimeStill/aviary/internal/detections"
	"github.com/JaimeStill/aviary/internal/testdb"
	"github.com/JaimeStill/aviary/pkg/pagination"
	"github.com/JaimeStill/aviary/pkg/query"
	"github.com/JaimeStill/aviary/pkg/routes"
)

func seeded(t *testing.T) (detections.System, []int64) {
	t.Helper()
	db := testdb.Open(t)
	w := newWriter(t, db, detections.ModePerDetection)
	ctx := context.Background()

	var ids []int64
	for _, p := range []detections.Provenance{
		provenance,
		{AudioFile: "recording_2024-06-10_05-30-00.wav", DetectionDate: "2024-06-10 05:30:00", Lon: 25.3, Lat: 58.1},
	} {
		batch, err := w.Begin(ctx)
		if err != nil {
			t.Fatalf("Begin() error = %v", err)
		}
		for _, d := range sample {
			batch.Write(ctx, p, d)
		}
		ids = append(ids, batch.Commit().IDs...)
	}

	var cfg pagination.Config
	cfg.Finalize(nil)
	return detections.New(db, discard(), cfg), ids
}

func TestList(t *testing.T) {
	sys, _ := seeded(t)
	conf := 0.6
	blackbird := "Eurasian Blackbird"
	file := "recording_2024-06-10_05-30-00.wav"
	since := "2024-06-01"
	search := "PARUS"

	tests := []struct {
		name    string
		filters detections.Filters
		want    int
	}{
		{"all", detections.Filters{}, 8},
		{"common name", detections.Filters{CommonName: &blackbird}, 2},
		{"audio file", detections.Filters{AudioFile: &file}, 4},
		{"min confidence", detections.Filters{MinConfidence: &conf}, 4},
		{"since", detections.Filters{Since: &since}, 4},
		{"search", detections.Filters{Search: &search}, 2},
		{"combined", detections.Filters{CommonName: &blackbird, AudioFile: &file}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := sys.List(context.Background(), pagination.PageRequest{}, tt.filters)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if res.Total != tt.want || len(res.Data) != tt.want {
				t.Errorf("total=%d len=%d, want %d", res.Total, len(res.Data), tt.want)
			}
		})
	}
}

func TestListPagingAndSort(t *testing.T) {
	sys, _ := seeded(t)

	page := pagination.PageRequest{Page: 2, PageSize: 3, Sort: query.ParseSortFields("-confidence")}
	res, err := sys.List(context.Background(), page, detections.Filters{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if res.Total != 8 || res.TotalPages != 3 || len(res.Data) != 3 {
		t.Fatalf("page: total=%d pages=%d len=%d", res.Total, res.TotalPages, len(res.Data))
	}
	for i := 1; i < len(res.Data); i++ {
		if res.Data[i].Confidence > res.Data[i-1].Confidence {
			t.Errorf("not sorted by confidence desc: %v then %v", res.Data[i-1].Confidence, res.Data[i].Confidence)
		}
	}
}

func TestFind(t *testing.T) {
	sys, ids := seeded(t)

	rec, err := sys.Find(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if rec.CommonName != "Eurasian Blackbird" || rec.AudioFile != provenance.AudioFile {
		t.Errorf("record: got %+v", rec)
	}

	if _, err := sys.Find(context.Background(), 9999); !errors.Is(err, detections.ErrNotFound) {
		t.Errorf("Find(9999) error = %v, want ErrNotFound", err)
	}
}

func TestFiltersFromQuery(t *testing.T) {
	values, _ := url.ParseQuery("common_name=Great+Tit&min_confidence=0.5&until=2024-12-31")
	f, err := detections.FiltersFromQuery(values)
	if err != nil {
		t.Fatalf("FiltersFromQuery() error = %v", err)
	}
	if f.CommonName == nil || *f.CommonName != "Great Tit" {
		t.Errorf("common_name: got %v", f.CommonName)
	}
	if f.MinConfidence == nil || *f.MinConfidence != 0.5 {
		t.Errorf("min_confidence: got %v", f.MinConfidence)
	}
	if f.Since != nil {
		t.Errorf("since should be nil, got %v", *f.Since)
	}

	values, _ = url.ParseQuery("min_confidence=high")
	if _, err := detections.FiltersFromQuery(values); !errors.Is(err, detections.ErrInvalidFilter) {
		t.Errorf("error = %v, want ErrInvalidFilter", err)
	}
}

func TestHandler(t *testing.T) {
	sys, ids := seeded(t)

	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())

	tests := []struct {
		path   string
		status int
	}{
		{"/detections", http.StatusOK},
		{"/detections?common_name=Great+Tit&page_size=1", http.StatusOK},
		{"/detections?min_confidence=abc", http.StatusBadRequest},
		{"/detections/abc", http.StatusBadRequest},
		{"/detections/0", http.StatusBadRequest},
		{"/detections/424242", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/detections/"+itoa(ids[1]), nil))

	var got detections.Record
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != ids[1] || got.CommonName != sample[1].CommonName {
		t.Errorf("record: got %+v", got)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{detections.ErrNotFound, http.StatusNotFound},
		{detections.ErrInvalidID, http.StatusBadRequest},
		{detections.ErrInvalidFilter, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := detections.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestNewRecord(t *testing.T) {
	d := classifier.Detection{CommonName: "Great Tit", Label: "x", Confidence: 0.1}
	rec := detections.NewRecord(provenance, d)
	if rec.ID != 0 || rec.AudioFile != provenance.AudioFile || rec.CommonName != "Great Tit" {
		t.Errorf("record: got %+v", rec)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
