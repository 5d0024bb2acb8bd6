package pagination_test

import (
	"net/url"
	"testing"

	"github.com/JaimeStill/aviary/pkg/pagination"
)

func defaults(t *testing.T) pagination.Config {
	t.Helper()
	var cfg pagination.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cfg
}

func TestFromQuery(t *testing.T) {
	cfg := defaults(t)

	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
		offset   int
	}{
		{"empty", "", 1, 25, 0},
		{"explicit", "page=3&page_size=10", 3, 10, 20},
		{"clamped", "page=-1&page_size=5000", 1, 200, 0},
		{"garbage", "page=x&page_size=y", 1, 25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.FromQuery(values, cfg)

			if req.Page != tt.page || req.PageSize != tt.pageSize {
				t.Errorf("got page=%d size=%d, want page=%d size=%d", req.Page, req.PageSize, tt.page, tt.pageSize)
			}
			if req.Offset() != tt.offset {
				t.Errorf("offset: got %d, want %d", req.Offset(), tt.offset)
			}
		})
	}
}

func TestFromQuerySort(t *testing.T) {
	values := url.Values{"sort": {"-confidence,common_name"}}
	req := pagination.FromQuery(values, defaults(t))

	if len(req.Sort) != 2 {
		t.Fatalf("sort: got %+v, want 2 fields", req.Sort)
	}
	if req.Sort[0].Field != "confidence" || !req.Sort[0].Descending {
		t.Errorf("first: got %+v", req.Sort[0])
	}
	if req.Sort[1].Field != "common_name" || req.Sort[1].Descending {
		t.Errorf("second: got %+v", req.Sort[1])
	}
}

func TestNewPageResult(t *testing.T) {
	req := pagination.PageRequest{Page: 2, PageSize: 10}

	res := pagination.NewPageResult([]int{1, 2, 3}, 23, req)
	if res.TotalPages != 3 {
		t.Errorf("total pages: got %d, want 3", res.TotalPages)
	}

	empty := pagination.NewPageResult[int](nil, 0, req)
	if empty.Data == nil || len(empty.Data) != 0 {
		t.Errorf("data: got %v, want empty slice", empty.Data)
	}
	if empty.TotalPages != 1 {
		t.Errorf("total pages: got %d, want 1", empty.TotalPages)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 50, MaxPageSize: 10}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error when default exceeds max")
	}

	t.Setenv("TEST_PAGE_SIZE", "40")
	cfg = pagination.Config{}
	if err := cfg.Finalize(&pagination.ConfigEnv{DefaultPageSize: "TEST_PAGE_SIZE"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.DefaultPageSize != 40 {
		t.Errorf("default page size: got %d, want 40", cfg.DefaultPageSize)
	}
}
