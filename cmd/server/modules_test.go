package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JaimeStill/aviary/internal/infrastructure"
	"github.com/JaimeStill/aviary/internal/metrics"
	"github.com/JaimeStill/aviary/pkg/lifecycle"
)

func newInfra(t *testing.T) *infrastructure.Infrastructure {
	t.Helper()

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		t.Fatalf("metrics.New() error = %v", err)
	}
	return &infrastructure.Infrastructure{
		Lifecycle: lifecycle.New(),
		Registry:  registry,
		Metrics:   m,
	}
}

func serve(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	router := buildRouter(newInfra(t))

	rec := serve(router, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	infra := newInfra(t)
	router := buildRouter(infra)

	if rec := serve(router, "/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("before startup: status = %d, want 503", rec.Code)
	}

	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}
	if rec := serve(router, "/readyz"); rec.Code != http.StatusOK {
		t.Errorf("after startup: status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	infra := newInfra(t)
	router := buildRouter(infra)

	infra.Metrics.RecordUpload(metrics.UploadAccepted, 2048)

	rec := serve(router, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `aviary_uploads_total{outcome="accepted"} 1`) {
		t.Errorf("metrics output missing upload counter:\n%s", rec.Body.String())
	}
}
