package httpapi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRouter_AccessLog(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	h := NewRouterWithOptions(NewServer(Services{}, nil, zap.New(core)), RouterOptions{AccessLog: true})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}

	entries := logs.FilterMessage("http request").All()
	if len(entries) != 1 {
		t.Fatalf("access log entries=%d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/healthz" || fields["status"] != int64(http.StatusOK) {
		t.Fatalf("fields=%v", fields)
	}
	if id, _ := fields["requestId"].(string); id == "" {
		t.Fatalf("missing requestId: %v", fields)
	}
}

func TestRouter_StaticSite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>We're getting married</h1>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	h := NewRouterWithOptions(NewServer(Services{}, nil, nil), RouterOptions{StaticDir: dir})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "married") {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}

	// API routes are not shadowed by the file server.
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Body.String() != "ok" {
		t.Fatalf("healthz body=%q", rr.Body.String())
	}
}
