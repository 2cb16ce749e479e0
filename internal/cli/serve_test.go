package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/survfit/pkg/buildinfo"
	"github.com/matzehuels/survfit/pkg/cache"
	"github.com/matzehuels/survfit/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := writeRecipes(t, "trial")
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	srv := httptest.NewServer(newPreviewServer(dir, pipeline.NewRunner(fc, nil, logger), logger))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestServeRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path        string
		status      int
		contentType string
		contains    string
	}{
		{"/health", http.StatusOK, "application/json", `"status":"ok"`},
		{"/recipes", http.StatusOK, "application/json", `"trial"`},
		{"/recipes/trial", http.StatusOK, "image/svg+xml", "<svg"},
		{"/recipes/trial/svg", http.StatusOK, "image/svg+xml", "<svg"},
		{"/recipes/trial/json", http.StatusOK, "application/json", `"panels"`},
		{"/recipes/trial/table", http.StatusOK, "text/plain; charset=utf-8", "Control"},
		{"/recipes/trial/gif", http.StatusBadRequest, "application/json", "INVALID_FORMAT"},
		{"/recipes/missing", http.StatusNotFound, "application/json", "NOT_FOUND"},
		{"/recipes/.hidden", http.StatusBadRequest, "application/json", "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, srv, tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("content type = %q, want %q", got, tt.contentType)
			}
			if !strings.Contains(body, tt.contains) {
				t.Errorf("body lacks %q: %.200s", tt.contains, body)
			}
		})
	}
}

func TestServeCaching(t *testing.T) {
	srv := newTestServer(t)

	first, _ := get(t, srv, "/recipes/trial")
	second, _ := get(t, srv, "/recipes/trial")
	if got := first.Header.Get("X-Survfit-Cache"); got != "miss" {
		t.Errorf("first request cache = %q, want miss", got)
	}
	if got := second.Header.Get("X-Survfit-Cache"); got != "hit" {
		t.Errorf("second request cache = %q, want hit", got)
	}
	if first.Header.Get("ETag") == "" || first.Header.Get("ETag") != second.Header.Get("ETag") {
		t.Error("etag should identify the figure and stay stable")
	}
}

func TestServeServerHeader(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := get(t, srv, "/health")
	if got := resp.Header.Get("Server"); got != buildinfo.UserAgent() {
		t.Errorf("Server = %q, want %q", got, buildinfo.UserAgent())
	}
}

func TestServeListIsSorted(t *testing.T) {
	dir := writeRecipes(t, "b", "a", "c")
	logger := log.New(io.Discard)
	srv := httptest.NewServer(newPreviewServer(dir, pipeline.NewRunner(nil, nil, logger), logger))
	defer srv.Close()

	_, body := get(t, srv, "/recipes")
	var out struct{ Recipes []string }
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatal(err)
	}
	if strings.Join(out.Recipes, ",") != "a,b,c" {
		t.Errorf("recipes = %v", out.Recipes)
	}
}
