package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/lazypower/brickdecay/internal/shell"
	"github.com/lazypower/brickdecay/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, "test-version", Options{Metrics: true})
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
}

func TestHealthWithoutDB(t *testing.T) {
	srv := New(nil, "v", Options{})

	w := do(t, srv, "GET", "/api/health", "")
	var body map[string]any
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["db"] != false {
		t.Errorf("db = %v, want false", body["db"])
	}
}

func TestShellManifestEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/shell", "")
	var m shell.Manifest
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.CacheName != shell.CacheName {
		t.Errorf("cacheName = %q, want %q", m.CacheName, shell.CacheName)
	}
	if len(m.Assets) != len(shell.Assets) {
		t.Errorf("assets = %d, want %d", len(m.Assets), len(shell.Assets))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t)

	do(t, srv, "GET", "/api/health", "")
	w := do(t, srv, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `brickdecay_http_requests_total{method="GET",route="/api/health",status="200"} 1`) {
		t.Errorf("metrics missing health counter:\n%s", w.Body.String())
	}
}

func TestMetricsDisabled(t *testing.T) {
	SetUI(nil)
	srv := New(nil, "v", Options{})

	w := do(t, srv, "GET", "/metrics", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := New(nil, "v", Options{CORSOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest("OPTIONS", "/api/curve", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Allow-Origin = %q, want https://app.example", got)
	}
}

func TestShellServing(t *testing.T) {
	SetUI(fstest.MapFS{
		"index.html":           {Data: []byte("<html>shell</html>")},
		"sw.js":                {Data: []byte("self.addEventListener('install', () => {})")},
		"manifest.webmanifest": {Data: []byte(`{"name":"brickdecay"}`)},
		"style.css":            {Data: []byte("body{}")},
		"icons/icon-192.svg":   {Data: []byte("<svg/>")},
	})
	t.Cleanup(func() { SetUI(nil) })
	srv := New(nil, "v", Options{})

	tests := []struct {
		path        string
		contains    string
		contentType string
		cache       string
	}{
		{"/", "shell", "text/html; charset=utf-8", "no-cache"},
		{"/index.html", "shell", "text/html; charset=utf-8", "no-cache"},
		{"/studio/image", "shell", "text/html; charset=utf-8", "no-cache"},
		{"/icons", "shell", "text/html; charset=utf-8", "no-cache"},
		{"/sw.js", "install", "text/javascript; charset=utf-8", "no-cache"},
		{"/manifest.webmanifest", "brickdecay", "application/manifest+json", "no-cache"},
		{"/style.css", "body", "text/css; charset=utf-8", "public, max-age=3600"},
	}
	for _, tt := range tests {
		w := do(t, srv, "GET", tt.path, "")
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", tt.path, w.Code)
			continue
		}
		if !strings.Contains(w.Body.String(), tt.contains) {
			t.Errorf("%s: body %q missing %q", tt.path, w.Body.String(), tt.contains)
		}
		if got := w.Header().Get("Content-Type"); got != tt.contentType {
			t.Errorf("%s: Content-Type = %q, want %q", tt.path, got, tt.contentType)
		}
		if got := w.Header().Get("Cache-Control"); got != tt.cache {
			t.Errorf("%s: Cache-Control = %q, want %q", tt.path, got, tt.cache)
		}
	}

	w := do(t, srv, "GET", "/sw.js", "")
	if w.Header().Get("Service-Worker-Allowed") != "/" {
		t.Errorf("sw.js missing Service-Worker-Allowed header")
	}
}

func TestShellNotEmbedded(t *testing.T) {
	SetUI(nil)
	srv := New(nil, "v", Options{})

	w := do(t, srv, "GET", "/", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
