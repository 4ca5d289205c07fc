package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"captionforge/render"
	"captionforge/templates"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := templates.NewMemoryStore()
	if err := templates.Seed(context.Background(), store); err != nil {
		t.Fatalf("Seed error: %v", err)
	}
	engine, err := render.NewEngine(store, t.TempDir(), "", nil)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	return NewServer(engine, store, nil, t.TempDir(), nil)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTemplateCRUDOverHTTP(t *testing.T) {
	r := testServer(t).Router()

	// Create from a duplicate of default so the record is fully populated.
	w := doJSON(t, r, http.MethodPost, "/templates/default/duplicate", map[string]string{"new_name": "promo"})
	if w.Code != http.StatusCreated {
		t.Fatalf("duplicate status = %d; want 201: %s", w.Code, w.Body)
	}

	w = doJSON(t, r, http.MethodGet, "/templates/promo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d; want 200", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/templates/promo", map[string]int{"font_size": 90})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d; want 200: %s", w.Code, w.Body)
	}
	var updated templates.Template
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.FontSize != 90 {
		t.Fatalf("FontSize = %d; want 90", updated.FontSize)
	}

	w = doJSON(t, r, http.MethodGet, "/templates", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d; want 200", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/templates/promo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d; want 200", w.Code)
	}
}

func TestErrorEnvelopeAndStatusMapping(t *testing.T) {
	r := testServer(t).Router()

	cases := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
	}{
		{"unknown template", http.MethodGet, "/templates/nope", nil, http.StatusNotFound},
		{"delete default forbidden", http.MethodDelete, "/templates/default", nil, http.StatusForbidden},
		{"duplicate conflict", http.MethodPost, "/templates/default/duplicate",
			map[string]string{"new_name": "default"}, http.StatusConflict},
		{"bad update range", http.MethodPut, "/templates/default",
			map[string]int{"font_size": 999}, http.StatusBadRequest},
		{"merge too few clips", http.MethodPost, "/merge",
			map[string]any{"clips": []map[string]string{{"source": "https://x/a.mp4", "text": "t"}}},
			http.StatusBadRequest},
		{"overlay missing text", http.MethodPost, "/overlay/url",
			map[string]string{"source": "https://x/a.mp4"}, http.StatusBadRequest},
		{"collage bad duration", http.MethodPost, "/collage/grid",
			map[string]any{"image_urls": gridURLs(), "duration": 3.0}, http.StatusBadRequest},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := doJSON(t, r, c.method, c.path, c.body)
			if w.Code != c.wantCode {
				t.Fatalf("status = %d; want %d: %s", w.Code, c.wantCode, w.Body)
			}
			var env struct {
				Status  string `json:"status"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.Status != "error" || env.Message == "" {
				t.Fatalf("envelope = %+v; want status=error with a message", env)
			}
		})
	}
}

func gridURLs() []string {
	urls := make([]string, 9)
	for i := range urls {
		urls[i] = "https://cdn.example.com/img.jpg"
	}
	return urls
}

func TestOverlayUploadReadsFineOffset(t *testing.T) {
	r := testServer(t).Router()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "frame.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte("\x89PNG\r\n\x1a\n"))
	mw.WriteField("text", "hello")
	mw.WriteField("fine_offset", `{"x": 200}`)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/overlay/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// An out-of-range offset must be rejected, which proves the form
	// field reaches the render job like the JSON path's fine_offset.
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400: %s", w.Code, w.Body)
	}
	if !strings.Contains(w.Body.String(), "fine_offset") {
		t.Fatalf("error %q does not name fine_offset", w.Body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := testServer(t).Router()

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if _, ok := body["ffmpeg_available"]; !ok {
		t.Fatal("health response missing ffmpeg_available")
	}
	if body["storage_enabled"] != false {
		t.Fatal("storage_enabled should be false without configuration")
	}
}

func TestPreviewEndpointReturnsPNG(t *testing.T) {
	r := testServer(t).Router()

	w := doJSON(t, r, http.MethodPost, "/preview", map[string]any{
		"text":         "hello",
		"frame_width":  320,
		"frame_height": 240,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200: %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q; want image/png", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatal("body is not a PNG")
	}
}
