package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/vtx/internal/shared"
	tu "github.com/desertthunder/vtx/internal/testing"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("first"), mw("second"))
		router.Get("/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
		if strings.Join(order, ",") != "first,second" {
			t.Errorf("expected first,second got %v", order)
		}
	})

	t.Run("Method Filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Get("/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
			t.Errorf("expected Allow to list GET, got %q", allow)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/x", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected HEAD to be served, got %d", rec.Code)
		}
	})

	t.Run("Mount", func(t *testing.T) {
		router := NewBasicRouter()
		router.Mount(NewPreviewHandler("http://localhost"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PreviewPrefix+"missing", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for unknown token, got %d", rec.Code)
		}
	})
}

func TestPreviewHandler(t *testing.T) {
	path := tu.WriteMediaFile(t, "clip.mp4", []byte("0123456789"))

	t.Run("Serves Registered File", func(t *testing.T) {
		h := NewPreviewHandler("http://host")
		url, err := h.Register(path, "video/mp4")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(url, "http://host"+PreviewPrefix) {
			t.Errorf("unexpected url %s", url)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(url, "http://host"), nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Header().Get("Content-Type") != "video/mp4" {
			t.Errorf("expected video/mp4, got %s", rec.Header().Get("Content-Type"))
		}
		if rec.Body.String() != "0123456789" {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("Range Request", func(t *testing.T) {
		h := NewPreviewHandler("")
		url, _ := h.Register(path, "video/mp4")

		req := httptest.NewRequest(http.MethodGet, url, nil)
		req.Header.Set("Range", "bytes=2-4")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusPartialContent || rec.Body.String() != "234" {
			t.Errorf("expected 206 with '234', got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("Revoked And Unknown Tokens", func(t *testing.T) {
		h := NewPreviewHandler("")
		url, _ := h.Register(path, "video/mp4")
		h.Revoke(url)

		if h.Active() != 0 {
			t.Errorf("expected no active urls, got %d", h.Active())
		}
		for _, target := range []string{url, PreviewPrefix + "nope"} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404 for %s, got %d", target, rec.Code)
			}
		}
	})

	t.Run("Rejects Writes", func(t *testing.T) {
		h := NewPreviewHandler("")
		url, _ := h.Register(path, "video/mp4")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, url, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestPreviewServer(t *testing.T) {
	path := tu.WriteMediaFile(t, "talk.mp3", []byte("audio-bytes"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewPreviewServer("127.0.0.1:0", shared.NewLogger(io.Discard))
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	if strings.HasSuffix(srv.Addr(), ":0") {
		t.Errorf("expected a bound port, got %s", srv.Addr())
	}

	resp, err := http.Get("http://" + srv.Addr() + HealthPath)
	if err != nil {
		t.Fatalf("expected health check to succeed, got %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 from health route, got %d", resp.StatusCode)
	}

	url, _ := srv.Register(path, "audio/mpeg")
	resp, err = http.Get(url)
	if err != nil {
		t.Fatalf("expected request to succeed, got %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "audio-bytes" {
		t.Errorf("unexpected response %d %q", resp.StatusCode, body)
	}

	srv.Revoke(url)
	resp, err = http.Get(url)
	if err != nil {
		t.Fatalf("expected request to succeed, got %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after revoke, got %d", resp.StatusCode)
	}
}
