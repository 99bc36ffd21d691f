package urlmeta_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/markhold/markhold/internal/app/system/urlmeta"
	"go.uber.org/zap"
)

func newFetcher(t *testing.T) *urlmeta.HTTPFetcher {
	t.Helper()
	return urlmeta.NewHTTPFetcher(5*time.Second, zap.NewNop())
}

func serve(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_TitleAndFavicon(t *testing.T) {
	srv := serve(t, "text/html; charset=utf-8", `<!doctype html>
<html><head>
<title>  Example Page  </title>
<link rel="icon" href="/static/fav.png">
</head><body>hi</body></html>`)

	meta, err := newFetcher(t).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if meta.Title != "Example Page" {
		t.Errorf("title: got %q, want %q", meta.Title, "Example Page")
	}
	if want := srv.URL + "/static/fav.png"; meta.Favicon != want {
		t.Errorf("favicon: got %q, want %q", meta.Favicon, want)
	}
}

func TestFetch_OpenGraphFallback(t *testing.T) {
	srv := serve(t, "text/html", `<html><head>
<meta property="og:title" content="OG Title">
</head></html>`)

	meta, err := newFetcher(t).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if meta.Title != "OG Title" {
		t.Errorf("title: got %q, want %q", meta.Title, "OG Title")
	}
}

func TestFetch_FaviconDefault(t *testing.T) {
	srv := serve(t, "text/html", `<html><head><title>No Icon</title></head></html>`)

	meta, err := newFetcher(t).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if want := srv.URL + "/favicon.ico"; meta.Favicon != want {
		t.Errorf("favicon: got %q, want default %q", meta.Favicon, want)
	}
}

func TestFetch_TitleSanitized(t *testing.T) {
	srv := serve(t, "text/html", `<html><head><title>Safe <script>alert(1)</script> &amp; Sound</title></head></html>`)

	meta, err := newFetcher(t).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if meta.Title != "Safe  & Sound" && meta.Title != "Safe & Sound" {
		t.Errorf("title not sanitized: got %q", meta.Title)
	}
}

func TestFetch_NonHTML(t *testing.T) {
	srv := serve(t, "application/pdf", "%PDF-1.4")

	if _, err := newFetcher(t).Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected error for non-HTML content type")
	}
}

func TestFetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	if _, err := newFetcher(t).Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	t.Cleanup(srv.Close)

	f := urlmeta.NewHTTPFetcher(50*time.Millisecond, zap.NewNop())
	start := time.Now()
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fetch did not respect timeout: took %v", elapsed)
	}
}
