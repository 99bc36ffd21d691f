// Package urlmeta retrieves best-effort page metadata (title, favicon) for
// bookmark enrichment.
//
// Everything here is advisory: third-party pages time out, block scrapers,
// or serve garbage, and none of that may fail a bookmark save. Callers get
// whatever could be extracted plus the error, and decide their own
// fallbacks.
package urlmeta

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a page we read while looking for metadata.
const maxBodyBytes = 2 << 20

// Metadata is what enrichment produced. Empty fields mean "not found".
type Metadata struct {
	Title   string `json:"title,omitempty"`
	Favicon string `json:"favicon,omitempty"`
}

// Fetcher retrieves metadata for a URL. Implementations must honor ctx
// cancellation and bound their own latency.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (Metadata, error)
}

// HTTPFetcher fetches the page over HTTP and extracts metadata from its
// HTML. Titles are run through a strict sanitizer so markup smuggled into
// a <title> tag never reaches storage.
type HTTPFetcher struct {
	client    *http.Client
	sanitizer *bluemonday.Policy
	log       *zap.Logger
}

// NewHTTPFetcher builds a fetcher with the given overall request timeout.
func NewHTTPFetcher(timeout time.Duration, logger *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		sanitizer: bluemonday.StrictPolicy(),
		log:       logger,
	}
}

// Fetch GETs the page and extracts title and favicon. A zero Metadata with
// a non-nil error means the page gave us nothing usable.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return Metadata{}, fmt.Errorf("build request: %w", err)
	}
	setBrowserHeaders(req)

	res, err := f.client.Do(req)
	if err != nil {
		f.log.Debug("metadata fetch failed", zap.String("url", pageURL), zap.Error(err))
		return Metadata{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Metadata{}, fmt.Errorf("fetch %s: status %d", pageURL, res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "html") {
		return Metadata{}, fmt.Errorf("fetch %s: content type %q is not HTML", pageURL, ct)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return Metadata{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	return Metadata{
		Title:   f.extractTitle(doc),
		Favicon: extractFavicon(doc, pageURL),
	}, nil
}

// extractTitle prefers <title>, falling back to Open Graph.
func (f *HTTPFetcher) extractTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("meta[property='og:title']").AttrOr("content", ""))
	}
	// Sanitize then unescape: the policy strips markup but entity-encodes
	// plain text, and we store text, not HTML.
	return strings.TrimSpace(html.UnescapeString(f.sanitizer.Sanitize(title)))
}

// faviconSelectors in preference order.
var faviconSelectors = []string{
	"link[rel='icon']",
	"link[rel='shortcut icon']",
	"link[rel='apple-touch-icon']",
}

// extractFavicon finds a declared icon and resolves it against the page
// URL; pages that declare none get the conventional /favicon.ico.
func extractFavicon(doc *goquery.Document, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	for _, sel := range faviconSelectors {
		href := strings.TrimSpace(doc.Find(sel).First().AttrOr("href", ""))
		if href == "" {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		return base.ResolveReference(ref).String()
	}

	fallback := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/favicon.ico"}
	return fallback.String()
}

func setBrowserHeaders(r *http.Request) {
	r.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0")
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("Accept-Language", "en-US,en;q=0.5")
}
