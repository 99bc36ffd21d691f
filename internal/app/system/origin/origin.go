// Package origin decides which cross-origin callers may reach the
// extension capture endpoint and produces the CORS headers for it.
//
// The allow-list is computed once from configuration: the browser
// extension's origin (when an extension ID is configured) and, in dev
// mode only, the local web app origin. Matching is exact-string; there
// are no wildcards and no subdomain matching.
package origin

import "net/http"

// DevOrigin is the local web app origin admitted in dev mode.
const DevOrigin = "http://localhost:3000"

// extensionScheme prefixes a configured extension ID to form its origin.
const extensionScheme = "chrome-extension://"

// Policy is an immutable origin allow-list. Build one at startup with New
// and share it; it is safe for concurrent use.
type Policy struct {
	allowed map[string]struct{}
}

// New builds a Policy from the configured extension ID and dev flag.
// An empty extensionID means no extension origin is admitted.
func New(extensionID string, dev bool) *Policy {
	allowed := make(map[string]struct{}, 2)
	if extensionID != "" {
		allowed[extensionScheme+extensionID] = struct{}{}
	}
	if dev {
		allowed[DevOrigin] = struct{}{}
	}
	return &Policy{allowed: allowed}
}

// Allowed reports whether the given Origin header value may call the
// endpoint. An absent origin (empty string) is never allowed.
func (p *Policy) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	_, ok := p.allowed[origin]
	return ok
}

// Headers returns the CORS header set for a request from origin. The
// allow-origin value echoes the origin when it is allowed and is empty
// otherwise; an empty allow-origin is not itself a rejection, so callers
// still gate disallowed origins with a 403.
func (p *Policy) Headers(origin string) http.Header {
	allowOrigin := ""
	if p.Allowed(origin) {
		allowOrigin = origin
	}
	h := http.Header{}
	h.Set("Access-Control-Allow-Origin", allowOrigin)
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Allow-Credentials", "true")
	return h
}

// Apply copies the policy's CORS headers for origin onto a response.
func (p *Policy) Apply(w http.ResponseWriter, origin string) {
	for k, vals := range p.Headers(origin) {
		for _, v := range vals {
			w.Header().Set(k, v)
		}
	}
}
