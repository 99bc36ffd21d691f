// Package normalize provides canonical forms for values that get compared,
// indexed, or deduplicated: account emails and bookmark URLs.
package normalize

import (
	"net/url"
	"strings"
)

// Email lowercases and trims an email address. Accounts store this form,
// so lookups and uniqueness checks never depend on how it was typed.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// URL canonicalizes a bookmark URL so the same page always stores the same
// string: scheme and host are lowercased, default ports are dropped, the
// fragment is removed, and a trailing slash on a non-root path is trimmed.
// Path, query, and userinfo are otherwise preserved.
//
// URL is total: input that does not parse as an absolute URL is returned
// trimmed but otherwise untouched. It is idempotent and deterministic.
func URL(raw string) string {
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = normalizeHost(strings.ToLower(u.Hostname()), u.Port(), u.Scheme)
	u.Fragment = ""

	if len(u.Path) > 1 {
		u.Path = strings.TrimRight(u.Path, "/")
	}

	return u.String()
}

// normalizeHost reassembles host:port, dropping the port when it is the
// scheme default. IPv6 literals get their brackets back.
func normalizeHost(hostname, port, scheme string) string {
	if strings.Contains(hostname, ":") {
		hostname = "[" + hostname + "]"
	}
	if port == "" {
		return hostname
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		return hostname
	}
	return hostname + ":" + port
}
