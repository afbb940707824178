// Package imageproxy rewrites upstream image URLs to the local proxy
// route and passes allow-listed image fetches through untouched. It
// performs no transcoding.
package imageproxy

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Proxy rewrites and serves image URLs for an allow-listed host set.
type Proxy struct {
	route    string
	allowed  map[string]bool
	suffixes []string
	client   *http.Client
}

// New creates a Proxy serving at route (e.g. "/image") for the given
// upstream hosts. An entry starting with "." is a domain suffix and
// matches any subdomain; providers with per-request CDN nodes
// (mangadex at-home servers) need this form.
func New(route string, hosts []string) *Proxy {
	allowed := make(map[string]bool, len(hosts))
	var suffixes []string
	for _, h := range hosts {
		if strings.HasPrefix(h, ".") {
			suffixes = append(suffixes, h)
			continue
		}
		allowed[h] = true
	}
	return &Proxy{
		route:    route,
		allowed:  allowed,
		suffixes: suffixes,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// ToDisplayURL rewrites an upstream image URL into the proxy route.
// dataSaver is forwarded so the client can signal which variant it was
// given; the proxy itself fetches exactly the URL it is handed.
func (p *Proxy) ToDisplayURL(original string, dataSaver bool) string {
	if original == "" {
		return ""
	}
	q := url.Values{}
	q.Set("url", original)
	if dataSaver {
		q.Set("saver", "1")
	}
	return p.route + "?" + q.Encode()
}

// Allowed reports whether the host of rawURL is in the allow-list,
// either exactly or under an allow-listed domain suffix.
func (p *Proxy) Allowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if p.allowed[host] {
		return true
	}
	for _, suffix := range p.suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// ServeHTTP streams an allow-listed upstream image to the client.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}
	if !p.Allowed(target) {
		http.Error(w, "host not allowed", http.StatusForbidden)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		http.Error(w, "bad upstream url", http.StatusBadRequest)
		return
	}

	resp, err := p.client.Do(req)
	if err != nil {
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
