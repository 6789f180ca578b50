package api

import (
	"net/http"
	"strings"
)

// OriginFromRequest returns the caller's base URL: the Origin header, else
// the Host header with an http scheme, else fallback.
func OriginFromRequest(r *http.Request, fallback string) string {
	if o := strings.TrimSpace(r.Header.Get("Origin")); o != "" && o != "null" {
		return strings.TrimRight(o, "/")
	}
	if host := strings.TrimSpace(r.Host); host != "" {
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host
		}
		return strings.TrimRight(host, "/")
	}
	if fallback == "" {
		fallback = defaultBaseURL
	}
	return strings.TrimRight(fallback, "/")
}
