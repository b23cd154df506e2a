package utils

import "net/http"

// BaseURL resolves the external base URL for links sent back to clients
// (invite links, accept redirects). An explicitly configured base URL
// wins; otherwise the forwarded scheme/host restored by the normalize
// middleware are used.
func BaseURL(r *http.Request, configured string) string {
	if configured != "" {
		return configured
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	return scheme + "://" + r.Host
}
