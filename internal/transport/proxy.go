package transport

import (
	"net/http"
	"net/url"
)

// NewProxyFunc creates a proxy function for the composed transport.
// If no upstream proxy is configured, falls back to environment variables.
func NewProxyFunc(proxyURL string) func(*http.Request) (*url.URL, error) {
	if proxyURL == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		return url.Parse(proxyURL)
	}
}
