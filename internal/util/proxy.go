// Package util holds small transport helpers shared by the analysis engine
// providers.
package util

import (
	"net/http"
	"net/url"
)

// NewProxyFunc builds the proxy resolver for an engine provider's HTTP
// client. Explicit proxy URLs from configuration take precedence; with none
// set, resolution defers to the standard proxy environment variables.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
