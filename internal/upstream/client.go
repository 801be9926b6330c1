// Package upstream builds the HTTP clients used for calls to the auth and
// usage backends, routed through the user's active proxy when one is set.
package upstream

import (
	"net"
	"net/http"
	"time"

	"github.com/pysugar/codex-accounts/internal/models"
	"github.com/pysugar/codex-accounts/internal/netproxy"
)

// UserAgent is applied to requests that do not set one.
const UserAgent = "codex-cli"

// NewHTTPClient returns a client with the given overall timeout. With a
// non-nil proxy every request is tunnelled through it; otherwise the
// environment proxy settings apply.
func NewHTTPClient(timeout time.Duration, proxy *models.ProxyEntry) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
	}
	if proxy != nil {
		transport.Proxy = http.ProxyURL(netproxy.URL(proxy))
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: transport},
	}
}

type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", UserAgent)
	return t.base.RoundTrip(r)
}
