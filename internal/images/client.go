package images

import (
	"net"
	"net/http"
	"time"
)

const DefaultUserAgent = "event-tinder/1.0 (+https://example.com)"

// Doer is the subset of *http.Client the resolver needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient builds the shared outbound client. Per-request deadlines come
// from the resolver's contexts, so the client itself has no timeout.
func NewHTTPClient() *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Transport: tr}
}
