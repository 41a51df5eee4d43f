package utils

import (
	"crypto/tls"
	"net/http"
	"time"
)

// UserAgent identifies the backend to the services it calls
const UserAgent = "CareerVerse/1.0"

// NewHTTPClient creates the client used for calls to internal services.
// Redirects are not followed; the services answer directly or fail.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &headerTransport{
			next: transport,
			headers: http.Header{
				"User-Agent": {UserAgent},
				"Accept":     {"application/json"},
			},
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// headerTransport sets default headers the request does not carry itself
type headerTransport struct {
	next    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var clone *http.Request
	for key, values := range t.headers {
		if req.Header.Get(key) != "" {
			continue
		}
		if clone == nil {
			clone = req.Clone(req.Context())
		}
		clone.Header[key] = values
	}
	if clone == nil {
		return t.next.RoundTrip(req)
	}
	return t.next.RoundTrip(clone)
}
