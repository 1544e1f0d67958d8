// Package http builds the outbound HTTP clients used for model providers
// and the hosted table store.
package http

import (
	"net/http"
	"time"
)

// Defaults for outbound clients. Model completions can take tens of
// seconds, so the overall timeout is larger than the header timeout.
const (
	DefaultTimeout             = 60 * time.Second
	DefaultMaxIdleConnsPerHost = 4
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultTLSHandshakeTimeout = 10 * time.Second
)

// ClientConfig tunes a client. Zero values take the defaults above.
type ClientConfig struct {
	Timeout             time.Duration
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	// UserAgent, when set, is sent on every request that lacks one.
	UserAgent string
}

// NewClient returns an *http.Client with its own pooled transport.
func NewClient(cfg ClientConfig) *http.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxIdleConnsPerHost == 0 {
		cfg.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = DefaultIdleConnTimeout
	}
	if cfg.TLSHandshakeTimeout == 0 {
		cfg.TLSHandshakeTimeout = DefaultTLSHandshakeTimeout
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	base.IdleConnTimeout = cfg.IdleConnTimeout
	base.TLSHandshakeTimeout = cfg.TLSHandshakeTimeout

	var rt http.RoundTripper = base
	if cfg.UserAgent != "" {
		rt = userAgentTransport{next: base, agent: cfg.UserAgent}
	}

	return &http.Client{Timeout: cfg.Timeout, Transport: rt}
}

type userAgentTransport struct {
	next  http.RoundTripper
	agent string
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(clone)
}
