// Package httpx provides a pooled HTTP client for posting and fetching
// TONE-encoded payloads over HTTP, adapted from the transport pooling a
// long-lived RPC client needs into a generic "application/tone" content
// type helper.
package httpx

import (
	"crypto/tls"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
)

// ContentType is the MIME type this package sends and expects for TONE
// bodies.
const ContentType = "application/tone"

// Pool provides a shared, connection-pooled *http.Client. Implementations
// can swap in custom timeouts, mTLS, or test doubles by satisfying this
// interface instead of using DefaultPool.
type Pool interface {
	GetHTTPClient() *http.Client
}

// Config configures a DefaultPool's transport.
type Config struct {
	InsecureSkipVerify bool

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	Timeout time.Duration
}

// DefaultConfig returns secure-by-default pool settings sized for
// repeated small TONE payload exchanges rather than long-lived streaming
// connections.
func DefaultConfig() *Config {
	return &Config{
		InsecureSkipVerify:  false,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 50,
		IdleConnTimeout:     90 * time.Second,
		Timeout:             30 * time.Second,
	}
}

// DefaultPool is a Pool backed by an http2-enabled *http.Transport.
type DefaultPool struct {
	httpClient *http.Client
}

var _ Pool = (*DefaultPool)(nil)

// NewDefaultPool builds a DefaultPool from cfg. A nil cfg uses
// DefaultConfig.
func NewDefaultPool(cfg *Config) *DefaultPool {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}
	http2.ConfigureTransport(transport)

	return &DefaultPool{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

func (p *DefaultPool) GetHTTPClient() *http.Client { return p.httpClient }

var (
	defaultPool Pool
	poolOnce    sync.Once
)

// Shared returns a process-wide default Pool, built on first use.
func Shared() Pool {
	poolOnce.Do(func() {
		defaultPool = NewDefaultPool(nil)
	})
	return defaultPool
}
