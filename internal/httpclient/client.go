package httpclient

import (
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultTimeout bounds one AI request. A fix runs while the user waits
	// on a hotkey, so this is far shorter than a batch job would allow.
	DefaultTimeout = 60 * time.Second
	// DialTimeout bounds connecting to the local event hub.
	DialTimeout = 5 * time.Second

	MaxIdleConns          = 16
	MaxIdleConnsPerHost   = 4
	IdleConnTimeout       = 90 * time.Second
	TLSHandshakeTimeout   = 10 * time.Second
	ExpectContinueTimeout = 1 * time.Second
)

var (
	defaultClient     *http.Client
	defaultClientOnce sync.Once
)

// NewClient returns a new http.Client with the specified timeout.
func NewClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          MaxIdleConns,
		MaxIdleConnsPerHost:   MaxIdleConnsPerHost,
		IdleConnTimeout:       IdleConnTimeout,
		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ExpectContinueTimeout: ExpectContinueTimeout,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// GetDefaultClient returns the shared client used to reach the event hub.
// It has no overall timeout: the websocket outlives the request, so callers
// bound the handshake with a context instead.
func GetDefaultClient() *http.Client {
	defaultClientOnce.Do(func() {
		defaultClient = NewClient(0)
	})
	return defaultClient
}
