package httpclient

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/chunkscribe/resilience"
)

// Config configures a Client.
type Config struct {
	// BaseURL is prefixed to relative request paths. Absolute paths
	// bypass it.
	BaseURL string
	// Timeout bounds a whole exchange, body upload included.
	Timeout time.Duration
	// Headers are sent with every request; per-request headers win.
	Headers map[string]string
	// Breaker enables a circuit breaker around every call.
	Breaker *resilience.CircuitBreakerConfig
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("httpclient: timeout must be >= 0 (got %s)", c.Timeout)
	}
	if c.BaseURL == "" {
		return nil
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("httpclient: base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("httpclient: base url %q must be an absolute http(s) URL", c.BaseURL)
	}
	return nil
}
