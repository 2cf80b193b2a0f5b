// Package integrations provides the shared HTTP plumbing for package
// index clients: sentinel error mapping, retry with backoff, and an
// optional response cache.
package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/pipelock/pkg/cache"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the index.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for index requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// Client provides shared HTTP functionality for index API clients.
// It handles retries, caching, and common request headers. The zero
// value is not usable; construct with NewClient.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client backed by the given cache. Pass
// cache.NullCache{} to disable response caching and nil for headers if
// no default headers are needed.
func NewClient(backend cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NullCache{}
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   backend,
		ttl:     ttl,
		headers: headers,
	}
}

// GetJSON performs an HTTP GET and JSON-decodes the response into v,
// consulting the cache first. Responses are cached under the url.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	if data, ok, _ := c.cache.Get(ctx, url); ok {
		return json.Unmarshal(data, v)
	}

	var body []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		data, err := c.fetch(ctx, url)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return err
	}
	_ = c.cache.Set(ctx, url, body, c.ttl)
	return nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
