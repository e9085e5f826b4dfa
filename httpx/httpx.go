// Package httpx provides a minimal http.Client abstraction plus the request
// decorators the upstream client needs: User-Agent stamping, bounded retries,
// and a TTL response cache.
package httpx

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// BasicClient is a simpler http.Client that only requires a Do method.
type BasicClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ BasicClient = http.DefaultClient

// WithUserAgent is a basic HTTP client that adds a User-Agent header.
type WithUserAgent struct {
	BasicClient
	UserAgent string
}

var _ BasicClient = &WithUserAgent{}

// Do adds the User-Agent header and sends the request.
func (c *WithUserAgent) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.UserAgent)
	return c.BasicClient.Do(req)
}

// RetryClient retries idempotent requests on transport errors and 5xx
// responses with a fixed backoff between attempts.
type RetryClient struct {
	BasicClient
	// Attempts is the total number of tries. Zero or one disables retries.
	Attempts int
	// Backoff is the pause between tries.
	Backoff time.Duration
}

var _ BasicClient = &RetryClient{}

// Do sends the request, retrying GET and HEAD on retryable failures.
func (c *RetryClient) Do(req *http.Request) (*http.Response, error) {
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		attempts = 1
	}
	var resp *http.Response
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 && c.Backoff > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(c.Backoff):
			}
		}
		resp, err = c.BasicClient.Do(req)
		if err != nil {
			continue
		}
		if resp.StatusCode < 500 || i == attempts-1 {
			// The last response is handed to the caller with its body intact.
			return resp, nil
		}
		// Drain so the transport can reuse the connection.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	return nil, errors.Wrapf(err, "request failed after %d attempts", attempts)
}

// CachedClient is a BasicClient that caches successful GET responses.
type CachedClient struct {
	BasicClient
	cache Cache
}

var _ BasicClient = &CachedClient{}

// NewCachedClient returns a new CachedClient.
func NewCachedClient(client BasicClient, c Cache) *CachedClient {
	return &CachedClient{client, c}
}

// Do attempts to fetch from cache or fulfills the request using the
// underlying client, caching 200 responses to GET requests.
func (cc *CachedClient) Do(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return cc.BasicClient.Do(req)
	}
	key := req.URL.String()
	if body, ok := cc.cache.Get(key); ok {
		return &http.Response{
			Status:        "200 OK",
			StatusCode:    http.StatusOK,
			Header:        http.Header{},
			Body:          io.NopCloser(bytes.NewReader(body)),
			ContentLength: int64(len(body)),
			Request:       req,
		}, nil
	}
	resp, err := cc.BasicClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "reading response for cache")
	}
	cc.cache.Set(key, body)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
