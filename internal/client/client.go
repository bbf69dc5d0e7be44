// Package client is a typed Go client for the FinanceTracker API. Reads are
// cached per resource and deduplicated; writes drop the caches they affect.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sebuszqo/FinanceTracker/internal/cache"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

const (
	defaultCacheSize = 256
	defaultCacheTTL  = time.Minute
	defaultTimeout   = 30 * time.Second
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("api error %d: %s: %s", e.Status, e.Message, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string

	cache *cache.LRUCache[json.RawMessage]
	group singleflight.Group

	// genMu orders cache fills against invalidation. epoch moves on every
	// purge, generations on every invalidation of a resource.
	genMu       sync.Mutex
	epoch       uint64
	generations map[domain.Resource]uint64
}

type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	cacheSize  int
	cacheTTL   time.Duration
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = httpClient }
}

func WithCache(size int, ttl time.Duration) Option {
	return func(o *clientOptions) {
		o.cacheSize = size
		o.cacheTTL = ttl
	}
}

func New(baseURL string, opts ...Option) *Client {
	o := clientOptions{
		httpClient: &http.Client{Timeout: defaultTimeout},
		cacheSize:  defaultCacheSize,
		cacheTTL:   defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  o.httpClient,
		cache:       cache.NewLRUCache[json.RawMessage](o.cacheSize, o.cacheTTL),
		generations: make(map[domain.Resource]uint64),
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Invalidate drops the cached reads of resource and of every resource derived from it.
// Reads already in flight for those resources will not be cached.
func (c *Client) Invalidate(resource domain.Resource) {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	for _, r := range resource.Invalidates() {
		c.generations[r]++
		c.cache.DeletePrefix(r.String() + ":")
	}
}

func (c *Client) purge() {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.epoch++
	c.cache.Purge()
}

// generation must be called with genMu held. It grows on every purge and
// every invalidation of resource.
func (c *Client) generation(resource domain.Resource) uint64 {
	return c.epoch + c.generations[resource]
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody struct {
			Message string   `json:"message"`
			Errors  []string `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Message != "" {
			apiErr.Message = errBody.Message
			apiErr.Errors = errBody.Errors
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// query GETs path and decodes its "data" field into out, serving repeats from
// the cache and sharing one request between concurrent callers.
func (c *Client) query(ctx context.Context, resource domain.Resource, path string, out interface{}) error {
	key := resource.String() + ":" + path
	if raw, ok := c.cache.Get(key); ok {
		return json.Unmarshal(raw, out)
	}

	c.genMu.Lock()
	generation := c.generation(resource)
	c.genMu.Unlock()

	v, err, _ := c.group.Do(fmt.Sprintf("%s#%d", key, generation), func() (interface{}, error) {
		// Shared by every caller waiting on this key.
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultTimeout)
		defer cancel()

		var env dataEnvelope
		if err := c.do(sharedCtx, http.MethodGet, path, nil, &env); err != nil {
			return nil, err
		}
		c.genMu.Lock()
		if c.generation(resource) == generation {
			c.cache.Set(key, env.Data)
		}
		c.genMu.Unlock()
		return env.Data, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.(json.RawMessage), out)
}

// mutate sends a write and, when it succeeds, invalidates resource.
func (c *Client) mutate(ctx context.Context, resource domain.Resource, method, path string, body, out interface{}) error {
	if err := c.do(ctx, method, path, body, out); err != nil {
		return err
	}
	c.Invalidate(resource)
	return nil
}

type deletedRow struct {
	ID string `json:"id"`
}

func (c *Client) deleteIDs(ctx context.Context, resource domain.Resource, method, path string, body interface{}) ([]string, error) {
	var rows []deletedRow
	if err := c.mutate(ctx, resource, method, path, body, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}
