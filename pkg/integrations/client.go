package integrations

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/trendtower/pkg/cache"
	"github.com/matzehuels/trendtower/pkg/errors"
	"github.com/matzehuels/trendtower/pkg/httputil"
	"github.com/matzehuels/trendtower/pkg/observability"
)

// Client provides shared HTTP functionality for all upstream clients.
// It handles caching, common request headers, quota accounting, and the
// mapping of transport failures to error codes. It does not retry;
// callers own the retry schedule.
type Client struct {
	http    *http.Client
	store   cache.Cache
	ttl     time.Duration
	headers map[string]string
	quota   *QuotaCounter
}

// NewClient creates a Client over the given cache backend. Headers are
// applied to all requests made through this client; pass nil if no
// default headers are needed.
func NewClient(store cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if store == nil {
		store = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		store:   store,
		ttl:     ttl,
		headers: headers,
		quota:   NewQuotaCounter(),
	}
}

// Quota returns the counter tracking upstream calls made through this
// client. The counter is live; transports read it for diagnostics.
func (c *Client) Quota() *QuotaCounter {
	return c.quota
}

// Cached retrieves a JSON value from cache or executes fetch and caches
// the result. The fetch function should populate v; on success, v is
// stored under key for the client's TTL. Cache read or write failures
// degrade to a plain fetch, never to a request failure.
func (c *Client) Cached(ctx context.Context, key string, v any, fetch func() error) error {
	if data, ok, _ := c.store.Get(ctx, key); ok {
		if err := json.Unmarshal(data, v); err == nil {
			observability.Cache().OnCacheHit(ctx, key)
			return nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, key)

	if err := fetch(); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.store.Set(ctx, key, data, c.ttl)
		observability.Cache().OnCacheSet(ctx, key, len(data))
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "decode response from %s", url)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as
// a string. Used for HTML endpoints.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeNetwork, err, "read response from %s", url)
	}
	return string(data), nil
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build request for %s", url)
	}
	req.Header.Set("User-Agent", UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	observability.HTTP().OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	c.quota.RecordCall()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, classifyTransportError(err, url)
	}
	observability.HTTP().OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))
	c.quota.Observe(resp.Header)

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// classifyTransportError maps client-side failures to error codes.
// Deadline overruns become TIMEOUT; everything else is a retryable
// network error.
func classifyTransportError(err error, url string) error {
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "request to %s timed out", url)
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.Wrap(errors.ErrCodeNetwork, err, "request to %s cancelled", url)
	}
	return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "request to %s failed", url))
}

// checkStatus maps upstream status codes to error codes. Quota
// exhaustion (429, or 403 with a drained rate-limit header) becomes
// RATE_LIMITED carrying any Retry-After hint; 5xx responses are
// retryable network errors.
func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "resource not found (%s)", resp.Request.URL.Path)
	case code == http.StatusTooManyRequests, code == http.StatusForbidden && quotaDrained(resp.Header):
		rle := &errors.RateLimitedError{
			RetryAfter: retryAfterSeconds(resp.Header),
			Message:    "upstream call quota exhausted",
		}
		return errors.Wrap(errors.ErrCodeRateLimited, rle, "status %d from %s", code, resp.Request.URL.Host)
	case code >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeNetwork, "status %d from %s", code, resp.Request.URL.Host))
	default:
		return errors.New(errors.ErrCodeNetwork, "status %d from %s", code, resp.Request.URL.Host)
	}
}

func quotaDrained(h http.Header) bool {
	return h.Get("X-RateLimit-Remaining") == "0"
}

func retryAfterSeconds(h http.Header) int {
	if s := h.Get("Retry-After"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return 0
}
