package inspire

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/inspirehep-mcp/cache"
	"github.com/jonwraymond/inspirehep-mcp/observe"
	"github.com/jonwraymond/inspirehep-mcp/resilience"
)

// flavor selects how a response body is parsed.
type flavor int

const (
	flavorJSON flavor = iota
	flavorText
)

func (f flavor) String() string {
	if f == flavorText {
		return "text"
	}
	return "json"
}

// textKeyMethod namespaces text-flavor cache keys so a JSON and a text
// response for the same path never collide.
const textKeyMethod = "GET_TEXT"

// Client talks to the InspireHEP REST API.
//
// A Client owns a response cache and a request pacer shared by every call
// made through it. It is safe for concurrent use. Construct one per process
// and pass it to whatever needs it.
type Client struct {
	cfg     Config
	baseURL *url.URL
	cache   *cache.TTLCache
	keyer   cache.Keyer
	pacer   *resilience.Pacer
	logger  observe.Logger
	rec     observe.RequestRecorder
	flight  singleflight.Group

	mu      sync.Mutex
	session *http.Client
}

// New creates a Client. It performs no I/O; the HTTP session is created on
// first use.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("inspirehep: invalid base URL: %w", err)
	}

	return &Client{
		cfg:     cfg,
		baseURL: base,
		cache: cache.NewTTLCache(
			cache.Policy{TTL: cfg.CacheTTL, MaxSize: cfg.CacheMaxSize},
			cache.WithClock(cfg.Clock),
		),
		keyer: cache.NewRequestKeyer(),
		pacer: resilience.NewPacer(resilience.PacerConfig{
			Rate:  cfg.RequestsPerSecond,
			Clock: cfg.Clock,
		}),
		logger: cfg.Logger,
		rec:    cfg.Recorder,
	}, nil
}

// Get fetches path with params and returns the decoded JSON object.
// Successful responses are cached.
//
// The returned map may be shared with other callers through the cache and
// must not be modified.
func (c *Client) Get(ctx context.Context, path string, params map[string]any) (map[string]any, error) {
	v, err := c.request(ctx, http.MethodGet, path, params, true, flavorJSON)
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

// GetNoCache is Get without consulting or populating the cache.
func (c *Client) GetNoCache(ctx context.Context, path string, params map[string]any) (map[string]any, error) {
	v, err := c.request(ctx, http.MethodGet, path, params, false, flavorJSON)
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

// GetText fetches path with params using Accept: */* and returns the raw
// body, e.g. for BibTeX or LaTeX exports. Successful responses are always
// cached.
func (c *Client) GetText(ctx context.Context, path string, params map[string]any) (string, error) {
	v, err := c.request(ctx, http.MethodGet, path, params, true, flavorText)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// CacheStats returns a snapshot of the response cache counters.
func (c *Client) CacheStats() cache.Stats {
	return c.cache.Stats()
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) request(ctx context.Context, method, path string, params map[string]any, useCache bool, fl flavor) (any, error) {
	keyMethod := method
	if fl == flavorText {
		keyMethod = textKeyMethod
	}
	key, err := c.keyer.Key(keyMethod, path, params)
	if err != nil {
		return nil, &APIError{Message: "invalid request", Details: err.Error(), Err: err}
	}

	req := observe.Request{Flavor: fl.String(), Path: path}
	cacheable := fl == flavorText || (useCache && method == http.MethodGet)

	if cacheable {
		if v, ok := c.cache.Get(key); ok {
			c.rec.CacheLookup(ctx, req, true)
			c.logger.Debug(ctx, "cache hit", observe.Field{Key: "cache_key", Value: key})
			return v, nil
		}
		c.rec.CacheLookup(ctx, req, false)
	}

	if err := ctx.Err(); err != nil {
		return nil, transportError(err)
	}

	if !cacheable || c.cfg.DisableInFlightDedup {
		return c.fetch(ctx, method, path, params, fl, key, cacheable)
	}

	// Concurrent identical requests share one upstream call. The shared call
	// runs detached from any single caller's cancellation; each waiter still
	// honors its own context.
	detached := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (any, error) {
		return c.fetch(detached, method, path, params, fl, key, cacheable)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, transportError(ctx.Err())
	}
}

func (c *Client) fetch(ctx context.Context, method, path string, params map[string]any, fl flavor, key string, cacheable bool) (any, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, transportError(err)
	}

	session := c.ensureSession()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req := observe.Request{Flavor: fl.String(), Path: path}
	ctx, span := c.rec.Start(ctx, req)

	start := c.cfg.Clock.Now()
	status, v, err := c.do(ctx, session, method, path, params, fl)
	out := observe.RequestOutcome{
		StatusCode: status,
		Duration:   c.cfg.Clock.Since(start),
		Err:        err,
	}
	if kind, ok := KindOf(err); ok {
		out.ErrKind = string(kind)
	}
	c.rec.End(ctx, span, req, out)

	if err != nil {
		c.logger.Warn(ctx, "upstream request failed",
			observe.Field{Key: "path", Value: path},
			observe.Field{Key: "status", Value: status},
			observe.Field{Key: "error_kind", Value: out.ErrKind},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return nil, err
	}

	if cacheable && c.cache.Policy().Enabled() {
		c.cache.Set(key, v)
	}
	return v, nil
}

func (c *Client) do(ctx context.Context, session *http.Client, method, path string, params map[string]any, fl flavor) (int, any, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, params), nil)
	if err != nil {
		return 0, nil, &APIError{Message: "invalid request", Details: err.Error(), Err: err}
	}
	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	if fl == flavorText {
		httpReq.Header.Set("Accept", "*/*")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}

	resp, err := session.Do(httpReq)
	if err != nil {
		return 0, nil, transportError(err)
	}
	defer resp.Body.Close()

	v, err := classifyResponse(resp, path, fl, c.cfg.Clock.Now())
	return resp.StatusCode, v, err
}

func (c *Client) buildURL(path string, params map[string]any) string {
	u := *c.baseURL
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path = c.baseURL.Path + path
	u.RawQuery = encodeParams(params)
	return u.String()
}

// encodeParams renders params as a query string with keys in sorted order.
func encodeParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		switch v := params[k].(type) {
		case nil:
			continue
		case []string:
			for _, s := range v {
				values.Add(k, s)
			}
		default:
			values.Add(k, formatParam(v))
		}
	}
	return values.Encode()
}

func formatParam(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
