// Package client provides the unified request façade. It merges configured
// defaults with per-call overrides, routes each request to a capable
// transport backend, and applies the registered interceptors around dispatch.
package client

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ebarkhatov/unihttp/internal/config"
	"github.com/ebarkhatov/unihttp/internal/httperr"
	"github.com/ebarkhatov/unihttp/internal/logger"
	"github.com/ebarkhatov/unihttp/internal/retry"
	"github.com/ebarkhatov/unihttp/internal/transport"
	"github.com/ebarkhatov/unihttp/internal/utils"
)

// RequestInterceptor transforms an outgoing request before dispatch.
// The returned request replaces the original; returning nil keeps it.
type RequestInterceptor func(req *transport.Request) *transport.Request

// ResponseInterceptor transforms a response envelope before it reaches the
// caller. It receives its own duplicate of the envelope, so reading the body
// here does not disturb the caller's copy. The returned envelope is final;
// returning nil keeps the duplicate.
type ResponseInterceptor func(envelope *transport.Envelope) *transport.Envelope

// RequestConfig carries per-call overrides. Nil pointer fields inherit the
// configured defaults, which keeps a zero override distinguishable from an
// absent one.
type RequestConfig struct {
	// Headers are merged over the configured default headers.
	Headers map[string]string
	// Timeout overrides the configured per-attempt timeout.
	Timeout *time.Duration
	// Retries overrides the configured retry count.
	Retries *int
	// Credentials overrides the configured credentials policy.
	Credentials transport.CredentialsPolicy
}

// Client defines the interface for executing HTTP requests.
type Client interface {
	// Request executes an arbitrary request and returns the response envelope.
	Request(ctx context.Context, method, path string, body []byte, cfg *RequestConfig) (*transport.Envelope, error)
	// Get executes a GET request.
	Get(ctx context.Context, path string, cfg *RequestConfig) (*transport.Envelope, error)
	// Post executes a POST request with a JSON-serialized payload.
	Post(ctx context.Context, path string, payload any, cfg *RequestConfig) (*transport.Envelope, error)
	// Put executes a PUT request with a JSON-serialized payload.
	Put(ctx context.Context, path string, payload any, cfg *RequestConfig) (*transport.Envelope, error)
	// Delete executes a DELETE request.
	Delete(ctx context.Context, path string, cfg *RequestConfig) (*transport.Envelope, error)
	// DownloadWithProgress fetches the resource while reporting cumulative
	// download progress and returns the full body.
	DownloadWithProgress(ctx context.Context, path string, onProgress transport.ProgressFunc, cfg *RequestConfig) ([]byte, error)
	// UploadWithProgress sends the body while reporting cumulative upload
	// progress. It is routed to a backend that can observe upload bytes.
	UploadWithProgress(ctx context.Context, path string, body []byte, onProgress transport.ProgressFunc, cfg *RequestConfig) (*transport.Envelope, error)
	// OnRequest registers the request interceptor. Passing nil clears it.
	OnRequest(fn RequestInterceptor)
	// OnResponse registers the response interceptor. Passing nil clears it.
	OnResponse(fn ResponseInterceptor)
	// GetBaseURL returns the configured base URL.
	GetBaseURL() string
}

// ClientImpl implements the Client interface.
type ClientImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// baseURL is prefixed to relative request paths.
	baseURL string
	// streaming is the default transport backend.
	streaming transport.Transport
	// legacy is the event-driven backend used for upload progress.
	legacy transport.Transport
	// retryPolicy decides which failures are re-attempted.
	retryPolicy retry.Policy
	// onRequest and onResponse are single interceptor slots, loaded once
	// per dispatch so registration never affects in-flight requests.
	onRequest  atomic.Pointer[RequestInterceptor]
	onResponse atomic.Pointer[ResponseInterceptor]
	// responseCache caches successful GET envelopes by resolved URL.
	// Nil when caching is disabled.
	responseCache *lru.Cache[string, *transport.Envelope]
}

// Static error definitions for better error handling.
var (
	// ErrInvalidBaseURL indicates that the configured base URL is not parseable.
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

// NewClient creates and returns a new instance of ClientImpl.
// The configuration must already be validated.
func NewClient(cfg *config.Config) (Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Scheme == "" {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidBaseURL, cfg.BaseURL)
		}
	}

	roundTripper, err := buildRoundTripperStack(cfg)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Transport: roundTripper}

	retryPolicy := buildRetryPolicy(cfg)

	streaming := transport.NewStreamingTransport(transport.StreamingTransportOptions{
		Client:                 httpClient,
		DownloadBytesPerSecond: cfg.ParsedDownloadSpeedLimit,
		RetryPolicy:            retryPolicy,
		MinRetryPause:          cfg.ParsedMinRetryPause,
		MaxRetryPause:          cfg.ParsedMaxRetryPause,
	})

	legacy := transport.NewLegacyTransport(func() transport.EventRequester {
		return transport.NewHTTPEventRequester(httpClient)
	})

	var responseCache *lru.Cache[string, *transport.Envelope]

	if cfg.ResponseCacheSize > 0 {
		responseCache, err = lru.New[string, *transport.Envelope](utils.SafeInt64ToInt(cfg.ResponseCacheSize))
		if err != nil {
			return nil, fmt.Errorf("failed to create response cache: %w", err)
		}
	}

	client := &ClientImpl{
		cfg:           cfg,
		baseURL:       baseURL,
		streaming:     streaming,
		legacy:        legacy,
		retryPolicy:   retryPolicy,
		responseCache: responseCache,
	}

	return client, nil
}

// buildRoundTripperStack assembles the HTTP middleware chain: request ID and
// user agent injection on the outside, throttling and debug logging closest
// to the wire.
func buildRoundTripperStack(cfg *config.Config) (http.RoundTripper, error) {
	roundTripper := transport.NewLoggingRoundTripper(http.DefaultTransport, cfg.MaxLogLength)

	if cfg.RequestsPerSecond > 0 {
		burst := utils.SafeInt64ToInt(cfg.Burst)

		var err error

		roundTripper, err = transport.NewThrottleRoundTripper(roundTripper, cfg.RequestsPerSecond, burst)
		if err != nil {
			return nil, fmt.Errorf("failed to create throttle: %w", err)
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	roundTripper = transport.NewUserAgentRoundTripper(roundTripper, userAgent)
	roundTripper = transport.NewRequestIDRoundTripper(roundTripper)

	return roundTripper, nil
}

// buildRetryPolicy returns the failure classification for retries.
// Client errors (4xx) are considered permanent unless configured otherwise.
func buildRetryPolicy(cfg *config.Config) retry.Policy {
	if cfg.RetryClientErrors {
		return nil
	}

	return func(err error) bool {
		var statusErr *httperr.StatusError
		if errors.As(err, &statusErr) &&
			statusErr.StatusCode >= http.StatusBadRequest &&
			statusErr.StatusCode < http.StatusInternalServerError {
			return false
		}

		return true
	}
}

// Request executes an arbitrary request and returns the response envelope.
func (c *ClientImpl) Request(
	ctx context.Context,
	method, path string,
	body []byte,
	cfg *RequestConfig,
) (*transport.Envelope, error) {
	req, err := c.buildRequest(method, path, body, cfg)
	if err != nil {
		return nil, err
	}

	return c.dispatch(ctx, req)
}

// Get executes a GET request.
func (c *ClientImpl) Get(ctx context.Context, path string, cfg *RequestConfig) (*transport.Envelope, error) {
	return c.Request(ctx, http.MethodGet, path, nil, cfg)
}

// Post executes a POST request with a JSON-serialized payload.
func (c *ClientImpl) Post(ctx context.Context, path string, payload any, cfg *RequestConfig) (*transport.Envelope, error) {
	return c.sendJSON(ctx, http.MethodPost, path, payload, cfg)
}

// Put executes a PUT request with a JSON-serialized payload.
func (c *ClientImpl) Put(ctx context.Context, path string, payload any, cfg *RequestConfig) (*transport.Envelope, error) {
	return c.sendJSON(ctx, http.MethodPut, path, payload, cfg)
}

// Delete executes a DELETE request.
func (c *ClientImpl) Delete(ctx context.Context, path string, cfg *RequestConfig) (*transport.Envelope, error) {
	return c.Request(ctx, http.MethodDelete, path, nil, cfg)
}

// DownloadWithProgress fetches the resource while reporting cumulative
// download progress and returns the full body.
func (c *ClientImpl) DownloadWithProgress(
	ctx context.Context,
	path string,
	onProgress transport.ProgressFunc,
	cfg *RequestConfig,
) ([]byte, error) {
	req, err := c.buildRequest(http.MethodGet, path, nil, cfg)
	if err != nil {
		return nil, err
	}

	req.DownloadProgress = onProgress

	envelope, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	return envelope.Bytes()
}

// UploadWithProgress sends the body while reporting cumulative upload progress.
func (c *ClientImpl) UploadWithProgress(
	ctx context.Context,
	path string,
	body []byte,
	onProgress transport.ProgressFunc,
	cfg *RequestConfig,
) (*transport.Envelope, error) {
	req, err := c.buildRequest(http.MethodPost, path, body, cfg)
	if err != nil {
		return nil, err
	}

	req.UploadProgress = onProgress

	return c.dispatch(ctx, req)
}

// OnRequest registers the request interceptor. Passing nil clears it.
func (c *ClientImpl) OnRequest(fn RequestInterceptor) {
	if fn == nil {
		c.onRequest.Store(nil)
		return
	}

	c.onRequest.Store(&fn)
}

// OnResponse registers the response interceptor. Passing nil clears it.
func (c *ClientImpl) OnResponse(fn ResponseInterceptor) {
	if fn == nil {
		c.onResponse.Store(nil)
		return
	}

	c.onResponse.Store(&fn)
}

// GetBaseURL returns the configured base URL.
func (c *ClientImpl) GetBaseURL() string {
	return c.baseURL
}

// sendJSON serializes the payload and forces the JSON content type.
func (c *ClientImpl) sendJSON(
	ctx context.Context,
	method, path string,
	payload any,
	cfg *RequestConfig,
) (*transport.Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &httperr.SerializationError{Err: err}
	}

	req, err := c.buildRequest(method, path, body, cfg)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	return c.dispatch(ctx, req)
}

// buildRequest merges configured defaults with per-call overrides into a
// transport request.
func (c *ClientImpl) buildRequest(method, path string, body []byte, cfg *RequestConfig) (*transport.Request, error) {
	resolvedURL, err := c.resolveURL(path)
	if err != nil {
		return nil, err
	}

	header := make(http.Header, len(c.cfg.DefaultHeaders))
	for key, value := range c.cfg.DefaultHeaders {
		header.Set(key, value)
	}

	req := &transport.Request{
		URL:         resolvedURL,
		Method:      method,
		Header:      header,
		Body:        body,
		Timeout:     c.cfg.ParsedTimeout,
		Retries:     utils.SafeInt64ToInt(c.cfg.Retries),
		Credentials: c.cfg.ParsedCredentials,
	}

	if cfg == nil {
		return req, nil
	}

	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}

	if cfg.Timeout != nil {
		req.Timeout = *cfg.Timeout
	}

	if cfg.Retries != nil {
		req.Retries = *cfg.Retries
	}

	if cfg.Credentials != "" {
		req.Credentials = cfg.Credentials
	}

	return req, nil
}

// resolveURL joins a relative path onto the base URL. Absolute URLs pass
// through untouched. A query string on the path survives the join.
func (c *ClientImpl) resolveURL(path string) (string, error) {
	if c.baseURL == "" || strings.Contains(path, "://") {
		return path, nil
	}

	pathPart, query, hasQuery := strings.Cut(path, "?")

	resolved, err := url.JoinPath(c.baseURL, pathPart)
	if err != nil {
		return "", fmt.Errorf("failed to resolve URL: %w", err)
	}

	if hasQuery {
		resolved += "?" + query
	}

	return resolved, nil
}

// dispatch runs the interceptors and routes the request to a transport.
func (c *ClientImpl) dispatch(ctx context.Context, req *transport.Request) (*transport.Envelope, error) {
	if fn := c.onRequest.Load(); fn != nil {
		if replaced := (*fn)(req); replaced != nil {
			req = replaced
		}
	}

	cacheable := c.responseCache != nil &&
		req.Method == http.MethodGet &&
		req.DownloadProgress == nil &&
		req.UploadProgress == nil

	if cacheable {
		if cached, found := c.responseCache.Get(req.URL); found {
			// Serve a duplicate so callers never share body state with the
			// cache. A duplication failure falls through to the network.
			if duplicate, cloneErr := cached.Clone(); cloneErr == nil {
				logger.Debugf(ctx, "response cache hit: %s", req.URL)

				return c.applyResponseInterceptor(duplicate)
			}
		}
	}

	envelope, err := c.execute(ctx, req)
	if err != nil {
		// Cancellation surfaces to the caller as the uniform timeout error.
		if httperr.IsCancellation(err) {
			return nil, httperr.ErrTimeout
		}

		return nil, err
	}

	if cacheable && envelope.StatusCode >= http.StatusOK && envelope.StatusCode < http.StatusMultipleChoices {
		// Cache a materialized duplicate; the live envelope goes to the caller.
		if duplicate, cloneErr := envelope.Clone(); cloneErr == nil {
			c.responseCache.Add(req.URL, duplicate)
		}
	}

	return c.applyResponseInterceptor(envelope)
}

// execute routes the request to a backend able to serve it. The streaming
// backend manages its own retry and timeout cycle; the legacy backend times
// out internally, so only retries are layered here.
func (c *ClientImpl) execute(ctx context.Context, req *transport.Request) (*transport.Envelope, error) {
	if req.UploadProgress == nil || c.streaming.SupportsUploadProgress() {
		return c.streaming.Execute(ctx, req)
	}

	return retry.Do(ctx, req.Retries,
		func(ctx context.Context) (*transport.Envelope, error) {
			return c.legacy.Execute(ctx, req)
		},
		retry.WithPolicy(c.retryPolicy),
		retry.WithPause(c.cfg.ParsedMinRetryPause, c.cfg.ParsedMaxRetryPause))
}

// applyResponseInterceptor hands the interceptor its own duplicate of the
// envelope, so body reads inside the interceptor never disturb the caller.
func (c *ClientImpl) applyResponseInterceptor(envelope *transport.Envelope) (*transport.Envelope, error) {
	fn := c.onResponse.Load()
	if fn == nil {
		return envelope, nil
	}

	duplicate, err := envelope.Clone()
	if err != nil {
		return nil, err
	}

	if replaced := (*fn)(duplicate); replaced != nil {
		return replaced, nil
	}

	return duplicate, nil
}

// defaultClient is the process-wide instance. It is never set implicitly.
var defaultClient atomic.Pointer[Client]

// SetDefault installs the process-wide default client.
func SetDefault(c Client) {
	if c == nil {
		defaultClient.Store(nil)
		return
	}

	defaultClient.Store(&c)
}

// Default returns the process-wide default client, or nil when none was set.
func Default() Client {
	c := defaultClient.Load()
	if c == nil {
		return nil
	}

	return *c
}
