package transport

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ebarkhatov/unihttp/internal/logger"
	"github.com/ebarkhatov/unihttp/internal/utils"
)

// DefaultMaxLogLength bounds request/response dumps in debug logs.
const DefaultMaxLogLength uint64 = 64 * 1024

// requestIDHeader carries the per-request correlation ID.
const requestIDHeader = "X-Request-Id"

// userAgentHeader is the HTTP header name for User-Agent.
const userAgentHeader = "User-Agent"

// Static error definitions for better error handling.
var (
	// ErrNilRequest indicates that the HTTP request is nil.
	ErrNilRequest = errors.New("request is nil")
	// ErrInvalidThrottleRate indicates a non-positive requests-per-second setting.
	ErrInvalidThrottleRate = errors.New("requests per second must be positive")
)

// LoggingRoundTripper logs each request/response cycle at debug level,
// including bounded dumps of the payloads.
type LoggingRoundTripper struct {
	next         http.RoundTripper
	maxLogLength uint64
}

// NewLoggingRoundTripper wraps next with debug logging. A zero maxLogLength
// falls back to DefaultMaxLogLength.
func NewLoggingRoundTripper(next http.RoundTripper, maxLogLength uint64) http.RoundTripper {
	if maxLogLength == 0 {
		maxLogLength = DefaultMaxLogLength
	}

	return &LoggingRoundTripper{
		next:         next,
		maxLogLength: maxLogLength,
	}
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	// Dumping bodies is wasted work unless debug logging is on.
	if !logger.IsDebugLevel() {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()
	requestDump := t.dumpRequest(req)
	startTime := time.Now()

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(startTime)

	if err != nil {
		logger.Debugf(ctx, "Request failed: %s %s | Error: %v", req.Method, req.URL.String(), err)

		return nil, err
	}

	logger.Debugf(ctx, "%s %s [%d] %s\nRequest: %s\nResponse: %s",
		req.Method, req.URL.Path, resp.StatusCode, duration, requestDump, t.dumpResponse(resp))

	return resp, nil
}

func (t *LoggingRoundTripper) dumpRequest(req *http.Request) string {
	dump, err := httputil.DumpRequest(req, utils.IsTextContentType(req.Header.Get("Content-Type")))
	if err != nil {
		return err.Error()
	}

	return t.truncate(dump)
}

func (t *LoggingRoundTripper) dumpResponse(resp *http.Response) string {
	// Only dump bodies that are safe to render as text.
	dump, err := httputil.DumpResponse(resp, utils.IsTextContentType(resp.Header.Get("Content-Type")))
	if err != nil {
		return err.Error()
	}

	return t.truncate(dump)
}

func (t *LoggingRoundTripper) truncate(data []byte) string {
	if uint64(len(data)) > t.maxLogLength {
		return string(data[:t.maxLogLength]) + "... [truncated]"
	}

	return string(data)
}

// UserAgentRoundTripper injects a User-Agent header into requests that carry none.
type UserAgentRoundTripper struct {
	next  http.RoundTripper
	value string
}

// NewUserAgentRoundTripper wraps next so every outgoing request carries the
// given User-Agent unless the caller already set one.
func NewUserAgentRoundTripper(next http.RoundTripper, value string) http.RoundTripper {
	return &UserAgentRoundTripper{
		next:  next,
		value: value,
	}
}

// RoundTrip implements the http.RoundTripper interface.
func (t *UserAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(userAgentHeader) == "" && t.value != "" {
		req.Header.Set(userAgentHeader, t.value)
	}

	return t.next.RoundTrip(req)
}

// RequestIDRoundTripper assigns each outgoing request a correlation ID
// unless the caller supplied one.
type RequestIDRoundTripper struct {
	next http.RoundTripper
}

// NewRequestIDRoundTripper wraps next with X-Request-Id injection.
func NewRequestIDRoundTripper(next http.RoundTripper) http.RoundTripper {
	return &RequestIDRoundTripper{next: next}
}

// RoundTrip implements the http.RoundTripper interface.
func (t *RequestIDRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(requestIDHeader) == "" {
		req.Header.Set(requestIDHeader, uuid.NewString())
	}

	return t.next.RoundTrip(req)
}

// ThrottleRoundTripper rate-limits outgoing requests with a token bucket.
// Requests wait for a token, honoring the request context.
type ThrottleRoundTripper struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

// NewThrottleRoundTripper wraps next with a token bucket of the given rate
// and burst. A burst below 1 is raised to 1.
func NewThrottleRoundTripper(next http.RoundTripper, rps float64, burst int) (http.RoundTripper, error) {
	if rps <= 0 {
		return nil, ErrInvalidThrottleRate
	}

	if burst < 1 {
		burst = 1
	}

	return &ThrottleRoundTripper{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// RoundTrip implements the http.RoundTripper interface.
func (t *ThrottleRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	return t.next.RoundTrip(req)
}
