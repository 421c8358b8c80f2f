package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ebarkhatov/unihttp/internal/client"
	"github.com/ebarkhatov/unihttp/internal/config"
	"github.com/ebarkhatov/unihttp/internal/httperr"
	"github.com/ebarkhatov/unihttp/internal/logger"
)

// ErrMalformedHeader indicates a header argument without a "Key: Value" shape.
var ErrMalformedHeader = errors.New("malformed header, expected 'Key: Value'")

// RequestOptions carries the command-line arguments of a plain request.
type RequestOptions struct {
	// Method is the HTTP method to execute.
	Method string
	// URL is the target, absolute or relative to the configured base URL.
	URL string
	// Body is the raw request payload. Empty means no body.
	Body string
	// Headers are raw "Key: Value" arguments.
	Headers []string
}

// ExecuteRequestCommand executes a single request and writes the response
// body to stdout. The process exits non-zero on any failure.
func ExecuteRequestCommand(ctx context.Context, cfg *config.Config, opts *RequestOptions) {
	c, err := client.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize client: %v", err)
	}

	requestConfig, err := parseHeaderArguments(opts.Headers)
	if err != nil {
		logger.Fatalf(ctx, "Failed to parse headers: %v", err)
	}

	var body []byte
	if opts.Body != "" {
		body = []byte(opts.Body)
	}

	envelope, err := c.Request(ctx, opts.Method, opts.URL, body, requestConfig)
	if err != nil {
		reportRequestFailure(ctx, err)
		return
	}

	responseBody, err := envelope.Bytes()
	if err != nil {
		logger.Fatalf(ctx, "Failed to read response body: %v", err)
	}

	logger.Debugf(ctx, "%s %s: %s", opts.Method, opts.URL, envelope.Status)

	if len(responseBody) > 0 {
		_, _ = os.Stdout.Write(responseBody)

		if responseBody[len(responseBody)-1] != '\n' {
			fmt.Println()
		}
	}
}

// parseHeaderArguments converts raw "Key: Value" arguments into a request
// configuration. Nil is returned when no headers were given.
func parseHeaderArguments(raw []string) (*client.RequestConfig, error) {
	if len(raw) == 0 {
		return nil, nil //nolint:nilnil // No headers means no per-call overrides.
	}

	headers := make(map[string]string, len(raw))

	for _, arg := range raw {
		key, value, found := strings.Cut(arg, ":")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: '%s'", ErrMalformedHeader, arg)
		}

		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return &client.RequestConfig{Headers: headers}, nil
}

// reportRequestFailure logs a failure with its taxonomy kind spelled out.
func reportRequestFailure(ctx context.Context, err error) {
	switch {
	case errors.Is(err, httperr.ErrTimeout):
		logger.Fatalf(ctx, "Request timed out: %v", err)
	case errors.Is(err, httperr.ErrHTTPStatus):
		logger.Fatalf(ctx, "Server rejected the request: %v", err)
	case errors.Is(err, httperr.ErrNetwork):
		logger.Fatalf(ctx, "Network failure: %v", err)
	default:
		logger.Fatalf(ctx, "Request failed: %v", err)
	}
}
