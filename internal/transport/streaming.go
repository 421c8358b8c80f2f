package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ebarkhatov/unihttp/internal/httperr"
	"github.com/ebarkhatov/unihttp/internal/retry"
	"github.com/ebarkhatov/unihttp/internal/utils"
)

const (
	// downloadChunkSize is the read granularity for progress reporting.
	downloadChunkSize = 32 * 1024

	// maxErrorDetailSize bounds how much of a failed response's body is
	// read for the best-effort error detail.
	maxErrorDetailSize = 4 * 1024
)

// StreamingTransportOptions configures a StreamingTransport.
type StreamingTransportOptions struct {
	// Client is the underlying HTTP client. Defaults to a plain client.
	Client *http.Client
	// DownloadBytesPerSecond paces body consumption during progress
	// downloads. Zero disables pacing.
	DownloadBytesPerSecond int64
	// RetryPolicy refines which failures are re-attempted.
	// Nil retries every failure.
	RetryPolicy retry.Policy
	// MinRetryPause and MaxRetryPause bound the jittered pause between
	// retry attempts. Both zero means attempts run back to back.
	MinRetryPause time.Duration
	MaxRetryPause time.Duration
}

// StreamingTransport executes requests through net/http with cooperative
// context cancellation. Each execution is wrapped retry-around-timeout, so
// every attempt starts a fresh timeout clock.
type StreamingTransport struct {
	client        *http.Client
	byteLimiter   *rate.Limiter
	retryPolicy   retry.Policy
	minRetryPause time.Duration
	maxRetryPause time.Duration
}

// NewStreamingTransport creates a streaming transport from the given options.
func NewStreamingTransport(opts StreamingTransportOptions) *StreamingTransport {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}

	var limiter *rate.Limiter
	if opts.DownloadBytesPerSecond > 0 {
		burst := utils.SafeInt64ToInt(opts.DownloadBytesPerSecond)
		if burst < downloadChunkSize {
			burst = downloadChunkSize
		}

		limiter = rate.NewLimiter(rate.Limit(opts.DownloadBytesPerSecond), burst)
	}

	return &StreamingTransport{
		client:        client,
		byteLimiter:   limiter,
		retryPolicy:   opts.RetryPolicy,
		minRetryPause: opts.MinRetryPause,
		maxRetryPause: opts.MaxRetryPause,
	}
}

// SupportsUploadProgress implements the Transport interface.
// net/http gives no per-byte visibility into the request body here.
func (t *StreamingTransport) SupportsUploadProgress() bool {
	return false
}

// Execute implements the Transport interface.
func (t *StreamingTransport) Execute(ctx context.Context, req *Request) (*Envelope, error) {
	return retry.Do(ctx, req.Retries,
		func(ctx context.Context) (*Envelope, error) {
			return retry.WithTimeout(ctx, req.Timeout,
				func(ctx context.Context) (*Envelope, error) {
					return t.attempt(ctx, req)
				})
		},
		retry.WithPolicy(t.retryPolicy),
		retry.WithPause(t.minRetryPause, t.maxRetryPause),
	)
}

// attempt performs a single request round trip.
func (t *StreamingTransport) attempt(ctx context.Context, req *Request) (*Envelope, error) {
	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	applyHeaders(httpReq, req)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		// Deadline and cancellation artifacts pass through raw: the
		// timeout combinator owns their translation.
		if httperr.IsCancellation(err) {
			return nil, err
		}

		return nil, &httperr.NetworkError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, statusFailure(resp)
	}

	if req.DownloadProgress == nil {
		envelope := NewEnvelope(resp.StatusCode, http.StatusText(resp.StatusCode), resp.Header, resp.Body)

		// With a per-attempt timeout armed, the response body is bound to a
		// context that dies the moment this attempt settles. Consume it now
		// so the envelope outlives the attempt.
		if req.Timeout > 0 {
			if _, readErr := envelope.Bytes(); readErr != nil {
				return nil, readErr
			}
		}

		return envelope, nil
	}

	return t.consumeWithProgress(ctx, resp, req.DownloadProgress)
}

// statusFailure turns a non-success response into a StatusError with a
// best-effort body excerpt. A body read failure never masks the status.
func statusFailure(resp *http.Response) error {
	defer resp.Body.Close()

	detail, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorDetailSize))
	if readErr != nil {
		detail = nil
	}

	return &httperr.StatusError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Detail:     string(bytes.TrimSpace(detail)),
	}
}

// consumeWithProgress drains the body incrementally, reporting cumulative
// progress per chunk, then reassembles the chunks into a buffered envelope
// so the caller can still read the complete body exactly once.
func (t *StreamingTransport) consumeWithProgress(
	ctx context.Context,
	resp *http.Response,
	onProgress ProgressFunc,
) (*Envelope, error) {
	defer resp.Body.Close()

	total := resp.ContentLength
	if total < 0 {
		total = TotalUnknown
	}

	var assembled bytes.Buffer
	if total > 0 {
		assembled.Grow(utils.SafeInt64ToInt(total))
	}

	var received int64

	chunk := make([]byte, downloadChunkSize)

	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			if t.byteLimiter != nil {
				if waitErr := t.byteLimiter.WaitN(ctx, n); waitErr != nil {
					if ctxErr := ctx.Err(); ctxErr != nil {
						return nil, ctxErr
					}

					return nil, &httperr.NetworkError{Err: waitErr}
				}
			}

			assembled.Write(chunk[:n])
			received += int64(n)
			onProgress(received, total)
		}

		if readErr == io.EOF {
			break
		}

		if readErr != nil {
			if httperr.IsCancellation(readErr) {
				return nil, readErr
			}

			return nil, &httperr.NetworkError{Err: readErr}
		}
	}

	return NewBufferedEnvelope(
		resp.StatusCode,
		http.StatusText(resp.StatusCode),
		resp.Header,
		assembled.Bytes(),
	), nil
}

// applyHeaders copies the merged headers onto the outgoing request and
// enforces the credentials policy: the omit policy strips ambient
// credentials before the request leaves the process.
func applyHeaders(httpReq *http.Request, req *Request) {
	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
	}

	if req.Credentials == CredentialsOmit {
		httpReq.Header.Del("Cookie")
		httpReq.Header.Del("Authorization")
	}
}
