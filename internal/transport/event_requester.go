package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// httpEventRequester is the default EventRequester, backed by net/http.
// It emulates the event-driven primitive a hosting runtime would supply:
// completion, error, and timeout land on distinct handlers, and upload
// progress is observed through a counting reader around the request body.
type httpEventRequester struct {
	client *http.Client

	method string
	url    string
	header http.Header

	timeout     time.Duration
	credentials CredentialsPolicy

	onLoad             func(load EventLoad)
	onError            func(err error)
	onTimeout          func()
	onDownloadProgress func(transferred, total int64)

	upload *httpEventUpload

	cancel    context.CancelFunc
	abortOnce sync.Once
}

// httpEventUpload is the upload-progress channel of httpEventRequester.
type httpEventUpload struct {
	onProgress func(transferred, total int64)
}

// OnProgress implements the EventUpload interface.
func (u *httpEventUpload) OnProgress(fn func(transferred, total int64)) {
	u.onProgress = fn
}

// NewHTTPEventRequester creates the default net/http-backed event requester.
// A nil client falls back to a plain http.Client; the primitive's timeout is
// driven by request context, never by client-wide settings.
func NewHTTPEventRequester(client *http.Client) EventRequester {
	if client == nil {
		client = &http.Client{}
	}

	return &httpEventRequester{
		client: client,
		header: make(http.Header),
		upload: &httpEventUpload{},
	}
}

// Open implements the EventRequester interface.
func (r *httpEventRequester) Open(method, url string) {
	r.method = method
	r.url = url
}

// SetTimeout implements the EventRequester interface.
func (r *httpEventRequester) SetTimeout(d time.Duration) {
	r.timeout = d
}

// SetCredentials implements the EventRequester interface.
func (r *httpEventRequester) SetCredentials(policy CredentialsPolicy) {
	r.credentials = policy
}

// SetHeader implements the EventRequester interface.
func (r *httpEventRequester) SetHeader(key, value string) {
	r.header.Add(key, value)
}

// OnLoad implements the EventRequester interface.
func (r *httpEventRequester) OnLoad(fn func(load EventLoad)) {
	r.onLoad = fn
}

// OnError implements the EventRequester interface.
func (r *httpEventRequester) OnError(fn func(err error)) {
	r.onError = fn
}

// OnTimeout implements the EventRequester interface.
func (r *httpEventRequester) OnTimeout(fn func()) {
	r.onTimeout = fn
}

// OnDownloadProgress implements the EventRequester interface.
func (r *httpEventRequester) OnDownloadProgress(fn func(transferred, total int64)) {
	r.onDownloadProgress = fn
}

// Upload implements the EventRequester interface. The net/http-backed
// requester always exposes an upload channel.
func (r *httpEventRequester) Upload() EventUpload {
	return r.upload
}

// Send implements the EventRequester interface. The request runs on its own
// goroutine; exactly one of the registered handlers fires when it settles.
func (r *httpEventRequester) Send(body []byte) {
	ctx := context.Background()

	var cancel context.CancelFunc
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	r.cancel = cancel

	go r.run(ctx, body)
}

// Abort implements the EventRequester interface. Aborting is idempotent.
func (r *httpEventRequester) Abort() {
	r.abortOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
	})
}

// run performs the request and dispatches exactly one handler.
func (r *httpEventRequester) run(ctx context.Context, body []byte) {
	var reqBody io.Reader = http.NoBody
	if body != nil {
		reqBody = &progressReader{
			reader: bytes.NewReader(body),
			total:  int64(len(body)),
			fn:     r.upload.onProgress,
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, r.url, reqBody)
	if err != nil {
		r.fireError(err)
		return
	}

	httpReq.Header = r.header.Clone()
	if r.credentials == CredentialsOmit {
		httpReq.Header.Del("Cookie")
		httpReq.Header.Del("Authorization")
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		r.fireError(err)
		return
	}

	defer resp.Body.Close()

	total := resp.ContentLength
	if total < 0 {
		total = TotalUnknown
	}

	var respBody io.Reader = resp.Body
	if r.onDownloadProgress != nil {
		respBody = &progressReader{
			reader: resp.Body,
			total:  total,
			fn:     r.onDownloadProgress,
		}
	}

	data, err := io.ReadAll(respBody)
	if err != nil {
		r.fireError(err)
		return
	}

	if r.onLoad != nil {
		r.onLoad(EventLoad{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			RawHeaders: FormatRawHeaders(resp.Header),
			Body:       data,
		})
	}
}

// fireError routes a failure to the timeout handler when the primitive's own
// deadline expired, and to the error handler otherwise.
func (r *httpEventRequester) fireError(err error) {
	var netErr net.Error

	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout())

	if timedOut && r.onTimeout != nil {
		r.onTimeout()
		return
	}

	if r.onError != nil {
		r.onError(err)
	}
}

// progressReader counts bytes as they pass through and reports cumulative
// progress after every read.
type progressReader struct {
	reader      io.Reader
	total       int64
	transferred int64
	fn          func(transferred, total int64)
}

// Read implements the io.Reader interface.
func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.reader.Read(b)
	if n > 0 {
		p.transferred += int64(n)

		if p.fn != nil {
			p.fn(p.transferred, p.total)
		}
	}

	return n, err
}
