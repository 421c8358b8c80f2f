package transport

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ebarkhatov/unihttp/internal/httperr"
)

// EventLoad carries the legacy primitive's completion payload: status,
// status text, the raw header blob, and the body bytes.
type EventLoad struct {
	StatusCode int
	Status     string
	RawHeaders string
	Body       []byte
}

// EventUpload is the optional upload-progress channel of an event requester.
type EventUpload interface {
	// OnProgress registers the upload progress handler.
	OnProgress(fn func(transferred, total int64))
}

// EventRequester is the event-driven request primitive the legacy transport
// runs on: open, configure, register handlers, send. Exactly one of the
// OnLoad, OnError, or OnTimeout handlers fires per request.
type EventRequester interface {
	// Open prepares the requester for the given method and URL.
	Open(method, url string)
	// SetTimeout arms the primitive's own timeout mechanism.
	SetTimeout(d time.Duration)
	// SetCredentials records the credentials policy for the request.
	SetCredentials(policy CredentialsPolicy)
	// SetHeader adds a request header.
	SetHeader(key, value string)
	// OnLoad registers the completion handler.
	OnLoad(fn func(load EventLoad))
	// OnError registers the network-failure handler.
	OnError(fn func(err error))
	// OnTimeout registers the handler for the primitive's own timeout.
	OnTimeout(fn func())
	// OnDownloadProgress registers the download progress handler.
	OnDownloadProgress(fn func(transferred, total int64))
	// Upload returns the upload-progress channel, or nil when the
	// primitive exposes none.
	Upload() EventUpload
	// Send finalizes the request with the given body, which may be nil.
	Send(body []byte)
	// Abort cancels an in-flight request. Aborting an already settled
	// request is a no-op.
	Abort()
}

// EventRequesterFactory produces a fresh event requester per request.
type EventRequesterFactory func() EventRequester

// LegacyTransport executes requests through an event-driven primitive and
// normalizes its event-style result into the shared envelope shape. It is
// the only backend able to observe upload byte counts.
type LegacyTransport struct {
	factory EventRequesterFactory
}

// NewLegacyTransport creates a legacy transport. A nil factory falls back to
// the net/http-backed default requester.
func NewLegacyTransport(factory EventRequesterFactory) *LegacyTransport {
	if factory == nil {
		factory = func() EventRequester {
			return NewHTTPEventRequester(nil)
		}
	}

	return &LegacyTransport{factory: factory}
}

// SupportsUploadProgress implements the Transport interface.
func (t *LegacyTransport) SupportsUploadProgress() bool {
	return true
}

// Execute implements the Transport interface.
func (t *LegacyTransport) Execute(ctx context.Context, req *Request) (*Envelope, error) {
	requester := t.factory()

	requester.Open(req.Method, req.URL)

	if req.Credentials != "" {
		requester.SetCredentials(req.Credentials)
	}

	if req.Timeout > 0 {
		requester.SetTimeout(req.Timeout)
	}

	for key, values := range req.Header {
		for _, value := range values {
			requester.SetHeader(key, value)
		}
	}

	// Buffered so a handler firing after the select settled never blocks.
	loadCh := make(chan *Envelope, 1)
	errCh := make(chan error, 1)

	requester.OnLoad(func(load EventLoad) {
		loadCh <- NewBufferedEnvelope(load.StatusCode, load.Status, ParseRawHeaders(load.RawHeaders), load.Body)
	})

	requester.OnError(func(err error) {
		errCh <- &httperr.NetworkError{Err: err}
	})

	requester.OnTimeout(func() {
		errCh <- &httperr.TimeoutError{Configured: req.Timeout}
	})

	if req.DownloadProgress != nil {
		requester.OnDownloadProgress(req.DownloadProgress)
	}

	// The upload channel is optional; its absence must not fail the request.
	if req.UploadProgress != nil {
		if upload := requester.Upload(); upload != nil {
			upload.OnProgress(req.UploadProgress)
		}
	}

	requester.Send(req.Body)

	select {
	case envelope := <-loadCh:
		return envelope, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		requester.Abort()
		return nil, ctx.Err()
	}
}

// ParseRawHeaders parses a raw header blob into a normalized header mapping
// by splitting on line breaks and ": ". Malformed lines are skipped.
func ParseRawHeaders(blob string) http.Header {
	header := make(http.Header)

	for _, line := range strings.Split(strings.ReplaceAll(blob, "\r\n", "\n"), "\n") {
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ": ")
		if !ok || key == "" {
			continue
		}

		header.Add(key, value)
	}

	return header
}

// FormatRawHeaders renders headers into the raw blob shape the event
// primitive reports, with keys sorted for deterministic output.
func FormatRawHeaders(header http.Header) string {
	keys := make([]string, 0, len(header))
	for key := range header {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var b strings.Builder

	for _, key := range keys {
		for _, value := range header[key] {
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString("\r\n")
		}
	}

	return b.String()
}
