package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/ebarkhatov/unihttp/internal/httperr"
)

// Envelope is the normalized response shape shared by both transports:
// status, headers, and a body accessor. The body is read from the network at
// most once; the first accessor call materializes it into memory and later
// calls (including calls on clones) see the same bytes.
type Envelope struct {
	// StatusCode is the numeric HTTP status.
	StatusCode int
	// Status is the status text, e.g. "OK".
	Status string
	// Header holds the normalized response headers.
	Header http.Header

	mu           sync.Mutex
	raw          io.ReadCloser
	body         []byte
	materialized bool
	readErr      error
}

// NewEnvelope builds an envelope over an unconsumed body stream.
func NewEnvelope(statusCode int, status string, header http.Header, body io.ReadCloser) *Envelope {
	return &Envelope{
		StatusCode: statusCode,
		Status:     status,
		Header:     header,
		raw:        body,
	}
}

// NewBufferedEnvelope builds an envelope whose body is already in memory,
// e.g. after incremental consumption for progress reporting.
func NewBufferedEnvelope(statusCode int, status string, header http.Header, body []byte) *Envelope {
	return &Envelope{
		StatusCode:   statusCode,
		Status:       status,
		Header:       header,
		body:         body,
		materialized: true,
	}
}

// Bytes returns the complete response body. The underlying stream is drained
// and closed on first use; the result is cached so repeated calls, and calls
// on independent clones, observe identical data.
func (e *Envelope) Bytes() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.materializeLocked()
}

// JSON decodes the body into v. Decoding failures surface as serialization
// errors; body read failures keep their original kind.
func (e *Envelope) JSON(v any) error {
	data, err := e.Bytes()
	if err != nil {
		return err
	}

	if err = json.Unmarshal(data, v); err != nil {
		return &httperr.SerializationError{Err: err}
	}

	return nil
}

// Clone materializes the body and returns an independent envelope over the
// same bytes, so an interceptor can inspect or decode the body without
// exhausting it for the original caller.
func (e *Envelope) Clone() (*Envelope, error) {
	data, err := e.Bytes()
	if err != nil {
		return nil, err
	}

	clone := NewBufferedEnvelope(e.StatusCode, e.Status, e.Header.Clone(), data)

	return clone, nil
}

// Close releases the underlying stream if it was never read.
// Closing a materialized envelope is a no-op.
func (e *Envelope) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.materialized || e.raw == nil {
		return nil
	}

	raw := e.raw
	e.raw = nil
	e.materialized = true

	return raw.Close()
}

// materializeLocked drains the raw stream into the cached body buffer.
// The caller must hold e.mu.
func (e *Envelope) materializeLocked() ([]byte, error) {
	if e.materialized {
		return e.body, e.readErr
	}

	e.materialized = true

	if e.raw == nil {
		return nil, nil
	}

	data, err := io.ReadAll(e.raw)
	_ = e.raw.Close()
	e.raw = nil

	if err != nil {
		e.readErr = &httperr.NetworkError{Err: err}
		return nil, e.readErr
	}

	e.body = data

	return e.body, nil
}
