package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebarkhatov/unihttp/internal/httperr"
)

// TestHTTPEventRequester_Load tests the default requester end to end through
// the legacy transport.
func TestHTTPEventRequester_Load(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "value", r.Header.Get("X-Custom"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(body))

		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "world")
	}))
	defer server.Close()

	tr := NewLegacyTransport(nil)

	envelope, err := tr.Execute(context.Background(), &Request{
		URL:    server.URL,
		Method: http.MethodPost,
		Header: http.Header{"X-Custom": []string{"value"}},
		Body:   []byte("hello"),
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, envelope.StatusCode)
	assert.Equal(t, "text/plain", envelope.Header.Get("Content-Type"))

	data, err := envelope.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "world", string(data))
}

// TestHTTPEventRequester_UploadProgress tests that the counting reader
// reports cumulative upload progress up to the full body size.
func TestHTTPEventRequester_UploadProgress(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 64*1024)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	var (
		final     int64
		lastTotal int64
		monotonic = true
		prev      int64
	)

	tr := NewLegacyTransport(nil)

	envelope, err := tr.Execute(context.Background(), &Request{
		URL:    server.URL,
		Method: http.MethodPut,
		Body:   payload,
		UploadProgress: func(transferred, total int64) {
			if transferred < prev {
				monotonic = false
			}

			prev = transferred
			final = transferred
			lastTotal = total
		},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, envelope.StatusCode)
	assert.True(t, monotonic)
	assert.Equal(t, int64(len(payload)), final)
	assert.Equal(t, int64(len(payload)), lastTotal)
}

// TestHTTPEventRequester_DownloadProgress tests download-side reporting.
func TestHTTPEventRequester_DownloadProgress(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 32*1024)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(len(payload)))
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	var final, total int64

	tr := NewLegacyTransport(nil)

	_, err := tr.Execute(context.Background(), &Request{
		URL:    server.URL,
		Method: http.MethodGet,
		DownloadProgress: func(transferred, totalBytes int64) {
			final = transferred
			total = totalBytes
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(len(payload)), final)
	assert.Equal(t, int64(len(payload)), total)
}

// TestHTTPEventRequester_Timeout tests that the primitive's own timeout
// mechanism fires the timeout handler, not the error handler.
func TestHTTPEventRequester_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	tr := NewLegacyTransport(nil)

	start := time.Now()
	_, err := tr.Execute(context.Background(), &Request{
		URL:     server.URL,
		Method:  http.MethodGet,
		Timeout: 100 * time.Millisecond,
	})

	require.ErrorIs(t, err, httperr.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

// TestHTTPEventRequester_NetworkError tests the no-response failure path.
func TestHTTPEventRequester_NetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	server.Close() // Refuse all connections.

	tr := NewLegacyTransport(nil)

	_, err := tr.Execute(context.Background(), &Request{
		URL:    server.URL,
		Method: http.MethodGet,
	})

	require.ErrorIs(t, err, httperr.ErrNetwork)
}

// TestHTTPEventRequester_AbortIsIdempotent tests repeated aborts.
func TestHTTPEventRequester_AbortIsIdempotent(t *testing.T) {
	t.Parallel()

	requester := NewHTTPEventRequester(nil)
	requester.Open(http.MethodGet, "http://127.0.0.1:0/unreachable")
	requester.OnError(func(_ error) {})
	requester.Send(nil)

	requester.Abort()
	requester.Abort() // Must not panic.
}
