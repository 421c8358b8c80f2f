package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUserAgentRoundTripper tests User-Agent injection.
func TestUserAgentRoundTripper(t *testing.T) {
	t.Parallel()

	var seen string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{
		Transport: NewUserAgentRoundTripper(http.DefaultTransport, "unihttp-test/1.0"),
	}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "unihttp-test/1.0", seen)

	// An explicit User-Agent set by the caller wins.
	req, err := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "caller/2.0")

	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "caller/2.0", seen)
}

// TestRequestIDRoundTripper tests correlation ID injection.
func TestRequestIDRoundTripper(t *testing.T) {
	t.Parallel()

	ids := make(map[string]struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		assert.NotEmpty(t, id)
		ids[id] = struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{
		Transport: NewRequestIDRoundTripper(http.DefaultTransport),
	}

	for i := 0; i < 3; i++ {
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	// Every request gets its own ID.
	assert.Len(t, ids, 3)
}

// TestThrottleRoundTripper tests token-bucket pacing.
func TestThrottleRoundTripper(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	rt, err := NewThrottleRoundTripper(http.DefaultTransport, 20, 1)
	require.NoError(t, err)

	client := &http.Client{Transport: rt}

	// Three requests at 20 rps with burst 1: the second and third each wait
	// roughly 50ms for a token.
	start := time.Now()

	for i := 0; i < 3; i++ {
		resp, doErr := client.Get(server.URL)
		require.NoError(t, doErr)
		_ = resp.Body.Close()
	}

	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)

	// Invalid rate is rejected.
	_, err = NewThrottleRoundTripper(http.DefaultTransport, 0, 1)
	require.ErrorIs(t, err, ErrInvalidThrottleRate)
}

// TestLoggingRoundTripper_NilRequest tests the nil-request guard.
func TestLoggingRoundTripper_NilRequest(t *testing.T) {
	t.Parallel()

	rt := NewLoggingRoundTripper(http.DefaultTransport, 0)

	//nolint:bodyclose // No response is produced for a nil request.
	_, err := rt.RoundTrip(nil)
	require.ErrorIs(t, err, ErrNilRequest)
}

// TestLoggingRoundTripper_PassesThrough tests that responses flow unchanged.
func TestLoggingRoundTripper_PassesThrough(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	client := &http.Client{
		Transport: NewLoggingRoundTripper(http.DefaultTransport, 128),
	}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}
