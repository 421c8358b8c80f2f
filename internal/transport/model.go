package transport

import (
	"context"
	"net/http"
	"time"
)

//go:generate $MOCKGEN -source=model.go -destination=mocks/transport_mock.go

// TotalUnknown is reported as the total byte count when the response carries
// no usable length information.
const TotalUnknown int64 = -1

// ProgressFunc receives the cumulative number of bytes transferred so far
// and the expected total, or TotalUnknown when the total cannot be derived.
// For a single request, invocations are strictly ordered by receipt.
type ProgressFunc func(transferred, total int64)

// CredentialsPolicy controls whether ambient credentials (cookies,
// authorization headers) accompany a request.
type CredentialsPolicy string

// Supported credential policies.
const (
	// CredentialsOmit strips ambient credentials from the outgoing request.
	CredentialsOmit CredentialsPolicy = "omit"
	// CredentialsSameOrigin is the default policy: credentials are left to
	// the underlying HTTP client's cookie handling.
	CredentialsSameOrigin CredentialsPolicy = "same-origin"
	// CredentialsInclude always sends ambient credentials.
	CredentialsInclude CredentialsPolicy = "include"
)

// ParseCredentialsPolicy parses a textual credentials policy.
// An empty string maps to the same-origin default; the second return value
// reports whether the input was recognized.
func ParseCredentialsPolicy(value string) (CredentialsPolicy, bool) {
	switch CredentialsPolicy(value) {
	case "":
		return CredentialsSameOrigin, true
	case CredentialsOmit:
		return CredentialsOmit, true
	case CredentialsSameOrigin:
		return CredentialsSameOrigin, true
	case CredentialsInclude:
		return CredentialsInclude, true
	default:
		return CredentialsSameOrigin, false
	}
}

// Request describes one fully merged request, constructed fresh per call and
// never shared across calls. Timeout and Retries arrive already resolved
// against the client defaults.
type Request struct {
	// URL is the absolute request URL.
	URL string
	// Method is the HTTP method, e.g. http.MethodGet.
	Method string
	// Header holds the merged request headers. May be nil.
	Header http.Header
	// Body is the request payload, or nil. A byte slice rather than a
	// reader: retry attempts must be able to replay it from the start.
	Body []byte
	// Timeout bounds each individual attempt. Zero means no timeout.
	Timeout time.Duration
	// Retries is the number of re-attempts after the first failure.
	Retries int
	// Credentials selects the credential policy for this request.
	Credentials CredentialsPolicy
	// DownloadProgress, when set, receives cumulative download progress.
	DownloadProgress ProgressFunc
	// UploadProgress, when set, receives cumulative upload progress.
	// Only the legacy transport can observe upload byte counts.
	UploadProgress ProgressFunc
}

// Transport is a backend capable of performing one HTTP request and
// returning a normalized response envelope.
type Transport interface {
	// Execute performs the request. It returns either a response envelope
	// or an error from the httperr taxonomy.
	Execute(ctx context.Context, req *Request) (*Envelope, error)
	// SupportsUploadProgress reports whether this backend can observe
	// upload byte counts. The façade routes upload-with-progress calls to
	// a backend answering true.
	SupportsUploadProgress() bool
}
