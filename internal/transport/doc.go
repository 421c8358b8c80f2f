// Package transport implements the two request backends behind the client
// façade: a streaming transport built on net/http with context cancellation
// and incremental download progress, and a legacy transport driven by an
// event-based request primitive with distinct download and upload progress
// channels. Both normalize their results into the same response envelope so
// nothing above this package branches on which backend served a request.
package transport
