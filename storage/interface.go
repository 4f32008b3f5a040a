// Package storage defines the backend abstraction the htsget resolver
// consumes to read index bytes and to turn resolved byte ranges into
// client-fetchable URLs, and provides Local, S3 and Remote-URL
// implementations of it. The resolver package imports only Backend —
// never a concrete adapter — so it never branches on which storage
// variant is in play.
package storage

import (
	"context"
	"io"
)

// RangeURLOptions customizes the URL RangeURL builds for one byte range.
type RangeURLOptions struct {
	// Start and End are the first and last byte of the range, both
	// inclusive, as written into an HTTP Range header.
	Start, End uint64
	// Headers are added to the headers RangeURL returns (e.g. an
	// Authorization header); backends never inspect or interpret them.
	// The htsget resolver leaves Headers empty: inbound request headers
	// are not forwarded.
	Headers map[string]string
}

// Backend is the capability surface a storage variant must implement.
// Get and Head operate on a storage key (a Query's resolved identifier,
// index-suffixed or not); RangeURL and DataURL never read bytes
// themselves — they only construct the URL a client will later fetch.
type Backend interface {
	// Get opens key for random-access reads, e.g. to parse an index.
	Get(ctx context.Context, key string) (io.ReaderAt, int64, error)

	// Head returns the size in bytes of key without reading its body.
	Head(ctx context.Context, key string) (int64, error)

	// RangeURL returns the URL a client should fetch to retrieve the
	// given byte range of key.
	RangeURL(ctx context.Context, key string, opts RangeURLOptions) (string, map[string]string, error)

	// DataURL returns the URL a client should fetch for the entirety of
	// key. The htsget resolver does not call it: whole-file tickets are
	// built with RangeURL like every other range.
	DataURL(ctx context.Context, key string) (string, map[string]string, error)
}
