package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goware/urlx"
	"k8s.io/klog/v2"
)

// URLBackend resolves storage keys against a base URL template,
// fetching byte ranges over plain HTTP(S): HEAD-or-zero-range size
// probing, exponential-backoff retry, per-read Range headers with
// keep-alive.
type URLBackend struct {
	// KeyToURL maps a resolved storage key to the absolute URL serving
	// that object (the regex/template substitution is the caller's
	// idresolver concern; URLBackend only ever sees final URLs).
	KeyToURL func(key string) (string, error)
	Client   *http.Client
	// ForwardHeaders are copied onto every outbound request (e.g. an
	// upstream auth token configured for this backend).
	ForwardHeaders map[string]string
}

// NewURLBackend builds a URLBackend with a sensible default HTTP client.
func NewURLBackend(keyToURL func(string) (string, error)) *URLBackend {
	return &URLBackend{
		KeyToURL: keyToURL,
		Client: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (b *URLBackend) urlFor(key string) (string, error) {
	u, err := b.KeyToURL(key)
	if err != nil {
		return "", fmt.Errorf("storage: resolve url for key %q: %w", key, err)
	}
	if _, err := urlx.Parse(u); err != nil {
		return "", fmt.Errorf("storage: parse url %q for key %q: %w", u, key, err)
	}
	return u, nil
}

// rangeCacheEntries bounds how many distinct byte ranges a single
// urlReaderAt keeps buffered. Index/header reads over a Remote-URL
// object re-read the same small spans repeatedly (the resolver opens
// an io.SectionReader over the whole index and a bufio.Scanner issues
// many small ReadAt calls); a handful of cached entries turns those
// repeats into memory hits instead of repeated Range GETs.
const rangeCacheEntries = 16

func (b *URLBackend) Get(ctx context.Context, key string) (io.ReaderAt, int64, error) {
	u, err := b.urlFor(key)
	if err != nil {
		return nil, 0, err
	}
	size, err := b.contentSize(ctx, u)
	if err != nil {
		return nil, 0, err
	}
	r := &urlReaderAt{backend: b, url: u}
	r.cache = newRangeCache(rangeCacheEntries, func(p []byte, off int64) (int, error) {
		return retryReadAt(r.backend.Client, r.url, p, off)
	})
	return r, size, nil
}

func (b *URLBackend) Head(ctx context.Context, key string) (int64, error) {
	u, err := b.urlFor(key)
	if err != nil {
		return 0, err
	}
	return b.contentSize(ctx, u)
}

func (b *URLBackend) RangeURL(ctx context.Context, key string, opts RangeURLOptions) (string, map[string]string, error) {
	u, err := b.urlFor(key)
	if err != nil {
		return "", nil, err
	}
	headers := map[string]string{
		"Range": fmt.Sprintf("bytes=%d-%d", opts.Start, opts.End),
	}
	for k, v := range b.ForwardHeaders {
		headers[k] = v
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}
	return u, headers, nil
}

func (b *URLBackend) DataURL(ctx context.Context, key string) (string, map[string]string, error) {
	u, err := b.urlFor(key)
	if err != nil {
		return "", nil, err
	}
	headers := map[string]string{}
	for k, v := range b.ForwardHeaders {
		headers[k] = v
	}
	return u, headers, nil
}

// contentSize determines a remote object's size via HEAD, falling back
// to a one-byte (bytes=0-0) Range GET for servers that mishandle HEAD.
func (b *URLBackend) contentSize(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := b.Client.Do(req)
	if err == nil && resp.StatusCode == http.StatusOK && resp.ContentLength > 0 {
		resp.Body.Close()
		return resp.ContentLength, nil
	}
	if resp != nil {
		resp.Body.Close()
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", "bytes=0-0")
	resp, err = b.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return resp.ContentLength, nil
	}
	if resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("storage: unexpected status %d probing size of %q", resp.StatusCode, url)
	}
	contentRange := resp.Header.Get("Content-Range")
	if contentRange == "" {
		return 0, fmt.Errorf("storage: missing Content-Range header for %q", url)
	}
	var total int64
	if _, err := fmt.Sscanf(contentRange, "bytes 0-0/%d", &total); err != nil {
		return 0, fmt.Errorf("storage: parse Content-Range %q for %q: %w", contentRange, url, err)
	}
	return total, nil
}

// urlReaderAt implements io.ReaderAt with Range GETs, retried with
// backoff the way split-car-fetcher does for remote CAR reads. When
// cache is set, reads inside a cached span are served from memory and
// only misses issue a GET.
type urlReaderAt struct {
	backend *URLBackend
	url     string
	cache   *rangeCache
}

func (r *urlReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.cache == nil {
		n, err := retryReadAt(r.backend.Client, r.url, p, off)
		if err != nil {
			return n, fmt.Errorf("storage: read %q at offset %d: %w", r.url, off, err)
		}
		return n, nil
	}
	buf, err := r.cache.get(context.Background(), off, len(p))
	if err != nil {
		return 0, fmt.Errorf("storage: read %q at offset %d: %w", r.url, off, err)
	}
	return copy(p, buf), nil
}

func retryReadAt(client *http.Client, url string, p []byte, off int64) (int, error) {
	var lastErr error
	delay := 100 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		n, err := readAtOnce(client, url, p, off)
		if err == nil {
			return n, nil
		}
		lastErr = err
		time.Sleep(delay)
		delay *= 2
	}
	return 0, fmt.Errorf("failed after 3 attempts; last error: %w", lastErr)
}

func readAtOnce(client *http.Client, url string, p []byte, off int64) (int, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Keep-Alive", "timeout=600")
	end := off + int64(len(p)) - 1
	req.Header.Set("Range", "bytes="+strconv.FormatInt(off, 10)+"-"+strconv.FormatInt(end, 10))

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	n, err := io.ReadFull(resp.Body, p)
	if err != nil && err != io.ErrUnexpectedEOF {
		return n, err
	}
	klog.V(5).Infof("storage: read %d bytes from %s at offset %d", n, url, off)
	return n, nil
}
